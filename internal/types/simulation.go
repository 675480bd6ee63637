package types

import (
	"time"

	"github.com/google/uuid"
)

// Simulation is a catalog entry. The catalog is read-only from the API's
// perspective; rows are seeded out of band.
type Simulation struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"sim_id"`
	Name         string    `gorm:"not null;column:name" json:"name"`
	Description  string    `gorm:"column:description" json:"description"`
	Category     string    `gorm:"index;column:category" json:"category"`
	SystemPrompt string    `gorm:"column:system_prompt" json:"system_prompt"`
	Context      string    `gorm:"column:context" json:"context"`
	ThumbnailURL string    `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	CreatedAt    time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Simulation) TableName() string { return "simulation" }
