package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionStatusNotStarted = "not_started"
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusAbandoned  = "abandoned"
)

// SessionRecord is a past conversation run, the aggregation target for
// history summaries.
type SessionRecord struct {
	ID              uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	SimulationID    uuid.UUID   `gorm:"type:uuid;index" json:"simulation_id"`
	Simulation      *Simulation `gorm:"foreignKey:SimulationID;references:ID" json:"simulation,omitempty"`
	SimulationName  string      `gorm:"column:simulation_name" json:"simulation_name"`
	Category        string      `gorm:"column:category" json:"category"`
	Score           float64     `gorm:"column:score" json:"score"`
	DurationMinutes int         `gorm:"column:duration_minutes" json:"duration_minutes"`
	// One of the SessionStatus* constants.
	CompletionStatus string    `gorm:"not null;column:completion_status" json:"completion_status"`
	CreatedAt        time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (SessionRecord) TableName() string { return "session_record" }
