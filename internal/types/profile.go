package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile holds a user's onboarding answers. A row exists for a user if and
// only if first-sign-in provisioning has run; absence of a row is the sole
// "first time" signal.
type Profile struct {
	ID         uuid.UUID                   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User       *User                       `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role       string                      `gorm:"column:role" json:"role"`
	Field      string                      `gorm:"column:field" json:"field"`
	Experience string                      `gorm:"column:experience" json:"experience"`
	StudyLevel string                      `gorm:"column:study_level" json:"study_level"`
	Goals      datatypes.JSONSlice[string] `gorm:"type:jsonb;column:goals" json:"goals"`
	Interests  datatypes.JSONSlice[string] `gorm:"type:jsonb;column:interests" json:"interests"`
	FocusAreas datatypes.JSONSlice[string] `gorm:"type:jsonb;column:focus_areas" json:"focus_areas"`
	CreatedAt  time.Time                   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time                   `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string { return "profile" }
