package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/types"
)

// ProfileUpdate is an explicit partial update: only set fields are written.
type ProfileUpdate struct {
	Role       *string
	Field      *string
	Experience *string
	StudyLevel *string
	Goals      *[]string
	Interests  *[]string
	FocusAreas *[]string
}

type ProfileRepo interface {
	// GetByUserID wraps gorm's record-not-found into errs.ErrNotFound. A
	// missing row is the "first time" signal, not a failure.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error)
	Create(ctx context.Context, tx *gorm.DB, profile *types.Profile) (*types.Profile, error)
	Update(ctx context.Context, tx *gorm.DB, userID uuid.UUID, patch ProfileUpdate) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (pr *profileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.Profile
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, errs.ErrNotFound)
		}
		return nil, err
	}
	return &result, nil
}

func (pr *profileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.Profile) (*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (pr *profileRepo) Update(ctx context.Context, tx *gorm.DB, userID uuid.UUID, patch ProfileUpdate) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	updates := map[string]any{}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.Field != nil {
		updates["field"] = *patch.Field
	}
	if patch.Experience != nil {
		updates["experience"] = *patch.Experience
	}
	if patch.StudyLevel != nil {
		updates["study_level"] = *patch.StudyLevel
	}
	if patch.Goals != nil {
		updates["goals"] = datatypes.NewJSONSlice(*patch.Goals)
	}
	if patch.Interests != nil {
		updates["interests"] = datatypes.NewJSONSlice(*patch.Interests)
	}
	if patch.FocusAreas != nil {
		updates["focus_areas"] = datatypes.NewJSONSlice(*patch.FocusAreas)
	}
	if len(updates) == 0 {
		return nil
	}
	result := transaction.WithContext(ctx).
		Model(&types.Profile{}).
		Where("user_id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("profile for user %s: %w", userID, errs.ErrNotFound)
	}
	return nil
}
