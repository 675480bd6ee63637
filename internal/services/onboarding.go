package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/onboarding"
	"github.com/praxislabs/praxis-backend/internal/repos"
	"github.com/praxislabs/praxis-backend/internal/types"
)

type OnboardingService interface {
	Steps() []onboarding.Step
	// Complete commits all accumulated answers as one bulk profile update.
	// On failure the caller keeps the answers and may retry; nothing is
	// resubmitted automatically.
	Complete(ctx context.Context, userID uuid.UUID, answers onboarding.Answers) error
}

type onboardingService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewOnboardingService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo) OnboardingService {
	return &onboardingService{
		db:          db,
		log:         log.With("service", "OnboardingService"),
		profileRepo: profileRepo,
	}
}

func (os *onboardingService) Steps() []onboarding.Step {
	return onboarding.Steps()
}

func (os *onboardingService) Complete(ctx context.Context, userID uuid.UUID, answers onboarding.Answers) error {
	if err := onboarding.Replay(answers); err != nil {
		return fmt.Errorf("%v: %w", err, errs.ErrInvalidArgument)
	}
	patch := repos.ProfileUpdate{
		Role:       &answers.Role,
		Field:      &answers.Field,
		Experience: &answers.Experience,
		StudyLevel: &answers.StudyLevel,
		Goals:      &answers.Goals,
		Interests:  &answers.Interests,
		FocusAreas: &answers.FocusAreas,
	}
	err := os.profileRepo.Update(ctx, nil, userID, patch)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("failed to save onboarding answers: %w", err)
	}
	// The gate-time Create can fail without blocking sign-in, so the row may
	// still be missing here. Completion provisions it.
	profile := &types.Profile{
		UserID:     userID,
		Role:       answers.Role,
		Field:      answers.Field,
		Experience: answers.Experience,
		StudyLevel: answers.StudyLevel,
		Goals:      datatypes.NewJSONSlice(answers.Goals),
		Interests:  datatypes.NewJSONSlice(answers.Interests),
		FocusAreas: datatypes.NewJSONSlice(answers.FocusAreas),
	}
	if _, cErr := os.profileRepo.Create(ctx, nil, profile); cErr != nil {
		return fmt.Errorf("failed to save onboarding answers: %w", cErr)
	}
	return nil
}
