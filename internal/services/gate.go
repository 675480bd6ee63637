package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/repos"
	"github.com/praxislabs/praxis-backend/internal/types"
)

type Destination string

const (
	DestinationOnboarding Destination = "/onboarding"
	DestinationDashboard  Destination = "/dashboard"
)

// SessionGate decides, once per completed authentication, whether a user is
// first-time or returning. Absence of a profile row is the sole first-time
// signal; the gate provisions the row on first sign-in.
type SessionGate interface {
	Resolve(ctx context.Context, userID uuid.UUID) (Destination, error)
}

type sessionGate struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewSessionGate(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo) SessionGate {
	return &sessionGate{
		db:          db,
		log:         log.With("service", "SessionGate"),
		profileRepo: profileRepo,
	}
}

func (sg *sessionGate) Resolve(ctx context.Context, userID uuid.UUID) (Destination, error) {
	_, err := sg.profileRepo.GetByUserID(ctx, nil, userID)
	if err == nil {
		return DestinationDashboard, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return "", err
	}

	// First sign-in: provision the empty profile row. The answers arrive
	// later via the onboarding bulk update. A create failure is logged but
	// must not fail the sign-in flow.
	profile := &types.Profile{UserID: userID}
	if _, cErr := sg.profileRepo.Create(ctx, nil, profile); cErr != nil {
		sg.log.Warn("Failed to create initial profile", "user_id", userID, "error", cErr)
	}
	return DestinationOnboarding, nil
}
