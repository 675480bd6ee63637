package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/onboarding"
	"github.com/praxislabs/praxis-backend/internal/repos"
	"github.com/praxislabs/praxis-backend/internal/types"
)

func onboardingAnswersFixture() onboarding.Answers {
	return onboarding.Answers{
		Role:       "student",
		Field:      "medicine",
		Experience: "beginner",
		StudyLevel: "undergraduate",
		Goals:      []string{"communication", "exam-prep"},
		Interests:  []string{"research"},
		FocusAreas: []string{"history-taking"},
	}
}

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type fakeProfileRepo struct {
	profiles   map[uuid.UUID]*types.Profile
	getErr     error
	createErr  error
	updateErr  error
	creates    int
	updates    []repos.ProfileUpdate
	lastUpdate uuid.UUID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]*types.Profile{}}
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile for user %s: %w", userID, errs.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProfileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.Profile) (*types.Profile, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.profiles[profile.UserID] = profile
	return profile, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, tx *gorm.DB, userID uuid.UUID, patch repos.ProfileUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.profiles[userID]; !ok {
		return fmt.Errorf("profile for user %s: %w", userID, errs.ErrNotFound)
	}
	f.updates = append(f.updates, patch)
	f.lastUpdate = userID
	return nil
}

func TestSessionGateFirstTimeUser(t *testing.T) {
	repo := newFakeProfileRepo()
	gate := NewSessionGate(nil, testLogger(), repo)
	userID := uuid.New()

	dest, err := gate.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dest != DestinationOnboarding {
		t.Fatalf("destination = %q, want %q", dest, DestinationOnboarding)
	}
	if repo.creates != 1 {
		t.Fatalf("profile creates = %d, want 1", repo.creates)
	}
	if _, ok := repo.profiles[userID]; !ok {
		t.Fatal("expected profile row created for first-time user")
	}
}

func TestSessionGateReturningUser(t *testing.T) {
	repo := newFakeProfileRepo()
	userID := uuid.New()
	repo.profiles[userID] = &types.Profile{UserID: userID}
	gate := NewSessionGate(nil, testLogger(), repo)

	dest, err := gate.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dest != DestinationDashboard {
		t.Fatalf("destination = %q, want %q", dest, DestinationDashboard)
	}
	if repo.creates != 0 {
		t.Fatalf("profile creates = %d, want 0", repo.creates)
	}
}

func TestSessionGateCreateFailureStillRoutesToOnboarding(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.createErr = fmt.Errorf("backend unavailable")
	gate := NewSessionGate(nil, testLogger(), repo)

	dest, err := gate.Resolve(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dest != DestinationOnboarding {
		t.Fatalf("destination = %q, want %q", dest, DestinationOnboarding)
	}
}

func TestSessionGateBackendErrorPropagates(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.getErr = fmt.Errorf("backend unavailable")
	gate := NewSessionGate(nil, testLogger(), repo)

	if _, err := gate.Resolve(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error when the profile store is unreachable")
	}
	if repo.creates != 0 {
		t.Fatalf("profile creates = %d, want 0 on backend error", repo.creates)
	}
}

func TestOnboardingCompleteBulkUpdate(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewOnboardingService(nil, testLogger(), repo)
	userID := uuid.New()
	repo.profiles[userID] = &types.Profile{UserID: userID}

	answers := onboardingAnswersFixture()
	if err := svc.Complete(context.Background(), userID, answers); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("profile updates = %d, want exactly 1 bulk update", len(repo.updates))
	}
	patch := repo.updates[0]
	if patch.Role == nil || *patch.Role != answers.Role {
		t.Fatalf("patch role = %v, want %q", patch.Role, answers.Role)
	}
	if patch.Goals == nil || len(*patch.Goals) != len(answers.Goals) {
		t.Fatalf("patch goals = %v, want %v", patch.Goals, answers.Goals)
	}
	if patch.StudyLevel == nil || patch.Interests == nil || patch.FocusAreas == nil || patch.Field == nil || patch.Experience == nil {
		t.Fatal("expected every answer field present in the bulk update")
	}
	if repo.lastUpdate != userID {
		t.Fatalf("update targeted %s, want %s", repo.lastUpdate, userID)
	}
}

func TestOnboardingCompleteProvisionsMissingRow(t *testing.T) {
	// First sign-in where the gate-time profile create failed: the user still
	// lands on onboarding, and completion must create the row instead of
	// failing forever on not-found.
	repo := newFakeProfileRepo()
	repo.createErr = fmt.Errorf("backend unavailable")
	gate := NewSessionGate(nil, testLogger(), repo)
	userID := uuid.New()

	dest, err := gate.Resolve(context.Background(), userID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dest != DestinationOnboarding {
		t.Fatalf("destination = %q, want %q", dest, DestinationOnboarding)
	}

	repo.createErr = nil
	svc := NewOnboardingService(nil, testLogger(), repo)
	answers := onboardingAnswersFixture()
	if err := svc.Complete(context.Background(), userID, answers); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	profile, ok := repo.profiles[userID]
	if !ok {
		t.Fatal("expected completion to create the missing profile row")
	}
	if profile.Role != answers.Role || profile.StudyLevel != answers.StudyLevel {
		t.Fatalf("created profile missing answers: %+v", profile)
	}
	if len(profile.Goals) != len(answers.Goals) || len(profile.FocusAreas) != len(answers.FocusAreas) {
		t.Fatalf("created profile missing multi-select answers: %+v", profile)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("no update should land before the row exists, saw %d", len(repo.updates))
	}
}

func TestOnboardingCompleteFailureReported(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.updateErr = fmt.Errorf("backend unavailable")
	svc := NewOnboardingService(nil, testLogger(), repo)

	if err := svc.Complete(context.Background(), uuid.New(), onboardingAnswersFixture()); err == nil {
		t.Fatal("expected error when the bulk update fails")
	}
}

func TestOnboardingCompleteRejectsInvalidAnswers(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewOnboardingService(nil, testLogger(), repo)

	tests := []struct {
		name   string
		mutate func(a *onboarding.Answers)
	}{
		{name: "unknown option value", mutate: func(a *onboarding.Answers) { a.Role = "astronaut" }},
		{name: "missing single select", mutate: func(a *onboarding.Answers) { a.Field = "" }},
		{name: "empty multi select", mutate: func(a *onboarding.Answers) { a.Goals = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			answers := onboardingAnswersFixture()
			tc.mutate(&answers)
			err := svc.Complete(context.Background(), uuid.New(), answers)
			if !errors.Is(err, errs.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if len(repo.updates) != 0 {
				t.Fatalf("invalid answers must not reach the repo, saw %d updates", len(repo.updates))
			}
		})
	}
}

