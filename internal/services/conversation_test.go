package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/praxis-backend/internal/clients/tavus"
	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/types"
)

type fakeSimulationRepo struct {
	sims map[uuid.UUID]*types.Simulation
}

func (f *fakeSimulationRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Simulation, error) {
	var out []*types.Simulation
	for _, s := range f.sims {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSimulationRepo) GetByID(ctx context.Context, tx *gorm.DB, simID uuid.UUID) (*types.Simulation, error) {
	s, ok := f.sims[simID]
	if !ok {
		return nil, fmt.Errorf("simulation %s: %w", simID, errs.ErrNotFound)
	}
	return s, nil
}

func (f *fakeSimulationRepo) Search(ctx context.Context, tx *gorm.DB, query string) ([]*types.Simulation, error) {
	return nil, nil
}

func (f *fakeSimulationRepo) ListByCategory(ctx context.Context, tx *gorm.DB, category string) ([]*types.Simulation, error) {
	return nil, nil
}

type fakeTavusClient struct {
	personaErr      error
	conversationErr error

	personaCalls      int
	conversationCalls int
	lastPersonaReq    tavus.CreatePersonaRequest
	lastConvReq       tavus.CreateConversationRequest

	// duringPersona runs while the persona request is in flight, before the
	// result is reported.
	duringPersona func()
}

func (f *fakeTavusClient) CreatePersona(ctx context.Context, req tavus.CreatePersonaRequest) (*tavus.Persona, error) {
	f.personaCalls++
	f.lastPersonaReq = req
	if f.duringPersona != nil {
		f.duringPersona()
	}
	if f.personaErr != nil {
		return nil, f.personaErr
	}
	return &tavus.Persona{PersonaID: "p_123"}, nil
}

func (f *fakeTavusClient) CreateConversation(ctx context.Context, req tavus.CreateConversationRequest) (*tavus.Conversation, error) {
	f.conversationCalls++
	f.lastConvReq = req
	if f.conversationErr != nil {
		return nil, f.conversationErr
	}
	return &tavus.Conversation{ConversationID: "c_456", ConversationURL: "https://rooms.example/c_456"}, nil
}

type fakeTransport struct {
	joins       int
	leaves      int
	joinErr     error
	lastLeftURL string
}

func (f *fakeTransport) Join(ctx context.Context, roomURL string) error {
	f.joins++
	return f.joinErr
}

func (f *fakeTransport) Leave(ctx context.Context, roomURL string) error {
	f.leaves++
	f.lastLeftURL = roomURL
	return nil
}

func conversationFixture(t *testing.T) (ConversationService, *fakeTavusClient, *fakeTransport, uuid.UUID) {
	t.Helper()
	simID := uuid.New()
	simRepo := &fakeSimulationRepo{sims: map[uuid.UUID]*types.Simulation{
		simID: {
			ID:           simID,
			Name:         "Patient Intake",
			Category:     "Communication",
			SystemPrompt: "You are a patient presenting with chest pain.",
			Context:      "The learner is practicing structured history taking.",
		},
	}}
	tc := &fakeTavusClient{}
	tr := &fakeTransport{}
	svc := NewConversationService(testLogger(), simRepo, tc, tr)
	return svc, tc, tr, simID
}

func TestStartHappyPath(t *testing.T) {
	svc, tc, tr, simID := conversationFixture(t)
	userID := uuid.New()

	sess, err := svc.Start(context.Background(), userID, simID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Phase != PhaseInCall {
		t.Fatalf("phase = %q, want %q", sess.Phase, PhaseInCall)
	}
	if sess.PersonaID != "p_123" {
		t.Fatalf("persona id = %q, want p_123", sess.PersonaID)
	}
	if sess.ConversationURL == "" {
		t.Fatal("expected a conversation url")
	}
	if tc.personaCalls != 1 || tc.conversationCalls != 1 {
		t.Fatalf("calls = (%d, %d), want (1, 1)", tc.personaCalls, tc.conversationCalls)
	}
	if tr.joins != 1 {
		t.Fatalf("transport joins = %d, want 1", tr.joins)
	}
	if tc.lastPersonaReq.SystemPrompt != "You are a patient presenting with chest pain." {
		t.Fatalf("persona prompt not taken from simulation: %q", tc.lastPersonaReq.SystemPrompt)
	}
}

func TestStartUsesDefaultPromptWhenSimulationHasNone(t *testing.T) {
	simID := uuid.New()
	simRepo := &fakeSimulationRepo{sims: map[uuid.UUID]*types.Simulation{
		simID: {ID: simID, Name: ""},
	}}
	tc := &fakeTavusClient{}
	svc := NewConversationService(testLogger(), simRepo, tc, &fakeTransport{})

	if _, err := svc.Start(context.Background(), uuid.New(), simID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tc.lastPersonaReq.PersonaName != defaultPersonaName {
		t.Fatalf("persona name = %q, want default", tc.lastPersonaReq.PersonaName)
	}
	if tc.lastPersonaReq.SystemPrompt != defaultSystemPrompt {
		t.Fatal("expected default system prompt")
	}
	if tc.lastPersonaReq.Context != defaultContext {
		t.Fatal("expected default context")
	}
}

func TestPersonaFailureSkipsConversation(t *testing.T) {
	svc, tc, tr, simID := conversationFixture(t)
	tc.personaErr = &tavus.APIError{Status: 500, Body: "upstream exploded"}
	userID := uuid.New()

	sess, err := svc.Start(context.Background(), userID, simID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Phase != PhaseError {
		t.Fatalf("phase = %q, want %q", sess.Phase, PhaseError)
	}
	if tc.conversationCalls != 0 {
		t.Fatalf("conversation calls = %d, want 0 after persona failure", tc.conversationCalls)
	}
	if sess.ConversationURL != "" {
		t.Fatal("conversation handle must stay unset after persona failure")
	}
	if tr.joins != 0 {
		t.Fatalf("transport joins = %d, want 0", tr.joins)
	}
	if !strings.Contains(sess.StatusMessage, "500") {
		t.Fatalf("generic failure message should carry upstream status: %q", sess.StatusMessage)
	}
}

func TestQuotaExhaustionDistinctMessage(t *testing.T) {
	svc, tc, _, simID := conversationFixture(t)
	tc.personaErr = fmt.Errorf("%w: out of credits", tavus.ErrQuotaExhausted)

	sess, err := svc.Start(context.Background(), uuid.New(), simID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Phase != PhaseError {
		t.Fatalf("phase = %q, want %q", sess.Phase, PhaseError)
	}
	if sess.StatusMessage != quotaMessage {
		t.Fatalf("status = %q, want quota-specific message", sess.StatusMessage)
	}
	if strings.Contains(sess.StatusMessage, "request failed") {
		t.Fatal("quota message must differ from the generic failure text")
	}
}

func TestConversationFailureEntersError(t *testing.T) {
	svc, tc, tr, simID := conversationFixture(t)
	tc.conversationErr = &tavus.APIError{Status: 503, Body: "busy"}

	sess, err := svc.Start(context.Background(), uuid.New(), simID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Phase != PhaseError {
		t.Fatalf("phase = %q, want %q", sess.Phase, PhaseError)
	}
	if sess.PersonaID != "p_123" {
		t.Fatal("persona id from the successful first step should survive")
	}
	if tr.joins != 0 {
		t.Fatalf("transport joins = %d, want 0", tr.joins)
	}
}

func TestLeaveAndRestartCycle(t *testing.T) {
	svc, _, tr, simID := conversationFixture(t)
	userID := uuid.New()

	if _, err := svc.Start(context.Background(), userID, simID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sess, err := svc.Leave(context.Background(), userID)
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if sess.Phase != PhaseEnded {
		t.Fatalf("phase = %q, want %q", sess.Phase, PhaseEnded)
	}
	if sess.ConversationURL != "" {
		t.Fatal("join handle must be cleared on leave")
	}
	if tr.leaves != 1 {
		t.Fatalf("transport leaves = %d, want 1", tr.leaves)
	}
	if tr.lastLeftURL != "https://rooms.example/c_456" {
		t.Fatalf("leave must name the joined room, got %q", tr.lastLeftURL)
	}

	sess, err = svc.Restart(userID)
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if sess.Phase != PhaseIdle {
		t.Fatalf("phase = %q, want %q", sess.Phase, PhaseIdle)
	}
	if sess.SimulationID != simID {
		t.Fatal("restart must preserve the selected simulation")
	}
	if sess.PersonaID != "" || sess.ConversationURL != "" {
		t.Fatal("restart must clear persona and conversation fields")
	}

	// The same scenario can be started again.
	if _, err := svc.Start(context.Background(), userID, simID); err != nil {
		t.Fatalf("Start after restart: %v", err)
	}
}

func TestStartRejectedWhileInCall(t *testing.T) {
	svc, _, _, simID := conversationFixture(t)
	userID := uuid.New()

	if _, err := svc.Start(context.Background(), userID, simID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Start(context.Background(), userID, simID); err == nil {
		t.Fatal("expected second Start to be rejected while in call")
	}
}

func TestLeaveInvalidWithoutCall(t *testing.T) {
	svc, _, _, _ := conversationFixture(t)
	if _, err := svc.Leave(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected Leave without a call to fail")
	}
}

func TestRestartAfterErrorPreservesSimulation(t *testing.T) {
	svc, tc, _, simID := conversationFixture(t)
	tc.personaErr = &tavus.APIError{Status: 500, Body: "boom"}
	userID := uuid.New()

	if _, err := svc.Start(context.Background(), userID, simID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sess, err := svc.Restart(userID)
	if err != nil {
		t.Fatalf("Restart from error: %v", err)
	}
	if sess.Phase != PhaseIdle || sess.SimulationID != simID {
		t.Fatalf("unexpected session after restart: %+v", sess)
	}
}

func TestRestartDuringPersonaCreationDiscardsResult(t *testing.T) {
	svc, tc, _, simID := conversationFixture(t)
	userID := uuid.New()

	// The user abandons setup while the persona request is still in flight.
	tc.duringPersona = func() {
		if _, err := svc.Restart(userID); err != nil {
			t.Errorf("Restart during persona creation: %v", err)
		}
	}

	snap, err := svc.Start(context.Background(), userID, simID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if snap.Phase != PhaseIdle {
		t.Fatalf("phase = %q, want %q (superseded result must be dropped)", snap.Phase, PhaseIdle)
	}
	if snap.PersonaID != "" || snap.ConversationURL != "" {
		t.Fatalf("stale attempt leaked into the session: %+v", snap)
	}
	if tc.conversationCalls != 0 {
		t.Fatalf("conversation created for a superseded attempt: %d calls", tc.conversationCalls)
	}
	current, ok := svc.Get(userID)
	if !ok || current.Phase != PhaseIdle {
		t.Fatalf("session after restart = %+v, want idle", current)
	}
	if current.SimulationID != simID {
		t.Fatalf("restart lost the selected simulation: %s", current.SimulationID)
	}
}

func TestRestartIdleRejected(t *testing.T) {
	svc, _, _, _ := conversationFixture(t)
	if _, err := svc.Restart(uuid.New()); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase for unknown session, got %v", err)
	}
}

