package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praxislabs/praxis-backend/internal/clients/tavus"
	"github.com/praxislabs/praxis-backend/internal/clients/transport"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/repos"
)

type ConversationPhase string

const (
	PhaseIdle                 ConversationPhase = "idle"
	PhaseCreatingPersona      ConversationPhase = "creating_persona"
	PhaseCreatingConversation ConversationPhase = "creating_conversation"
	PhaseInCall               ConversationPhase = "in_call"
	PhaseEnded                ConversationPhase = "ended"
	PhaseError                ConversationPhase = "error"
)

// Persona defaults when a simulation supplies no prompt of its own.
const (
	defaultPersonaName  = "Interviewer"
	defaultSystemPrompt = "As an Interviewer, you are a skilled professional who conducts thoughtful and structured interviews. Your aim is to ask insightful questions, listen carefully, and assess responses objectively to identify the best candidates."
	defaultContext      = "You have a track record of conducting interviews that put candidates at ease, draw out their strengths, and help organizations make excellent hiring decisions."
	defaultReplicaID    = "rfe12d8b9597"

	quotaMessage = "The avatar service is out of conversation credits. Please try again later."
)

// ConversationSession is the ephemeral run-time record for one user's live
// conversation. It lives in memory only and is discarded on restart.
type ConversationSession struct {
	SimulationID    uuid.UUID         `json:"simulation_id"`
	SimulationName  string            `json:"simulation_name"`
	Phase           ConversationPhase `json:"phase"`
	PersonaID       string            `json:"persona_id,omitempty"`
	ConversationURL string            `json:"conversation_url,omitempty"`
	StatusMessage   string            `json:"status_message"`
	StartedAt       time.Time         `json:"started_at,omitempty"`
}

var ErrInvalidPhase = errors.New("invalid conversation phase for this action")

// ConversationService drives the persona -> conversation -> join sequence.
// Each step must resolve before the next is attempted; failures are terminal
// for the attempt and require an explicit Start or Restart. No retries.
type ConversationService interface {
	Start(ctx context.Context, userID uuid.UUID, simID uuid.UUID) (*ConversationSession, error)
	Get(userID uuid.UUID) (*ConversationSession, bool)
	Leave(ctx context.Context, userID uuid.UUID) (*ConversationSession, error)
	Restart(userID uuid.UUID) (*ConversationSession, error)
}

type conversationSession struct {
	ConversationSession
	// attempt guards against a response from a superseded Start mutating
	// current state.
	attempt int
}

type conversationService struct {
	log            *logger.Logger
	simulationRepo repos.SimulationRepo
	tavusClient    tavus.Client
	transport      transport.Client

	mu       sync.Mutex
	sessions map[uuid.UUID]*conversationSession
}

func NewConversationService(log *logger.Logger, simulationRepo repos.SimulationRepo, tavusClient tavus.Client, transportClient transport.Client) ConversationService {
	return &conversationService{
		log:            log.With("service", "ConversationService"),
		simulationRepo: simulationRepo,
		tavusClient:    tavusClient,
		transport:      transportClient,
		sessions:       map[uuid.UUID]*conversationSession{},
	}
}

func (cs *conversationService) Start(ctx context.Context, userID uuid.UUID, simID uuid.UUID) (*ConversationSession, error) {
	sim, err := cs.simulationRepo.GetByID(ctx, nil, simID)
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation: %w", err)
	}

	cs.mu.Lock()
	existing := cs.sessions[userID]
	if existing != nil && existing.Phase != PhaseIdle && existing.Phase != PhaseEnded {
		phase := existing.Phase
		cs.mu.Unlock()
		return nil, fmt.Errorf("cannot start from phase %q: %w", phase, ErrInvalidPhase)
	}
	sess := &conversationSession{
		ConversationSession: ConversationSession{
			SimulationID:   sim.ID,
			SimulationName: sim.Name,
			Phase:          PhaseCreatingPersona,
			StatusMessage:  "Creating persona...",
		},
	}
	if existing != nil {
		sess.attempt = existing.attempt + 1
	}
	cs.sessions[userID] = sess
	attempt := sess.attempt
	cs.mu.Unlock()

	personaReq := tavus.CreatePersonaRequest{
		PersonaName:      sim.Name,
		SystemPrompt:     sim.SystemPrompt,
		Context:          sim.Context,
		PipelineMode:     "full",
		DefaultReplicaID: defaultReplicaID,
		Layers: tavus.Layers{
			Perception: tavus.PerceptionLayer{PerceptionModel: "raven-0"},
			STT:        tavus.STTLayer{STTEngine: "tavus-advanced", SmartTurnDetection: true},
		},
	}
	if personaReq.PersonaName == "" {
		personaReq.PersonaName = defaultPersonaName
	}
	if personaReq.SystemPrompt == "" {
		personaReq.SystemPrompt = defaultSystemPrompt
	}
	if personaReq.Context == "" {
		personaReq.Context = defaultContext
	}

	persona, pErr := cs.tavusClient.CreatePersona(ctx, personaReq)
	if pErr != nil {
		return cs.failAttempt(userID, attempt, "persona creation", pErr)
	}
	if snap, ok := cs.applyAttempt(userID, attempt, func(s *conversationSession) {
		s.PersonaID = persona.PersonaID
		s.Phase = PhaseCreatingConversation
		s.StatusMessage = "Creating conversation..."
	}); !ok {
		return snap, nil
	}

	conv, cErr := cs.tavusClient.CreateConversation(ctx, tavus.CreateConversationRequest{
		PersonaID:        persona.PersonaID,
		ConversationName: sim.Name + " Session",
	})
	if cErr != nil {
		return cs.failAttempt(userID, attempt, "conversation creation", cErr)
	}
	snap, ok := cs.applyAttempt(userID, attempt, func(s *conversationSession) {
		s.ConversationURL = conv.ConversationURL
		s.Phase = PhaseInCall
		s.StatusMessage = "Joining conversation..."
		s.StartedAt = time.Now()
	})
	if !ok {
		return snap, nil
	}

	// Join is best-effort: the transport library owns reconnection, so a
	// failure here is logged and the call state still advances.
	if jErr := cs.transport.Join(ctx, conv.ConversationURL); jErr != nil {
		cs.log.Warn("Transport join failed", "user_id", userID, "error", jErr)
	}
	return snap, nil
}

func (cs *conversationService) Get(userID uuid.UUID) (*ConversationSession, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	sess, ok := cs.sessions[userID]
	if !ok {
		return nil, false
	}
	snap := sess.ConversationSession
	return &snap, true
}

func (cs *conversationService) Leave(ctx context.Context, userID uuid.UUID) (*ConversationSession, error) {
	cs.mu.Lock()
	sess, ok := cs.sessions[userID]
	if !ok || sess.Phase != PhaseInCall {
		cs.mu.Unlock()
		return nil, fmt.Errorf("no conversation in progress: %w", ErrInvalidPhase)
	}
	sess.attempt++
	roomURL := sess.ConversationURL
	cs.mu.Unlock()

	if lErr := cs.transport.Leave(ctx, roomURL); lErr != nil {
		cs.log.Warn("Transport leave failed", "user_id", userID, "error", lErr)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	sess.ConversationURL = ""
	sess.Phase = PhaseEnded
	sess.StatusMessage = "Conversation ended"
	snap := sess.ConversationSession
	return &snap, nil
}

func (cs *conversationService) Restart(userID uuid.UUID) (*ConversationSession, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	sess, ok := cs.sessions[userID]
	if !ok {
		return nil, fmt.Errorf("nothing to restart: %w", ErrInvalidPhase)
	}
	switch sess.Phase {
	case PhaseEnded, PhaseError:
	case PhaseCreatingPersona, PhaseCreatingConversation:
		// Restarting mid-setup abandons the pending attempt; its response
		// arrives later and is dropped by the attempt guard.
	default:
		return nil, fmt.Errorf("nothing to restart: %w", ErrInvalidPhase)
	}
	// Keep the selected simulation so the same scenario can be retried.
	fresh := &conversationSession{
		ConversationSession: ConversationSession{
			SimulationID:   sess.SimulationID,
			SimulationName: sess.SimulationName,
			Phase:          PhaseIdle,
			StatusMessage:  "",
		},
		attempt: sess.attempt + 1,
	}
	cs.sessions[userID] = fresh
	snap := fresh.ConversationSession
	return &snap, nil
}

// applyAttempt mutates the session only if it still belongs to the given
// attempt. Returns the current snapshot and whether the mutation applied; a
// superseded attempt's result is simply dropped.
func (cs *conversationService) applyAttempt(userID uuid.UUID, attempt int, fn func(s *conversationSession)) (*ConversationSession, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	sess, ok := cs.sessions[userID]
	if !ok {
		return nil, false
	}
	if sess.attempt != attempt {
		snap := sess.ConversationSession
		return &snap, false
	}
	fn(sess)
	snap := sess.ConversationSession
	return &snap, true
}

func (cs *conversationService) failAttempt(userID uuid.UUID, attempt int, stage string, err error) (*ConversationSession, error) {
	message := fmt.Sprintf("Avatar service error during %s: %v", stage, err)
	var apiErr *tavus.APIError
	if errors.Is(err, tavus.ErrQuotaExhausted) {
		message = quotaMessage
	} else if errors.As(err, &apiErr) {
		message = fmt.Sprintf("Avatar service request failed (status %d)", apiErr.Status)
	}
	cs.log.Warn("Conversation attempt failed", "user_id", userID, "stage", stage, "error", err)
	snap, _ := cs.applyAttempt(userID, attempt, func(s *conversationSession) {
		s.Phase = PhaseError
		s.StatusMessage = message
	})
	return snap, nil
}
