package tavus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/utils"
)

// ErrQuotaExhausted marks the upstream 402 "out of conversational credits"
// response. Callers surface it with a different message than a generic
// upstream failure.
var ErrQuotaExhausted = errors.New("tavus quota exhausted")

// APIError carries a non-2xx upstream status and body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tavus api error: %d - %s", e.Status, e.Body)
}

type Client interface {
	CreatePersona(ctx context.Context, req CreatePersonaRequest) (*Persona, error)
	CreateConversation(ctx context.Context, req CreateConversationRequest) (*Conversation, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv(log *logger.Logger) Config {
	timeoutSec := utils.GetEnvAsInt("TAVUS_TIMEOUT_SECONDS", 30, log)
	return Config{
		APIKey:  strings.TrimSpace(os.Getenv("TAVUS_API_KEY")),
		BaseURL: strings.TrimSpace(os.Getenv("TAVUS_BASE_URL")),
		Timeout: time.Duration(timeoutSec) * time.Second,
	}
}

func NewFromEnv(log *logger.Logger) (Client, error) {
	return New(log, ConfigFromEnv(log))
}

func New(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing TAVUS_API_KEY")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://tavusapi.com"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &client{
		log:        log.With("client", "TavusClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// --- public request/response types ---

type PerceptionLayer struct {
	PerceptionModel string `json:"perception_model"`
}

type STTLayer struct {
	STTEngine          string `json:"stt_engine"`
	SmartTurnDetection bool   `json:"smart_turn_detection"`
}

type Layers struct {
	Perception PerceptionLayer `json:"perception"`
	STT        STTLayer        `json:"stt"`
}

type CreatePersonaRequest struct {
	PersonaName      string `json:"persona_name"`
	SystemPrompt     string `json:"system_prompt"`
	Context          string `json:"context"`
	PipelineMode     string `json:"pipeline_mode"`
	DefaultReplicaID string `json:"default_replica_id"`
	Layers           Layers `json:"layers"`
}

type Persona struct {
	PersonaID   string `json:"persona_id"`
	PersonaName string `json:"persona_name"`
}

type CreateConversationRequest struct {
	PersonaID        string `json:"persona_id"`
	ConversationName string `json:"conversation_name"`
}

type Conversation struct {
	ConversationID  string `json:"conversation_id"`
	ConversationURL string `json:"conversation_url"`
	Status          string `json:"status"`
}

func (c *client) CreatePersona(ctx context.Context, req CreatePersonaRequest) (*Persona, error) {
	var out Persona
	if err := c.post(ctx, "/v2/personas", req, &out); err != nil {
		return nil, err
	}
	if out.PersonaID == "" {
		return nil, fmt.Errorf("tavus persona response missing persona_id")
	}
	return &out, nil
}

func (c *client) CreateConversation(ctx context.Context, req CreateConversationRequest) (*Conversation, error) {
	if strings.TrimSpace(req.PersonaID) == "" {
		return nil, fmt.Errorf("persona_id is required")
	}
	var out Conversation
	if err := c.post(ctx, "/v2/conversations", req, &out); err != nil {
		return nil, err
	}
	if out.ConversationURL == "" {
		return nil, fmt.Errorf("tavus conversation response missing conversation_url")
	}
	return &out, nil
}

func (c *client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("tavus request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read tavus response: %w", err)
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		c.log.Warn("Tavus quota exhausted", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: %s", ErrQuotaExhausted, strings.TrimSpace(string(respBody)))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("Tavus request failed", "path", path, "status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode tavus response: %w", err)
	}
	return nil
}
