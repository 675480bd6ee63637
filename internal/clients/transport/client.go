package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/praxislabs/praxis-backend/internal/logger"
)

// Client wraps the real-time room collaborator as a join/leave capability.
// Join failures are best-effort from the orchestrator's point of view: the
// room library manages its own reconnection, so callers log and move on.
type Client interface {
	Join(ctx context.Context, roomURL string) error
	Leave(ctx context.Context, roomURL string) error
}

func New(log *logger.Logger) Client {
	return &client{
		log:        log.With("client", "TransportClient"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
}

func (c *client) Join(ctx context.Context, roomURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(roomURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid room url %q", roomURL)
	}

	// Reachability probe only; the browser client owns the actual media
	// session.
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, parsed.String(), nil)
	if err != nil {
		return fmt.Errorf("build join probe: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("room unreachable: %w", err)
	}
	resp.Body.Close()

	c.log.Info("Joined room", "url", parsed.Redacted())
	return nil
}

// Leave takes the room URL from the caller: the client is shared across all
// users of the process, so it keeps no per-room state of its own.
func (c *client) Leave(ctx context.Context, roomURL string) error {
	if strings.TrimSpace(roomURL) == "" {
		return nil
	}
	parsed, err := url.Parse(roomURL)
	if err != nil {
		return fmt.Errorf("invalid room url %q", roomURL)
	}
	c.log.Info("Left room", "url", parsed.Redacted())
	return nil
}
