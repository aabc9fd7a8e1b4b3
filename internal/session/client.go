// Package session defines the conversational-AI session collaborator: the
// bridge consumes it as a black-box activity stream producer.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relaydesk/handoff/internal/activity"
)

// Client is the AI-session boundary. Each call drains the session's reply
// stream for one exchange and returns it as a finite activity slice.
type Client interface {
	// StartSession opens a new AI-session conversation and returns its
	// greeting activities. The session's conversation id is carried on the
	// returned activities.
	StartSession(ctx context.Context) ([]activity.Activity, error)
	// SendActivity forwards one user activity into the open session and
	// returns the session's replies, which may include hand-off events.
	SendActivity(ctx context.Context, act activity.Activity) ([]activity.Activity, error)
}

// HTTPClient talks to an AI-session gateway over HTTP.
type HTTPClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewHTTPClient creates a session client for the given gateway.
func NewHTTPClient(log *slog.Logger, client *http.Client, baseURL, apiKey string) *HTTPClient {
	if log == nil {
		log = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		logger:  log.With(slog.String("component", "session_client")),
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (c *HTTPClient) StartSession(ctx context.Context) ([]activity.Activity, error) {
	return c.post(ctx, "/sessions", nil)
}

func (c *HTTPClient) SendActivity(ctx context.Context, act activity.Activity) ([]activity.Activity, error) {
	body, err := json.Marshal(act)
	if err != nil {
		return nil, fmt.Errorf("encode session activity: %w", err)
	}
	return c.post(ctx, "/sessions/activities", body)
}

func (c *HTTPClient) post(ctx context.Context, path string, body []byte) ([]activity.Activity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("session gateway returned %d", resp.StatusCode)
	}
	var activities []activity.Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("decode session reply: %w", err)
	}
	return activities, nil
}
