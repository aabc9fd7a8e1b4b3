// Package proactive delivers activities into a conversation outside the
// request/response cycle that created it, using a stored conversation
// reference.
package proactive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/relaydesk/handoff/internal/activity"
)

// Sender delivers activities within a continued conversation turn.
type Sender interface {
	SendActivity(ctx context.Context, act activity.Activity) error
}

// Host resumes a conversation from a stored reference and runs the callback
// with a sender scoped to it. The send uses the reference's identity claims,
// never the identity of whatever request triggered the continuation.
type Host interface {
	ContinueConversation(ctx context.Context, ref activity.ConversationReference, callback func(ctx context.Context, send Sender) error) error
}

// HTTPHost delivers continuation activities to the reference's service URL.
type HTTPHost struct {
	logger *slog.Logger
	client *http.Client
}

// NewHTTPHost creates a proactive host over the given HTTP client.
func NewHTTPHost(log *slog.Logger, client *http.Client) *HTTPHost {
	if log == nil {
		log = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPHost{
		logger: log.With(slog.String("component", "proactive_host")),
		client: client,
	}
}

func (h *HTTPHost) ContinueConversation(ctx context.Context, ref activity.ConversationReference, callback func(ctx context.Context, send Sender) error) error {
	if !ref.IsValid() {
		return fmt.Errorf("conversation reference is not addressable")
	}
	return callback(ctx, &referenceSender{host: h, ref: ref})
}

type referenceSender struct {
	host *HTTPHost
	ref  activity.ConversationReference
}

// SendActivity stamps the activity with the stored reference's routing and
// identity fields and posts it to the conversation on the user channel.
func (s *referenceSender) SendActivity(ctx context.Context, act activity.Activity) error {
	act.ChannelID = s.ref.ChannelID
	act.ServiceURL = s.ref.ServiceURL
	act.Conversation = s.ref.Conversation
	act.From = s.ref.Agent
	act.Recipient = s.ref.User

	body, err := json.Marshal(act)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}
	endpoint := strings.TrimRight(s.ref.ServiceURL, "/") +
		"/v3/conversations/" + url.PathEscape(s.ref.Conversation.ID) + "/activities"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("proactive send: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.host.client.Do(req)
	if err != nil {
		return fmt.Errorf("proactive send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("proactive send: channel returned %d", resp.StatusCode)
	}
	return nil
}
