package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relaydesk/handoff/internal/activity"
)

// Relay builds and sends authenticated messages to the platform's open
// messaging inbound endpoint.
type Relay struct {
	logger        *slog.Logger
	client        *http.Client
	auth          *Authenticator
	refs          *ReferenceStore
	apiURL        string
	integrationID string
	now           func() time.Time
}

// NewRelay creates the outbound relay.
func NewRelay(log *slog.Logger, client *http.Client, auth *Authenticator, refs *ReferenceStore, apiURL, integrationID string) *Relay {
	if log == nil {
		log = slog.Default()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Relay{
		logger:        log.With(slog.String("component", "platform_relay")),
		client:        client,
		auth:          auth,
		refs:          refs,
		apiURL:        strings.TrimRight(apiURL, "/"),
		integrationID: integrationID,
		now:           time.Now,
	}
}

// Open messaging wire shapes.
type relayPayload struct {
	Channel relayChannel       `json:"channel"`
	Text    string             `json:"text"`
	Content []relayContentItem `json:"content,omitempty"`
}

type relayChannel struct {
	MessageID string     `json:"messageId,omitempty"`
	From      relayFrom  `json:"from"`
	Time      string     `json:"time"`
}

type relayFrom struct {
	Nickname string `json:"nickname,omitempty"`
	ID       string `json:"id"`
	IDType   string `json:"idType"`
}

type relayContentItem struct {
	Attachment relayAttachment `json:"attachment"`
}

type relayAttachment struct {
	MediaType string `json:"mediaType"`
	URL       string `json:"url,omitempty"`
	ID        string `json:"id"`
	Mime      string `json:"mime,omitempty"`
	FileName  string `json:"fileName,omitempty"`
}

// SendToPlatform relays one user activity to the external platform. The
// conversation reference is refreshed first so a later inbound webhook can
// resolve back to this conversation even after a restart. A non-2xx response
// is fatal for this call; retry policy belongs to the caller.
func (r *Relay) SendToPlatform(ctx context.Context, act activity.Activity, externalKey string) error {
	token, err := r.auth.GetToken(ctx)
	if err != nil {
		return err
	}

	if err := r.refs.Save(ctx, externalKey, act.Reference()); err != nil {
		return err
	}

	payload := r.buildPayload(act, externalKey)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode relay payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v2/conversations/messages/%s/inbound/open/message", r.apiURL, r.integrationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: platform returned %d", ErrRelayFailed, resp.StatusCode)
	}

	r.logger.Info("message relayed to platform", slog.String("external_key", externalKey))
	return nil
}

// DeleteReference drops the stored conversation reference for a session.
func (r *Relay) DeleteReference(ctx context.Context, externalKey string) error {
	return r.refs.Delete(ctx, externalKey)
}

func (r *Relay) buildPayload(act activity.Activity, externalKey string) relayPayload {
	return relayPayload{
		Channel: relayChannel{
			MessageID: act.ID,
			From: relayFrom{
				Nickname: act.From.Name,
				ID:       externalKey,
				IDType:   "Opaque",
			},
			Time: r.now().UTC().Format(time.RFC3339Nano),
		},
		Text:    act.Text,
		Content: buildContent(act.Attachments),
	}
}

// buildContent maps message attachments onto the platform's content items.
// HTML card bodies are a channel rendering detail and are excluded; MIME
// types collapse to the platform's coarse media categories.
func buildContent(attachments []activity.Attachment) []relayContentItem {
	if len(attachments) == 0 {
		return nil
	}
	content := make([]relayContentItem, 0, len(attachments))
	for _, att := range attachments {
		if strings.EqualFold(att.ContentType, "text/html") {
			continue
		}
		content = append(content, relayContentItem{
			Attachment: relayAttachment{
				MediaType: mediaCategory(att.ContentType),
				URL:       att.ContentURL,
				ID:        uuid.NewString(),
				Mime:      att.ContentType,
				FileName:  att.Name,
			},
		})
	}
	if len(content) == 0 {
		return nil
	}
	return content
}

func mediaCategory(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return "Image"
	case strings.HasPrefix(mime, "video/"):
		return "Video"
	case strings.HasPrefix(mime, "audio/"):
		return "Audio"
	default:
		return "File"
	}
}
