package platform

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/relaydesk/handoff/internal/activity"
	"github.com/relaydesk/handoff/internal/proactive"
)

// liveAgentPrefix marks human-agent messages on the user channel.
const liveAgentPrefix = "[Live Agent]"

// Inbound webhook wire shapes.
type webhookPayload struct {
	Channel     webhookChannel       `json:"channel"`
	Text        string               `json:"text"`
	ContentData []webhookContentItem `json:"contentData"`
}

type webhookChannel struct {
	To webhookParty `json:"to"`
}

type webhookParty struct {
	ID string `json:"id"`
}

type webhookContentItem struct {
	Attachment webhookAttachment `json:"attachment"`
}

type webhookAttachment struct {
	Mime     string `json:"mime"`
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// InboundProcessor handles platform webhooks: it verifies the signature,
// resolves the user conversation from the stored reference, and proactively
// continues it with the agent's message or a typing signal.
type InboundProcessor struct {
	logger *slog.Logger
	secret string
	refs   *ReferenceStore
	host   proactive.Host
}

// NewInboundProcessor creates the webhook processor. An empty secret
// disables signature validation; that is a deployment policy decision made
// here, not by the validator.
func NewInboundProcessor(log *slog.Logger, secret string, refs *ReferenceStore, host proactive.Host) *InboundProcessor {
	if log == nil {
		log = slog.Default()
	}
	return &InboundProcessor{
		logger: log.With(slog.String("component", "platform_inbound")),
		secret: secret,
		refs:   refs,
		host:   host,
	}
}

// HandleInboundWebhook processes one platform webhook event. Signature
// failure is fatal before any body processing. A payload with no routing key
// or no stored reference is dropped silently so a poisoned webhook cannot
// drive a crash/retry loop. An empty text payload is a liveness signal and
// yields only a typing indicator.
func (p *InboundProcessor) HandleInboundWebhook(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if p.secret != "" {
		if !ValidateSignature(p.secret, rawBody, signatureHeader) {
			return ErrUnauthorized
		}
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		p.logger.Debug("dropping undecodable webhook payload", slog.Any("error", err))
		return nil
	}
	routingKey := strings.TrimSpace(payload.Channel.To.ID)
	if routingKey == "" {
		p.logger.Debug("dropping webhook without routing key")
		return nil
	}

	ref, found, err := p.refs.Load(ctx, routingKey)
	if err != nil {
		return err
	}
	if !found {
		// Unknown conversation or already cleaned up.
		p.logger.Debug("dropping webhook for unknown conversation", slog.String("routing_key", routingKey))
		return nil
	}

	if strings.TrimSpace(payload.Text) == "" {
		return p.host.ContinueConversation(ctx, ref, func(ctx context.Context, send proactive.Sender) error {
			return send.SendActivity(ctx, activity.Activity{Type: activity.TypeTyping})
		})
	}

	message := activity.NewMessage(liveAgentPrefix + " - " + payload.Text)
	message.Attachments = webhookAttachments(payload.ContentData)
	return p.host.ContinueConversation(ctx, ref, func(ctx context.Context, send proactive.Sender) error {
		return send.SendActivity(ctx, message)
	})
}

func webhookAttachments(items []webhookContentItem) []activity.Attachment {
	if len(items) == 0 {
		return nil
	}
	attachments := make([]activity.Attachment, 0, len(items))
	for _, item := range items {
		att := item.Attachment
		if strings.TrimSpace(att.Mime) == "" || strings.TrimSpace(att.URL) == "" {
			continue
		}
		if strings.EqualFold(att.Mime, "text/html") {
			continue
		}
		attachments = append(attachments, activity.Attachment{
			ContentType: att.Mime,
			ContentURL:  att.URL,
			Name:        att.FileName,
		})
	}
	if len(attachments) == 0 {
		return nil
	}
	return attachments
}
