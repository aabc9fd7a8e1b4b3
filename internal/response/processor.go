// Package response converts inbound AI-session activities into messages fit
// for the user channel.
package response

import (
	"log/slog"

	"github.com/relaydesk/handoff/internal/activity"
	"github.com/relaydesk/handoff/internal/citation"
)

// Processor builds user-facing messages from AI-session activities.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a response processor.
func NewProcessor(log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{logger: log.With(slog.String("component", "response_processor"))}
}

// BuildUserFacingMessage creates the outbound message for an inbound
// AI-session activity. The text tail is cleaned of redundant citation lists,
// stream transport fields are stripped from channel data, and citation
// entities are normalized. Membership and reaction fields are intrinsic to
// the original turn and are never carried onto the new message.
func (p *Processor) BuildUserFacingMessage(inbound activity.Activity, logContext string) activity.Activity {
	p.logger.Info("activity received from AI session", slog.String("context", logContext))

	out := activity.NewMessage(inbound.Text)
	out.Text = citation.RemoveTrailingCitations(inbound.Text, inbound.Entities)
	out.TextFormat = inbound.TextFormat
	out.InputHint = inbound.InputHint
	out.Attachments = inbound.Attachments
	out.SuggestedActions = inbound.SuggestedActions

	out.ChannelData = inbound.ChannelData.WithoutStreamFields()

	if len(inbound.Entities) > 0 {
		out.Entities = citation.FixCitations(inbound.Entities)
	}

	p.logger.Info("activity prepared for user", slog.String("context", logContext))
	return out
}
