// Package bridge orchestrates a conversation across the AI session and the
// contact-center platform: it routes user turns, watches for the hand-off
// event, and handles reset.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/relaydesk/handoff/internal/activity"
	"github.com/relaydesk/handoff/internal/platform"
	"github.com/relaydesk/handoff/internal/response"
	"github.com/relaydesk/handoff/internal/session"
	"github.com/relaydesk/handoff/internal/state"
)

// HandoffEventName is the AI-session event that triggers escalation.
const HandoffEventName = "LiveAgentHandoff"

// resetCommand clears the conversation on request from the user.
// signOutCommand ends the user's session; it clears local state only and
// always succeeds.
const (
	resetCommand   = "-reset"
	signOutCommand = "-signout"
)

const (
	escalationApology   = "I'm sorry, I couldn't reach a live agent right now. Please try again."
	deliveryApology     = "I'm sorry, I couldn't deliver your message to the agent. Please try again."
	resetConfirmation   = "The conversation has been reset."
	signOutConfirmation = "You have signed out"
)

// Sender delivers activities back to the user for the current turn.
type Sender interface {
	SendActivity(ctx context.Context, act activity.Activity) error
}

// Bridge processes one user turn at a time. Before escalation, turns flow to
// the AI session; after, straight to the platform relay.
type Bridge struct {
	logger    *slog.Logger
	sessions  session.Client
	relay     *platform.Relay
	states    *state.Manager
	responses *response.Processor
}

// New creates the bridge orchestrator.
func New(log *slog.Logger, sessions session.Client, relay *platform.Relay, states *state.Manager, responses *response.Processor) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{
		logger:    log.With(slog.String("component", "bridge")),
		sessions:  sessions,
		relay:     relay,
		states:    states,
		responses: responses,
	}
}

// HandleTurn routes one inbound user activity. Relay failures surface to the
// user as a generic apology; the bridge never sends error content to the
// platform.
func (b *Bridge) HandleTurn(ctx context.Context, turn activity.Activity, send Sender) error {
	bucket := b.states.Bucket(turn.Conversation.ID)

	if turn.IsType(activity.TypeMessage) {
		switch strings.TrimSpace(turn.Text) {
		case resetCommand:
			return b.handleReset(ctx, bucket, send)
		case signOutCommand:
			return b.handleSignOut(ctx, bucket, send)
		}
	}

	sessionID, err := bucket.ExternalSessionID(ctx)
	if err != nil {
		return err
	}

	if sessionID == "" {
		return b.startSession(ctx, bucket, send)
	}

	if !turn.IsType(activity.TypeMessage) {
		return nil
	}

	escalated, err := bucket.IsEscalated(ctx)
	if err != nil {
		return err
	}
	if escalated {
		if err := b.relay.SendToPlatform(ctx, turn, sessionID); err != nil {
			b.logger.Error("relay to platform failed", slog.Any("error", err))
			return send.SendActivity(ctx, activity.NewMessage(deliveryApology))
		}
		return nil
	}
	return b.forwardToSession(ctx, bucket, turn, sessionID, send)
}

// startSession opens the AI session and relays its greeting to the user.
func (b *Bridge) startSession(ctx context.Context, bucket *state.Bucket, send Sender) error {
	activities, err := b.sessions.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	for _, act := range activities {
		if !act.IsType(activity.TypeMessage) {
			continue
		}
		if err := send.SendActivity(ctx, b.responses.BuildUserFacingMessage(act, "StartConversation")); err != nil {
			return err
		}
		if strings.TrimSpace(act.Conversation.ID) != "" {
			if err := bucket.SetExternalSessionID(ctx, act.Conversation.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// forwardToSession sends a turn into the AI session and handles its replies,
// including a possible hand-off event.
func (b *Bridge) forwardToSession(ctx context.Context, bucket *state.Bucket, turn activity.Activity, sessionID string, send Sender) error {
	activities, err := b.sessions.SendActivity(ctx, turn)
	if err != nil {
		return fmt.Errorf("send to session: %w", err)
	}
	for _, act := range activities {
		if act.IsType(activity.TypeMessage) {
			if err := send.SendActivity(ctx, b.responses.BuildUserFacingMessage(act, "AskQuestion")); err != nil {
				return err
			}
		}
		if act.IsType(activity.TypeEvent) && act.Name == HandoffEventName {
			if err := b.escalate(ctx, bucket, turn, act, sessionID, send); err != nil {
				return err
			}
		}
	}
	return nil
}

// escalate marks the conversation escalated and relays the hand-off summary
// to the platform so the human agent has context.
func (b *Bridge) escalate(ctx context.Context, bucket *state.Bucket, turn activity.Activity, event activity.Activity, sessionID string, send Sender) error {
	if err := bucket.SetEscalated(ctx, true); err != nil {
		return err
	}

	// The summary keeps the turn's routing and identity fields unchanged:
	// the relay re-derives and persists the conversation reference from the
	// activity it sends, and that reference must keep mapping the end user
	// as the sender for later proactive deliveries.
	summary := activity.NewMessage(strings.TrimSpace(event.Value))
	summary.ChannelID = turn.ChannelID
	summary.ServiceURL = turn.ServiceURL
	summary.Conversation = turn.Conversation
	summary.From = turn.From
	summary.Recipient = turn.Recipient
	if summary.Text == "" {
		summary.Text = "The chat is being escalated to a human agent."
	}

	if err := b.relay.SendToPlatform(ctx, summary, sessionID); err != nil {
		b.logger.Error("escalation relay failed", slog.Any("error", err))
		return send.SendActivity(ctx, activity.NewMessage(escalationApology))
	}
	b.logger.Info("conversation escalated", slog.String("session_id", sessionID))
	return nil
}

// handleReset always succeeds locally: remote reference cleanup failure is
// logged, never surfaced to the user.
func (b *Bridge) handleReset(ctx context.Context, bucket *state.Bucket, send Sender) error {
	sessionID, err := bucket.ExternalSessionID(ctx)
	if err != nil {
		return err
	}
	if sessionID != "" {
		if err := b.relay.DeleteReference(ctx, sessionID); err != nil {
			b.logger.Warn("reference cleanup failed during reset", slog.Any("error", err))
		}
	}
	if err := bucket.Clear(ctx); err != nil {
		return err
	}
	return send.SendActivity(ctx, activity.NewMessage(resetConfirmation))
}

// handleSignOut clears the conversation's local state and confirms. There is
// no remote session to tear down; sign-out succeeds locally regardless.
func (b *Bridge) handleSignOut(ctx context.Context, bucket *state.Bucket, send Sender) error {
	if err := bucket.Clear(ctx); err != nil {
		return err
	}
	return send.SendActivity(ctx, activity.NewMessage(signOutConfirmation))
}
