// Package state manages per-conversation handoff state: the open AI-session
// id and the escalation flag.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/relaydesk/handoff/internal/storage"
)

// ErrValidation indicates a malformed required field.
var ErrValidation = errors.New("validation error")

const conversationKeyPrefix = "conv:"

// handoffState is the persisted per-conversation record. Escalated true
// implies ExternalSessionID is non-empty: escalation cannot occur before a
// session exists.
type handoffState struct {
	ExternalSessionID string `json:"external_session_id,omitempty"`
	Escalated         bool   `json:"escalated,omitempty"`
}

// Manager reads and writes handoff state through the storage collaborator.
type Manager struct {
	store storage.Store
}

// NewManager creates a state manager over the given store.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Bucket scopes state operations to one conversation, keyed by the
// platform-native conversation id.
func (m *Manager) Bucket(conversationID string) *Bucket {
	return &Bucket{store: m.store, key: conversationKeyPrefix + strings.TrimSpace(conversationID)}
}

// Bucket is the state of a single conversation. The whole record lives under
// one key, so Clear removes both fields atomically from the caller's view.
type Bucket struct {
	store storage.Store
	key   string
}

// ExternalSessionID returns the open AI-session id, or empty when no session
// has been started. Unset state is not an error.
func (b *Bucket) ExternalSessionID(ctx context.Context) (string, error) {
	current, err := b.load(ctx)
	if err != nil {
		return "", err
	}
	return current.ExternalSessionID, nil
}

// SetExternalSessionID records the open AI-session id. Empty input is
// rejected.
func (b *Bucket) SetExternalSessionID(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("%w: external session id is required", ErrValidation)
	}
	current, err := b.load(ctx)
	if err != nil {
		return err
	}
	current.ExternalSessionID = sessionID
	return b.save(ctx, current)
}

// IsEscalated reports whether the conversation has been handed off to a
// human agent. Unset state reads as false.
func (b *Bucket) IsEscalated(ctx context.Context) (bool, error) {
	current, err := b.load(ctx)
	if err != nil {
		return false, err
	}
	return current.Escalated, nil
}

// SetEscalated records the hand-off transition. Escalating a conversation
// with no open session violates the state invariant and is rejected.
func (b *Bucket) SetEscalated(ctx context.Context, escalated bool) error {
	current, err := b.load(ctx)
	if err != nil {
		return err
	}
	if escalated && current.ExternalSessionID == "" {
		return fmt.Errorf("%w: cannot escalate before a session exists", ErrValidation)
	}
	current.Escalated = escalated
	return b.save(ctx, current)
}

// Clear deletes the conversation's state entirely.
func (b *Bucket) Clear(ctx context.Context) error {
	return b.store.Delete(ctx, []string{b.key})
}

func (b *Bucket) load(ctx context.Context) (handoffState, error) {
	items, err := b.store.Read(ctx, []string{b.key})
	if err != nil {
		return handoffState{}, fmt.Errorf("read handoff state: %w", err)
	}
	raw, ok := items[b.key]
	if !ok {
		return handoffState{}, nil
	}
	var current handoffState
	if err := json.Unmarshal(raw, &current); err != nil {
		return handoffState{}, fmt.Errorf("decode handoff state: %w", err)
	}
	return current, nil
}

func (b *Bucket) save(ctx context.Context, current handoffState) error {
	raw, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode handoff state: %w", err)
	}
	if err := b.store.Write(ctx, map[string][]byte{b.key: raw}); err != nil {
		return fmt.Errorf("write handoff state: %w", err)
	}
	return nil
}
