package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relaydesk/handoff/internal/activity"
	"github.com/relaydesk/handoff/internal/storage"
)

const referenceKeyPrefix = "ref:"

// ReferenceStore persists conversation references keyed by the external
// session id, so a later inbound webhook can resolve back to the user
// conversation it belongs to.
type ReferenceStore struct {
	store storage.Store
}

// NewReferenceStore creates a reference store over the storage collaborator.
func NewReferenceStore(store storage.Store) *ReferenceStore {
	return &ReferenceStore{store: store}
}

// Save writes the reference under the external session key. The reference is
// structurally stable once a session exists, so a concurrent last write
// winning is acceptable.
func (r *ReferenceStore) Save(ctx context.Context, externalKey string, ref activity.ConversationReference) error {
	externalKey = strings.TrimSpace(externalKey)
	if externalKey == "" {
		return fmt.Errorf("external conversation key is required")
	}
	raw, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("encode conversation reference: %w", err)
	}
	if err := r.store.Write(ctx, map[string][]byte{referenceKeyPrefix + externalKey: raw}); err != nil {
		return fmt.Errorf("store conversation reference: %w", err)
	}
	return nil
}

// Load returns the stored reference for the external session key. A missing
// or undecodable record reports found=false, not an error: the conversation
// is unknown or already cleaned up.
func (r *ReferenceStore) Load(ctx context.Context, externalKey string) (activity.ConversationReference, bool, error) {
	key := referenceKeyPrefix + strings.TrimSpace(externalKey)
	items, err := r.store.Read(ctx, []string{key})
	if err != nil {
		return activity.ConversationReference{}, false, fmt.Errorf("read conversation reference: %w", err)
	}
	raw, ok := items[key]
	if !ok {
		return activity.ConversationReference{}, false, nil
	}
	var ref activity.ConversationReference
	if err := json.Unmarshal(raw, &ref); err != nil {
		return activity.ConversationReference{}, false, nil
	}
	return ref, true, nil
}

// Delete removes the stored reference. Deleting an absent key is a no-op.
func (r *ReferenceStore) Delete(ctx context.Context, externalKey string) error {
	externalKey = strings.TrimSpace(externalKey)
	if externalKey == "" {
		return nil
	}
	return r.store.Delete(ctx, []string{referenceKeyPrefix + externalKey})
}
