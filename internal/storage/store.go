// Package storage provides the async key-value store collaborator backing
// conversation references and per-conversation handoff state.
package storage

import "context"

// Store is an async key-value store with per-key atomicity. Concurrent
// read-modify-write races between callers resolve last-write-wins.
type Store interface {
	// Read returns the values for the given keys. Missing keys are simply
	// absent from the result, not an error.
	Read(ctx context.Context, keys []string) (map[string][]byte, error)
	// Write stores all items.
	Write(ctx context.Context, items map[string][]byte) error
	// Delete removes the given keys. Deleting an absent key is a no-op.
	Delete(ctx context.Context, keys []string) error
}
