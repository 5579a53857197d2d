package session

import "context"

// Store keeps per-visitor state keyed by an opaque id
type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	// Update runs fn on the current value (zero value when absent) and stores the result atomically.
	Update(ctx context.Context, id string, fn func(v T) T) (T, error)
	NewID() string
}
