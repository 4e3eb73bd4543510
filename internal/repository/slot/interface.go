// File: internal/repository/slot/interface.go
package slot

import "context"

// Slot is a durable key-value cell holding one opaque blob per key.
// Writes replace the whole value; there are no partial updates.
type Slot interface {
	// Get returns the stored value, or ErrEmpty when nothing was written yet.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the slot.
	Close() error
}
