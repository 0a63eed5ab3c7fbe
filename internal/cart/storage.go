package cart

import (
	"context"
	"errors"
)

// Storage is the persisted cart slot plus its cross-instance change feed.
// Consumers define this interface, not the Redis implementation.
type Storage interface {
	// Read returns the raw serialized cart, or ErrEmptySlot when the slot
	// has never been written.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the slot with the given payload.
	Write(ctx context.Context, payload []byte) error
	// Publish broadcasts the payload to every other open instance sharing
	// this slot.
	Publish(ctx context.Context, payload []byte) error
	// Updates delivers payloads published by other instances until the stop
	// function is called or ctx is cancelled.
	Updates(ctx context.Context) (<-chan []byte, func(), error)
}

var ErrEmptySlot = errors.New("cart slot is empty")
