package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/creatorly/storefront/internal/domain"
)

func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		bus:     NewBus(),
	}
}

// Store is the single owner of one cart slot. All mutation goes through it
// so that persistence and both notification channels (the in-process bus
// and the cross-instance storage feed) are never skipped.
//
// There is no mutual exclusion across instances sharing a slot: concurrent
// mutations race read-modify-write and the last write wins.
type Store struct {
	storage Storage
	bus     *Bus
}

// Load returns the persisted line items in insertion order. A missing or
// unparseable slot is an empty cart, never an error; corrupt data is
// overwritten by the next successful write.
func (s *Store) Load(ctx context.Context) []domain.LineItem {
	data, err := s.storage.Read(ctx)
	if err != nil {
		if !errors.Is(err, ErrEmptySlot) {
			log.Printf("cart slot read error: %v", err)
		}
		return nil
	}

	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("cart slot holds invalid data, treating as empty: %v", err)
		return nil
	}
	return items
}

// Add merges into an existing line with the same product and variant by
// incrementing its quantity, or appends a new line. Quantities below 1 are
// clamped to 1.
func (s *Store) Add(ctx context.Context, item domain.LineItem) error {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	items := s.Load(ctx)
	for i := range items {
		if items[i].Matches(item.ProductID, item.VariantID) {
			items[i].Quantity += item.Quantity
			return s.save(ctx, items)
		}
	}
	return s.save(ctx, append(items, item))
}

// SetQuantity overwrites the quantity on the matching line. A quantity of
// zero or less removes the line. No-op when no line matches.
func (s *Store) SetQuantity(ctx context.Context, productID, variantID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID, variantID)
	}

	items := s.Load(ctx)
	for i := range items {
		if items[i].Matches(productID, variantID) {
			items[i].Quantity = quantity
			return s.save(ctx, items)
		}
	}
	return nil
}

// Remove deletes the matching line if present, no-op otherwise.
func (s *Store) Remove(ctx context.Context, productID, variantID string) error {
	items := s.Load(ctx)
	kept := items[:0]
	for _, item := range items {
		if !item.Matches(productID, variantID) {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return s.save(ctx, kept)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.save(ctx, []domain.LineItem{})
}

// Subscribe registers for in-process change notifications.
func (s *Store) Subscribe() (<-chan []domain.LineItem, func()) {
	return s.bus.Subscribe()
}

// ChangeFeed registers for notifications published by other instances
// sharing this slot.
func (s *Store) ChangeFeed(ctx context.Context) (<-chan []byte, func(), error) {
	return s.storage.Updates(ctx)
}

func (s *Store) save(ctx context.Context, items []domain.LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := s.storage.Write(ctx, payload); err != nil {
		return fmt.Errorf("persist cart failed: %w", err)
	}

	s.bus.Notify(items)
	if err := s.storage.Publish(ctx, payload); err != nil {
		log.Printf("cart sync publish error: %v", err) // local state is already saved, keep going
	}
	return nil
}
