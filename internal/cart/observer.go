package cart

import (
	"context"
	"log"
	"sync"

	"github.com/creatorly/storefront/internal/domain"
)

// Projection derives a view from the full cart state.
type Projection func(items []domain.LineItem)

func NewObserver(store *Store, project Projection) *Observer {
	return &Observer{store: store, project: project}
}

// Observer keeps one projection of the cart current. It renders once on
// start, then re-reads the store whenever either notification channel
// fires. Observers never share state with each other: each is a pure
// projection of the persisted slot, so after any mutation they can only
// disagree for one notification cycle.
type Observer struct {
	store   *Store
	project Projection
}

// Run blocks until ctx is cancelled.
func (o *Observer) Run(ctx context.Context) {
	local, cancel := o.store.Subscribe()
	defer cancel()

	remote, stop, err := o.store.ChangeFeed(ctx)
	if err != nil {
		log.Printf("cart change feed unavailable, same-process updates only: %v", err)
	} else {
		defer stop()
	}

	o.project(o.store.Load(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-local:
		case <-remote:
		}
		o.project(o.store.Load(ctx))
	}
}

// Badge counts items for the header badge.
type Badge struct {
	mu    sync.Mutex
	count int
}

func (b *Badge) Update(items []domain.LineItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = domain.ItemCount(items)
}

func (b *Badge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Summary renders full lines and totals for the flyout and the cart page.
// Shipping is free, so the total equals the subtotal.
type Summary struct {
	mu       sync.Mutex
	items    []domain.LineItem
	subtotal float64
}

func (s *Summary) Update(items []domain.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.subtotal = domain.Subtotal(items)
}

func (s *Summary) Lines() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

func (s *Summary) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotal
}

func (s *Summary) Total() float64 {
	return s.Subtotal()
}

func (s *Summary) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ItemCount(s.items)
}
