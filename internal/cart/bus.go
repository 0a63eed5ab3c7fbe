package cart

import (
	"sync"

	"github.com/creatorly/storefront/internal/domain"
)

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan []domain.LineItem)}
}

// Bus fans cart snapshots out to subscribers in this process. Sends never
// block: a subscriber that has not drained its previous notification is
// skipped, which is safe because observers re-read the store on receipt
// rather than trusting the payload.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan []domain.LineItem
}

func (b *Bus) Subscribe() (<-chan []domain.LineItem, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan []domain.LineItem, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (b *Bus) Notify(items []domain.LineItem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- items:
		default:
		}
	}
}
