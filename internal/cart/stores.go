package cart

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

func NewStores(client *redis.Client) *Stores {
	return &Stores{
		client: client,
		stores: make(map[string]*Store),
	}
}

// Stores hands out one Store per slot so every component in this process
// touching the same cart shares a notification bus.
type Stores struct {
	mu     sync.Mutex
	client *redis.Client
	stores map[string]*Store
}

func (s *Stores) ForSlot(slot string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	store, ok := s.stores[slot]
	if !ok {
		store = NewStore(NewRedisStorage(s.client, slot))
		s.stores[slot] = store
	}
	return store
}
