package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process. Entries are lost on restart.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates a store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	cleanup := ttl
	if cleanup <= 0 || cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}
	return &MemoryStore{
		cache: cache.New(ttl, cleanup),
	}
}

func (s *MemoryStore) Get(_ context.Context, conversationID string) (*Entry, error) {
	v, ok := s.cache.Get(conversationID)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Entry), nil
}

func (s *MemoryStore) Put(_ context.Context, conversationID string, e *Entry) error {
	s.cache.SetDefault(conversationID, e)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID string) error {
	s.cache.Delete(conversationID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
