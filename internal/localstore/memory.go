package localstore

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory only.
type MemoryStore struct {
	items *cache.Cache
}

var _ Backend = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store whose entries never expire.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v.([]byte)...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.items.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}
