package cache

import (
	"context"
	"time"

	"callerid_backend/internal/lookup/consolidate"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is a process-local Cache used when Redis is not configured.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates a cache whose entries default to ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{store: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (consolidate.Candidates, bool, error) {
	v, ok := m.store.Get(key)
	if !ok {
		return consolidate.Candidates{}, false, nil
	}
	return v.(consolidate.Candidates), true, nil
}

// Set stores c. Candidates hold record pointers, so callers must not modify
// the records afterwards.
func (m *Memory) Set(_ context.Context, key string, c consolidate.Candidates, ttl time.Duration) error {
	m.store.Set(key, c, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return nil
}

// ItemCount is the number of entries, including expired ones not yet evicted.
func (m *Memory) ItemCount() int {
	return m.store.ItemCount()
}
