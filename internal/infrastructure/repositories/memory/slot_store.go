package memory

import (
	"context"
	"sync"

	"srtmon/internal/core/ports"
)

type MemorySlotStore struct {
	slots map[string]string
	mu    sync.RWMutex
}

func NewMemorySlotStore() ports.SlotStore {
	return &MemorySlotStore{
		slots: make(map[string]string),
	}
}

func (s *MemorySlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.slots[key]
	return value, exists, nil
}

func (s *MemorySlotStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = value
	return nil
}

func (s *MemorySlotStore) Ping(ctx context.Context) error {
	return nil
}
