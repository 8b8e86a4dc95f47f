// Package preference keeps per-user view flags, such as whether a collapsible
// list is expanded.
package preference

import (
	"context"
	"sync"
)

// Fixed keys, one per collapsible list.
const (
	KeyPastEventsExpanded = "deal.timeline.past_expanded"
	KeyPoliciesExpanded   = "deal.policies.expanded"
	KeyPaymentsExpanded   = "deal.payments.expanded"
)

// Store is a boolean key-value store scoped by user. Unknown keys read as false.
type Store interface {
	Get(ctx context.Context, userID int64, key string) (bool, error)
	Set(ctx context.Context, userID int64, key string, value bool) error
}

type memoryKey struct {
	userID int64
	key    string
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[memoryKey]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[memoryKey]bool)}
}

func (s *MemoryStore) Get(_ context.Context, userID int64, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[memoryKey{userID, key}], nil
}

func (s *MemoryStore) Set(_ context.Context, userID int64, key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[memoryKey{userID, key}] = value
	return nil
}
