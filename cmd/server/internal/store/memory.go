package store

import (
	"context"
	"strings"
	"sync"

	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

// Compile-time check to ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the latest quote per symbol in a mutex-protected map.
// This is the default store; the process lifetime bounds the data.
type MemoryStore struct {
	mu     sync.RWMutex
	quotes map[string]models.Quote
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotes: make(map[string]models.Quote)}
}

func (m *MemoryStore) Set(ctx context.Context, q models.Quote) error {
	key := strings.ToUpper(strings.TrimSpace(q.Symbol))
	if key == "" {
		return nil
	}

	m.mu.Lock()
	m.quotes[key] = q
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, symbol string) (models.Quote, bool, error) {
	key := strings.ToUpper(strings.TrimSpace(symbol))

	m.mu.RLock()
	q, ok := m.quotes[key]
	m.mu.RUnlock()
	return q, ok, nil
}

func (m *MemoryStore) Close() error { return nil }
