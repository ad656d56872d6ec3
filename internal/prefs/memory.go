package prefs

import (
	"context"
	"sync"

	"github.com/soyeahso/obiefood/internal/domain"
)

// MemoryClient is an in-memory Client, used in tests and when no backing
// store is configured.
type MemoryClient struct {
	mu    sync.RWMutex
	prefs map[string]domain.Preference
}

// NewMemoryClient creates an empty in-memory preference client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{prefs: make(map[string]domain.Preference)}
}

func (c *MemoryClient) Get(_ context.Context, userID string) (*domain.Preference, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.prefs[userID]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func (c *MemoryClient) Set(_ context.Context, userID string, pref *domain.Preference) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pref == nil {
		delete(c.prefs, userID)
		return nil
	}
	c.prefs[userID] = *pref
	return nil
}
