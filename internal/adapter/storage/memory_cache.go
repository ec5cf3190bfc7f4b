package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

// MemoryCache is the single-process CacheRepository used when no Redis is
// configured.
type MemoryCache struct {
	mu    sync.Mutex
	token string
	last  *domain.CycleSummary
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) AcquireScanLock(ctx context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" {
		return "", false, nil
	}
	m.token = uuid.NewString()
	return m.token, true, nil
}

func (m *MemoryCache) ReleaseScanLock(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if token != "" && token == m.token {
		m.token = ""
	}
	return nil
}

func (m *MemoryCache) SaveCycle(ctx context.Context, summary domain.CycleSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = &summary
	return nil
}

func (m *MemoryCache) LastCycle(ctx context.Context) (*domain.CycleSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last == nil {
		return nil, nil
	}
	summary := *m.last
	return &summary, nil
}
