package storage

import (
	"context"
	"testing"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

func TestMemoryCache_Lock(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	token, ok, _ := cache.AcquireScanLock(ctx)
	if !ok || token == "" {
		t.Fatal("expected first acquire to succeed")
	}
	if _, ok, _ = cache.AcquireScanLock(ctx); ok {
		t.Error("expected second acquire to fail")
	}

	cache.ReleaseScanLock(ctx, token)
	if _, ok, _ = cache.AcquireScanLock(ctx); !ok {
		t.Error("expected acquire after release to succeed")
	}
}

func TestMemoryCache_StaleTokenKeepsLock(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	stale, _, _ := cache.AcquireScanLock(ctx)
	cache.ReleaseScanLock(ctx, stale)

	current, ok, _ := cache.AcquireScanLock(ctx)
	if !ok {
		t.Fatal("expected acquire to succeed")
	}

	cache.ReleaseScanLock(ctx, stale)
	if _, ok, _ := cache.AcquireScanLock(ctx); ok {
		t.Error("stale token released the current holder's lock")
	}

	cache.ReleaseScanLock(ctx, current)
	if _, ok, _ := cache.AcquireScanLock(ctx); !ok {
		t.Error("expected acquire after current holder released")
	}
}

func TestMemoryCache_LastCycle(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	if last, _ := cache.LastCycle(ctx); last != nil {
		t.Fatalf("expected no cycle, got %+v", last)
	}

	cache.SaveCycle(ctx, domain.CycleSummary{ID: "a", Events: 2})
	cache.SaveCycle(ctx, domain.CycleSummary{ID: "b", Events: 5})

	last, _ := cache.LastCycle(ctx)
	if last == nil || last.ID != "b" || last.Events != 5 {
		t.Errorf("expected latest cycle b, got %+v", last)
	}
}
