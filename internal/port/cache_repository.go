package port

import (
	"context"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

type CacheRepository interface {
	// AcquireScanLock takes the run lock and returns the holder's token,
	// ok is false if another cycle holds it
	AcquireScanLock(ctx context.Context) (token string, ok bool, err error)

	// ReleaseScanLock releases the lock only if token still owns it
	ReleaseScanLock(ctx context.Context, token string) error

	// SaveCycle stores the summary of the latest cycle
	SaveCycle(ctx context.Context, summary domain.CycleSummary) error

	// LastCycle returns nil when no cycle has been recorded yet
	LastCycle(ctx context.Context) (*domain.CycleSummary, error)
}
