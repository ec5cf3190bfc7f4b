package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

type cycleRunner interface {
	RunCycle(ctx context.Context) (domain.CycleSummary, error)
}

// Scheduler triggers scan cycles at a fixed interval. Cycles run one at a
// time on the scheduler goroutine.
type Scheduler struct {
	runner   cycleRunner
	interval time.Duration
	onCycle  func(domain.CycleSummary, error)
}

func NewScheduler(runner cycleRunner, interval time.Duration, onCycle func(domain.CycleSummary, error)) *Scheduler {
	if onCycle == nil {
		onCycle = func(domain.CycleSummary, error) {}
	}
	return &Scheduler{runner: runner, interval: interval, onCycle: onCycle}
}

// Run scans immediately and then on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("scheduler: scanning every %s", s.interval)
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	// a started cycle runs to completion even if shutdown begins
	summary, err := s.runner.RunCycle(context.WithoutCancel(ctx))
	switch {
	case errors.Is(err, ErrScanInProgress):
		log.Println("scheduler: previous cycle still running, skipping tick")
	case err != nil:
		log.Printf("scheduler: cycle aborted, retrying on next tick: %v", err)
	}
	s.onCycle(summary, err)
}
