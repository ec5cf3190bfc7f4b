package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/dental-supply/internal/core/domain"
	"github.com/rl1809/dental-supply/internal/port"
)

var ErrScanInProgress = errors.New("scan already in progress")

type AlertConfig struct {
	WarningWindowDays int
	Cooldown          time.Duration
	Recipients        []string
	Location          *time.Location
}

func (c AlertConfig) validate() error {
	if c.WarningWindowDays < 0 {
		return fmt.Errorf("%w: warning window must not be negative, got %d", domain.ErrConfiguration, c.WarningWindowDays)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("%w: alert cooldown must be positive, got %s", domain.ErrConfiguration, c.Cooldown)
	}
	return nil
}

type AlertService struct {
	items    port.ItemRepository
	cache    port.CacheRepository
	notifier port.Notifier
	metrics  port.Metrics
	cfg      AlertConfig
	now      func() time.Time

	observers []func(domain.CycleSummary, error)
}

func NewAlertService(
	items port.ItemRepository,
	cache port.CacheRepository,
	notifier port.Notifier,
	metrics port.Metrics,
	cfg AlertConfig,
) (*AlertService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if metrics == nil {
		metrics = port.NopMetrics{}
	}

	return &AlertService{
		items:    items,
		cache:    cache,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// OnCycle registers fn to receive the outcome of every cycle, however it
// was triggered. Register observers before the first cycle runs.
func (s *AlertService) OnCycle(fn func(domain.CycleSummary, error)) {
	s.observers = append(s.observers, fn)
}

// ScanResult is the output of one pass over the inventory.
type ScanResult struct {
	Events  []domain.AlertEvent
	Items   int
	Skipped int
}

// Scan evaluates every stored item and returns the alerts that are due.
// Emitted alerts are written back to the store so the cooldown holds on
// later scans. A malformed record is skipped; only a failed read of the
// whole inventory aborts the scan.
func (s *AlertService) Scan(ctx context.Context) (ScanResult, error) {
	records, err := s.items.ListItems(ctx)
	if err != nil {
		return ScanResult{}, fmt.Errorf("%w: list items: %w", domain.ErrTransientIO, err)
	}

	now := s.now()
	today := domain.DateOf(now.In(s.cfg.Location))
	result := ScanResult{Items: len(records)}

	for _, rec := range records {
		item, err := rec.Item()
		if err != nil {
			log.Printf("alert scan: skipping record %q: %v", rec.ID, err)
			result.Skipped++
			s.metrics.ItemSkipped()
			continue
		}

		for _, ev := range s.evaluate(ctx, item, today, now) {
			if err := s.items.MarkAlerted(ctx, item.ID, ev.Kind, now); err != nil {
				if errors.Is(err, domain.ErrItemNotFound) {
					log.Printf("alert scan: item %s disappeared during scan, dropping %s", item.ID, ev.Kind)
					continue
				}
				// duplicate next cycle is the worst case
				log.Printf("alert scan: write-back %s for item %s failed: %v", ev.Kind, item.ID, err)
			}
			result.Events = append(result.Events, ev)
			s.metrics.AlertEmitted(ev.Kind)
		}
	}

	return result, nil
}

func (s *AlertService) evaluate(ctx context.Context, item domain.InventoryItem, today domain.Date, now time.Time) []domain.AlertEvent {
	var events []domain.AlertEvent

	if domain.EvaluateStock(item.Quantity, item.ReorderThreshold) == domain.StockLow {
		if item.CooldownElapsed(domain.AlertLowStock, now, s.cfg.Cooldown) {
			events = append(events, domain.NewLowStockEvent(item, now))
		}
	} else {
		s.clear(ctx, item, domain.AlertLowStock)
	}

	switch domain.EvaluateExpiry(item.ExpiryDate, today, s.cfg.WarningWindowDays) {
	case domain.ExpiryExpired:
		if item.CooldownElapsed(domain.AlertExpired, now, s.cfg.Cooldown) {
			events = append(events, domain.NewExpiryEvent(item, domain.AlertExpired, today, now))
		}
	case domain.ExpiryExpiringSoon:
		if item.CooldownElapsed(domain.AlertExpiringSoon, now, s.cfg.Cooldown) {
			events = append(events, domain.NewExpiryEvent(item, domain.AlertExpiringSoon, today, now))
		}
	default:
		s.clear(ctx, item, domain.AlertExpiringSoon)
		s.clear(ctx, item, domain.AlertExpired)
	}

	return events
}

// clear resets the cooldown of a condition that no longer holds.
func (s *AlertService) clear(ctx context.Context, item domain.InventoryItem, kind domain.AlertKind) {
	if !item.Alerted(kind) {
		return
	}
	if err := s.items.ClearAlerted(ctx, item.ID, kind); err != nil {
		log.Printf("alert scan: clearing %s for item %s failed: %v", kind, item.ID, err)
	}
}

// Dispatch hands every event to the notifier once per recipient. A failed
// send is retried once immediately, then dropped.
func (s *AlertService) Dispatch(ctx context.Context, events []domain.AlertEvent) (delivered, dropped int) {
	if len(s.cfg.Recipients) == 0 {
		for _, ev := range events {
			log.Printf("dispatcher: no recipients configured, alert %s for item %s: %s", ev.Kind, ev.ItemID, ev.Message)
		}
		return 0, 0
	}

	for _, ev := range events {
		for _, to := range s.cfg.Recipients {
			if s.sendWithRetry(ctx, ev, to) {
				delivered++
			} else {
				dropped++
			}
		}
	}
	return delivered, dropped
}

func (s *AlertService) sendWithRetry(ctx context.Context, ev domain.AlertEvent, to string) bool {
	err := s.notifier.Send(ctx, ev, to)
	if err == nil {
		return true
	}

	log.Printf("dispatcher: send %s alert %s to %s failed, retrying: %v", ev.Kind, ev.ID, to, err)
	s.metrics.DeliveryFailed()

	if err = s.notifier.Send(ctx, ev, to); err == nil {
		return true
	}

	log.Printf("dispatcher: WARNING dropping %s alert %s for item %s to %s: %v", ev.Kind, ev.ID, ev.ItemID, to, err)
	s.metrics.DeliveryFailed()
	s.metrics.DeliveryDropped()
	return false
}

// RunCycle runs one full scan cycle under the run lock: scan, dispatch,
// and record the outcome. ErrScanInProgress is returned when another
// cycle holds the lock.
func (s *AlertService) RunCycle(ctx context.Context) (domain.CycleSummary, error) {
	summary, err := s.runCycle(ctx)
	for _, fn := range s.observers {
		fn(summary, err)
	}
	return summary, err
}

func (s *AlertService) runCycle(ctx context.Context) (domain.CycleSummary, error) {
	summary := domain.CycleSummary{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
	}

	token, ok, err := s.cache.AcquireScanLock(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: acquire scan lock: %w", domain.ErrTransientIO, err)
	}
	if !ok {
		return summary, ErrScanInProgress
	}
	defer func() {
		if err := s.cache.ReleaseScanLock(ctx, token); err != nil {
			log.Printf("alert scan: release scan lock: %v", err)
		}
	}()

	res, err := s.Scan(ctx)
	summary.Items = res.Items
	summary.Skipped = res.Skipped
	summary.Events = len(res.Events)

	if err != nil {
		summary.Result = domain.CycleAborted
		summary.Error = err.Error()
		s.finish(ctx, &summary)
		return summary, err
	}

	summary.Delivered, summary.Dropped = s.Dispatch(ctx, res.Events)
	summary.Result = domain.CycleCompleted
	s.finish(ctx, &summary)

	log.Printf("alert scan: cycle %s completed: %d items, %d skipped, %d events, %d delivered, %d dropped",
		summary.ID, summary.Items, summary.Skipped, summary.Events, summary.Delivered, summary.Dropped)

	return summary, nil
}

func (s *AlertService) finish(ctx context.Context, summary *domain.CycleSummary) {
	summary.FinishedAt = s.now()
	s.metrics.CycleFinished(summary.Result, summary.FinishedAt.Sub(summary.StartedAt))

	if err := s.cache.SaveCycle(ctx, *summary); err != nil {
		log.Printf("alert scan: save cycle %s: %v", summary.ID, err)
	}
}

func (s *AlertService) LastCycle(ctx context.Context) (*domain.CycleSummary, error) {
	return s.cache.LastCycle(ctx)
}
