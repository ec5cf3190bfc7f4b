package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/dental-supply/internal/core/domain"
	"github.com/rl1809/dental-supply/internal/port"
)

type InventoryConfig struct {
	DefaultReorderThreshold int64
	WarningWindowDays       int
	Location                *time.Location
}

type InventoryService struct {
	items port.ItemRepository
	cache port.CacheRepository
	cfg   InventoryConfig
	now   func() time.Time
}

func NewInventoryService(items port.ItemRepository, cache port.CacheRepository, cfg InventoryConfig) *InventoryService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &InventoryService{items: items, cache: cache, cfg: cfg, now: time.Now}
}

// ItemInput carries the user-editable fields of an item.
type ItemInput struct {
	Name             string
	Quantity         int64
	ReorderThreshold *int64
	ExpiryDate       string
}

func (s *InventoryService) today() domain.Date {
	return domain.DateOf(s.now().In(s.cfg.Location))
}

func (s *InventoryService) validate(in ItemInput) (name string, threshold int64, expiry *domain.Date, err error) {
	name = domain.NormalizeName(in.Name)
	if name == "" {
		return "", 0, nil, &domain.ValidationError{Field: "name", Reason: "required"}
	}
	if in.Quantity < 0 {
		return "", 0, nil, &domain.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}

	threshold = s.cfg.DefaultReorderThreshold
	if in.ReorderThreshold != nil {
		threshold = *in.ReorderThreshold
	}
	if threshold < 0 {
		return "", 0, nil, &domain.ValidationError{Field: "reorder_threshold", Reason: "must not be negative"}
	}

	if in.ExpiryDate != "" {
		d, err := domain.ParseDate(in.ExpiryDate)
		if err != nil {
			return "", 0, nil, &domain.ValidationError{Field: "expiry_date", Reason: "expected YYYY-MM-DD"}
		}
		if d.Before(s.today()) {
			return "", 0, nil, &domain.ValidationError{Field: "expiry_date", Reason: "must not be in the past"}
		}
		expiry = &d
	}

	return name, threshold, expiry, nil
}

func (s *InventoryService) CreateItem(ctx context.Context, in ItemInput) (domain.InventoryItem, error) {
	name, threshold, expiry, err := s.validate(in)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	now := s.now().UTC()
	item := domain.InventoryItem{
		ID:               uuid.NewString(),
		Name:             name,
		Quantity:         in.Quantity,
		ReorderThreshold: threshold,
		ExpiryDate:       expiry,
		LastAlerted:      map[domain.AlertKind]time.Time{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.items.CreateItem(ctx, item); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("create item %q: %w", name, err)
	}
	return item, nil
}

func (s *InventoryService) GetItem(ctx context.Context, id string) (domain.InventoryItem, error) {
	rec, err := s.items.GetItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return rec.Item()
}

// ListItems returns all well-formed items; malformed records are logged.
func (s *InventoryService) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	records, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list items: %w", domain.ErrTransientIO, err)
	}

	items := make([]domain.InventoryItem, 0, len(records))
	for _, rec := range records {
		item, err := rec.Item()
		if err != nil {
			log.Printf("inventory: skipping record %q: %v", rec.ID, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateItem replaces the editable fields of an item. version must match
// the stored version.
func (s *InventoryService) UpdateItem(ctx context.Context, id string, in ItemInput, version int64) (domain.InventoryItem, error) {
	name, threshold, expiry, err := s.validate(in)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	if item.Version != version {
		return domain.InventoryItem{}, domain.ErrVersionConflict
	}

	newLot := dateString(item.ExpiryDate) != dateString(expiry)

	item.Name = name
	item.Quantity = in.Quantity
	item.ReorderThreshold = threshold
	item.ExpiryDate = expiry
	item.UpdatedAt = s.now().UTC()

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("update item %s: %w", id, err)
	}
	item.Version++

	// a new expiry date is a new lot; its expiry alerts start fresh
	if newLot {
		for _, kind := range []domain.AlertKind{domain.AlertExpiringSoon, domain.AlertExpired} {
			if !item.Alerted(kind) {
				continue
			}
			if err := s.items.ClearAlerted(ctx, id, kind); err != nil {
				log.Printf("inventory: clearing %s for item %s failed: %v", kind, id, err)
				continue
			}
			delete(item.LastAlerted, kind)
		}
	}
	return item, nil
}

func dateString(d *domain.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func (s *InventoryService) ConsumeStock(ctx context.Context, id string, quantity int64) (domain.InventoryItem, error) {
	if quantity <= 0 {
		return domain.InventoryItem{}, &domain.ValidationError{ItemID: id, Field: "quantity", Reason: "must be positive"}
	}
	if err := s.items.DecrementQuantity(ctx, id, quantity); err != nil {
		return domain.InventoryItem{}, fmt.Errorf("consume %d of item %s: %w", quantity, id, err)
	}
	return s.GetItem(ctx, id)
}

// DeleteItem removes an item. It takes the scan lock so no in-flight
// cycle still references the item.
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	token, ok, err := s.cache.AcquireScanLock(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire scan lock: %w", domain.ErrTransientIO, err)
	}
	if !ok {
		return ErrScanInProgress
	}
	defer func() {
		if err := s.cache.ReleaseScanLock(ctx, token); err != nil {
			log.Printf("inventory: release scan lock: %v", err)
		}
	}()

	return s.items.DeleteItem(ctx, id)
}

// Report classifies every item and orders the most urgent first.
func (s *InventoryService) Report(ctx context.Context) (domain.InventoryReport, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return domain.InventoryReport{}, err
	}

	today := s.today()
	report := domain.InventoryReport{
		GeneratedOn: today,
		Lines:       make([]domain.ReportLine, 0, len(items)),
		TotalItems:  len(items),
	}

	for _, item := range items {
		line := domain.ReportLine{
			Item:   item,
			Status: domain.Classify(item, today, s.cfg.WarningWindowDays),
		}
		if item.ExpiryDate != nil {
			days := today.DaysUntil(*item.ExpiryDate)
			line.DaysUntilExpiry = &days
		}

		report.TotalUnits += item.Quantity
		if domain.EvaluateStock(item.Quantity, item.ReorderThreshold) == domain.StockLow {
			report.LowStock++
		}
		switch domain.EvaluateExpiry(item.ExpiryDate, today, s.cfg.WarningWindowDays) {
		case domain.ExpiryExpired:
			report.Expired++
		case domain.ExpiryExpiringSoon:
			report.ExpiringSoon++
		}

		report.Lines = append(report.Lines, line)
	}

	sort.SliceStable(report.Lines, func(i, j int) bool {
		return report.Lines[i].Status.Priority() < report.Lines[j].Status.Priority()
	})

	return report, nil
}
