package domain

import (
	"strings"
	"time"
)

// InventoryItem is a validated snapshot of a stock item.
type InventoryItem struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Quantity         int64                   `json:"quantity"`
	ReorderThreshold int64                   `json:"reorder_threshold"`
	ExpiryDate       *Date                   `json:"expiry_date,omitempty"`
	LastAlerted      map[AlertKind]time.Time `json:"-"`
	Version          int64                   `json:"version"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// CooldownElapsed reports whether an alert of kind may be emitted at now.
func (i InventoryItem) CooldownElapsed(kind AlertKind, now time.Time, cooldown time.Duration) bool {
	last, ok := i.LastAlerted[kind]
	if !ok {
		return true
	}
	return now.Sub(last) >= cooldown
}

func (i InventoryItem) Alerted(kind AlertKind) bool {
	_, ok := i.LastAlerted[kind]
	return ok
}

// Record converts the item back to its stored form.
func (i InventoryItem) Record() ItemRecord {
	rec := ItemRecord{
		ID:               i.ID,
		Name:             i.Name,
		Quantity:         i.Quantity,
		ReorderThreshold: i.ReorderThreshold,
		Version:          i.Version,
		CreatedAt:        i.CreatedAt.UnixMilli(),
		UpdatedAt:        i.UpdatedAt.UnixMilli(),
	}
	if i.ExpiryDate != nil {
		s := i.ExpiryDate.String()
		rec.ExpiryDate = &s
	}
	for kind, at := range i.LastAlerted {
		ms := at.UnixMilli()
		*rec.alertField(kind) = &ms
	}
	return rec
}

// ItemRecord is an item as stored; it may be malformed.
type ItemRecord struct {
	ID                  string  `db:"id"`
	Name                string  `db:"name"`
	Quantity            int64   `db:"quantity"`
	ReorderThreshold    int64   `db:"reorder_threshold"`
	ExpiryDate          *string `db:"expiry_date"`
	LowStockAlertAt     *int64  `db:"low_stock_alert_at"`
	ExpiringSoonAlertAt *int64  `db:"expiring_soon_alert_at"`
	ExpiredAlertAt      *int64  `db:"expired_alert_at"`
	Version             int64   `db:"version"`
	CreatedAt           int64   `db:"created_at"`
	UpdatedAt           int64   `db:"updated_at"`
}

func (r *ItemRecord) alertField(kind AlertKind) **int64 {
	switch kind {
	case AlertLowStock:
		return &r.LowStockAlertAt
	case AlertExpiringSoon:
		return &r.ExpiringSoonAlertAt
	default:
		return &r.ExpiredAlertAt
	}
}

// Item validates the record and returns the item it describes.
func (r ItemRecord) Item() (InventoryItem, error) {
	if strings.TrimSpace(r.ID) == "" {
		return InventoryItem{}, &ValidationError{Field: "id", Reason: "empty"}
	}
	if r.Quantity < 0 {
		return InventoryItem{}, &ValidationError{ItemID: r.ID, Field: "quantity", Reason: "negative"}
	}
	if r.ReorderThreshold < 0 {
		return InventoryItem{}, &ValidationError{ItemID: r.ID, Field: "reorder_threshold", Reason: "negative"}
	}

	item := InventoryItem{
		ID:               r.ID,
		Name:             r.Name,
		Quantity:         r.Quantity,
		ReorderThreshold: r.ReorderThreshold,
		LastAlerted:      make(map[AlertKind]time.Time),
		Version:          r.Version,
		CreatedAt:        time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:        time.UnixMilli(r.UpdatedAt).UTC(),
	}

	if r.ExpiryDate != nil && *r.ExpiryDate != "" {
		d, err := ParseDate(*r.ExpiryDate)
		if err != nil {
			return InventoryItem{}, &ValidationError{ItemID: r.ID, Field: "expiry_date", Reason: err.Error()}
		}
		item.ExpiryDate = &d
	}

	for _, kind := range AlertKinds {
		if ms := *r.alertField(kind); ms != nil {
			item.LastAlerted[kind] = time.UnixMilli(*ms).UTC()
		}
	}

	return item, nil
}

// NormalizeName applies the canonical item name form.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
