package domain

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func TestItemRecord_Item(t *testing.T) {
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rec := ItemRecord{
		ID:               "a",
		Name:             "gloves",
		Quantity:         4,
		ReorderThreshold: 5,
		ExpiryDate:       strPtr("2026-09-01"),
		ExpiredAlertAt:   int64Ptr(at.UnixMilli()),
		Version:          3,
	}

	item, err := rec.Item()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ExpiryDate == nil || item.ExpiryDate.String() != "2026-09-01" {
		t.Errorf("unexpected expiry: %v", item.ExpiryDate)
	}
	if !item.LastAlerted[AlertExpired].Equal(at) || item.Alerted(AlertLowStock) {
		t.Errorf("unexpected alert history: %v", item.LastAlerted)
	}

	back := item.Record()
	if back.ExpiredAlertAt == nil || *back.ExpiredAlertAt != at.UnixMilli() || back.LowStockAlertAt != nil {
		t.Errorf("alert history lost converting back: %+v", back)
	}
	if back.Version != 3 || *back.ExpiryDate != "2026-09-01" {
		t.Errorf("unexpected record: %+v", back)
	}
}

func TestItemRecord_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		rec   ItemRecord
		field string
	}{
		{"empty id", ItemRecord{ID: " "}, "id"},
		{"negative quantity", ItemRecord{ID: "a", Quantity: -1}, "quantity"},
		{"negative threshold", ItemRecord{ID: "a", ReorderThreshold: -1}, "reorder_threshold"},
		{"bad expiry", ItemRecord{ID: "a", ExpiryDate: strPtr("tomorrow")}, "expiry_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.rec.Item()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got: %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("expected field %s, got %+v", tt.field, verr)
			}
		})
	}
}

func TestCooldownElapsed(t *testing.T) {
	last := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	item := InventoryItem{LastAlerted: map[AlertKind]time.Time{AlertLowStock: last}}

	if item.CooldownElapsed(AlertLowStock, last.Add(time.Hour), 2*time.Hour) {
		t.Error("cooldown should still hold")
	}
	if !item.CooldownElapsed(AlertLowStock, last.Add(2*time.Hour), 2*time.Hour) {
		t.Error("cooldown should have elapsed")
	}
	if !item.CooldownElapsed(AlertExpired, last, 2*time.Hour) {
		t.Error("kinds never alerted are always due")
	}
}

func TestNewExpiryEvent_Messages(t *testing.T) {
	today := NewDate(2026, 3, 10)
	past := today.AddDays(-4)
	soon := today.AddDays(6)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	expired := NewExpiryEvent(InventoryItem{ID: "a", Name: "gauze", Quantity: 3, ExpiryDate: &past}, AlertExpired, today, at)
	if expired.Message != "item a (gauze) expired on 2026-03-06, 4 days ago (3 units on hand)" {
		t.Errorf("unexpected message: %s", expired.Message)
	}

	expiring := NewExpiryEvent(InventoryItem{ID: "b", Name: "floss", Quantity: 9, ExpiryDate: &soon}, AlertExpiringSoon, today, at)
	if expiring.Message != "item b (floss) expires in 6 days on 2026-03-16 (9 units on hand)" {
		t.Errorf("unexpected message: %s", expiring.Message)
	}
	if expiring.ID == expired.ID {
		t.Error("event ids must be unique")
	}
}
