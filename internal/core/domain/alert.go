package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AlertKind string

const (
	AlertLowStock     AlertKind = "LOW_STOCK"
	AlertExpiringSoon AlertKind = "EXPIRING_SOON"
	AlertExpired      AlertKind = "EXPIRED"
)

// AlertKinds lists every kind in severity-independent, stable order.
var AlertKinds = []AlertKind{AlertLowStock, AlertExpiringSoon, AlertExpired}

func (k AlertKind) Valid() bool {
	switch k {
	case AlertLowStock, AlertExpiringSoon, AlertExpired:
		return true
	}
	return false
}

// AlertEvent is created once by a scan and handed to the dispatcher once.
type AlertEvent struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	ItemName    string    `json:"item_name"`
	Kind        AlertKind `json:"kind"`
	GeneratedAt time.Time `json:"generated_at"`
	Message     string    `json:"message"`
}

func NewLowStockEvent(item InventoryItem, at time.Time) AlertEvent {
	return newEvent(item, AlertLowStock, at, fmt.Sprintf(
		"item %s (%s) is low on stock: %d on hand, reorder threshold %d",
		item.ID, item.Name, item.Quantity, item.ReorderThreshold,
	))
}

func NewExpiryEvent(item InventoryItem, kind AlertKind, today Date, at time.Time) AlertEvent {
	days := today.DaysUntil(*item.ExpiryDate)

	var msg string
	if kind == AlertExpired {
		msg = fmt.Sprintf("item %s (%s) expired on %s, %d days ago (%d units on hand)",
			item.ID, item.Name, item.ExpiryDate, -days, item.Quantity)
	} else {
		msg = fmt.Sprintf("item %s (%s) expires in %d days on %s (%d units on hand)",
			item.ID, item.Name, days, item.ExpiryDate, item.Quantity)
	}
	return newEvent(item, kind, at, msg)
}

func newEvent(item InventoryItem, kind AlertKind, at time.Time, msg string) AlertEvent {
	return AlertEvent{
		ID:          uuid.NewString(),
		ItemID:      item.ID,
		ItemName:    item.Name,
		Kind:        kind,
		GeneratedAt: at,
		Message:     msg,
	}
}

type CycleResult string

const (
	CycleCompleted CycleResult = "completed"
	CycleAborted   CycleResult = "aborted"
)

// CycleSummary records the outcome of one scan cycle.
type CycleSummary struct {
	ID         string      `json:"id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Result     CycleResult `json:"result"`
	Items      int         `json:"items"`
	Skipped    int         `json:"skipped"`
	Events     int         `json:"events"`
	Delivered  int         `json:"delivered"`
	Dropped    int         `json:"dropped"`
	Error      string      `json:"error,omitempty"`
}
