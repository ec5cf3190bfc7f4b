package port

import (
	"context"
	"time"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

type ItemRepository interface {
	// ListItems returns every stored record in ascending id order, malformed ones included
	ListItems(ctx context.Context) ([]domain.ItemRecord, error)

	// GetItem returns domain.ErrItemNotFound when the id is unknown
	GetItem(ctx context.Context, id string) (*domain.ItemRecord, error)

	// CreateItem inserts a new item, domain.ErrItemExists if the name is taken
	CreateItem(ctx context.Context, item domain.InventoryItem) error

	// UpdateItem updates name, stock and expiry with version check for optimistic locking
	UpdateItem(ctx context.Context, item domain.InventoryItem) error

	// DecrementQuantity removes quantity units if enough are on hand
	DecrementQuantity(ctx context.Context, id string, quantity int64) error

	DeleteItem(ctx context.Context, id string) error

	// MarkAlerted records when an alert of kind was last emitted for the item
	MarkAlerted(ctx context.Context, id string, kind domain.AlertKind, at time.Time) error

	// ClearAlerted forgets the last emission of kind so the next occurrence alerts immediately
	ClearAlerted(ctx context.Context, id string, kind domain.AlertKind) error
}
