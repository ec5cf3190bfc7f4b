package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

const itemColumns = `id, name, quantity, reorder_threshold, expiry_date,
	low_stock_alert_at, expiring_soon_alert_at, expired_alert_at,
	version, created_at, updated_at`

// The same DDL is valid for MySQL and SQLite.
const schema = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id                     VARCHAR(64)  NOT NULL PRIMARY KEY,
	name                   VARCHAR(255) NOT NULL UNIQUE,
	quantity               BIGINT       NOT NULL,
	reorder_threshold      BIGINT       NOT NULL,
	expiry_date            VARCHAR(10)  NULL,
	low_stock_alert_at     BIGINT       NULL,
	expiring_soon_alert_at BIGINT       NULL,
	expired_alert_at       BIGINT       NULL,
	version                BIGINT       NOT NULL DEFAULT 0,
	created_at             BIGINT       NOT NULL,
	updated_at             BIGINT       NOT NULL
)`

// Open connects to the item store. SQLite is limited to one connection.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: unsupported store driver %q", domain.ErrConfiguration, driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	return db, nil
}

type SQLAdapter struct {
	db *sqlx.DB
}

func NewSQLAdapter(db *sqlx.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate inventory_items: %w", err)
	}
	return nil
}

func (s *SQLAdapter) ListItems(ctx context.Context) ([]domain.ItemRecord, error) {
	var records []domain.ItemRecord
	err := s.db.SelectContext(ctx, &records, `SELECT `+itemColumns+` FROM inventory_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return records, nil
}

func (s *SQLAdapter) GetItem(ctx context.Context, id string) (*domain.ItemRecord, error) {
	var rec domain.ItemRecord
	err := s.db.GetContext(ctx, &rec, `SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &rec, nil
}

func (s *SQLAdapter) CreateItem(ctx context.Context, item domain.InventoryItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM inventory_items WHERE name = ?`, item.Name); err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if count > 0 {
		return domain.ErrItemExists
	}

	rec := item.Record()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Quantity, rec.ReorderThreshold, nullable(rec.ExpiryDate),
		nullable(rec.LowStockAlertAt), nullable(rec.ExpiringSoonAlertAt), nullable(rec.ExpiredAlertAt),
		rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}

	return tx.Commit()
}

func (s *SQLAdapter) UpdateItem(ctx context.Context, item domain.InventoryItem) error {
	rec := item.Record()
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET name = ?, quantity = ?, reorder_threshold = ?, expiry_date = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		rec.Name, rec.Quantity, rec.ReorderThreshold, nullable(rec.ExpiryDate),
		rec.UpdatedAt, rec.ID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return s.missOr(ctx, item.ID, domain.ErrVersionConflict)
	}
	return nil
}

func (s *SQLAdapter) DecrementQuantity(ctx context.Context, id string, quantity int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET quantity = quantity - ?, version = version + 1, updated_at = ?
		WHERE id = ? AND quantity >= ?`,
		quantity, time.Now().UnixMilli(), id, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return s.missOr(ctx, id, domain.ErrInsufficientStock)
	}
	return nil
}

func (s *SQLAdapter) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (s *SQLAdapter) MarkAlerted(ctx context.Context, id string, kind domain.AlertKind, at time.Time) error {
	ms := at.UnixMilli()
	return s.setAlerted(ctx, id, kind, &ms)
}

func (s *SQLAdapter) ClearAlerted(ctx context.Context, id string, kind domain.AlertKind) error {
	return s.setAlerted(ctx, id, kind, nil)
}

func (s *SQLAdapter) setAlerted(ctx context.Context, id string, kind domain.AlertKind, at *int64) error {
	column, err := alertColumn(kind)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE inventory_items SET `+column+` = ? WHERE id = ?`, nullable(at), id)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return s.missOr(ctx, id, nil)
	}
	return nil
}

// missOr distinguishes a missing row from a failed condition after an
// update touched no rows.
func (s *SQLAdapter) missOr(ctx context.Context, id string, conditionErr error) error {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM inventory_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("check item: %w", err)
	}
	if count == 0 {
		return domain.ErrItemNotFound
	}
	return conditionErr
}

func alertColumn(kind domain.AlertKind) (string, error) {
	switch kind {
	case domain.AlertLowStock:
		return "low_stock_alert_at", nil
	case domain.AlertExpiringSoon:
		return "expiring_soon_alert_at", nil
	case domain.AlertExpired:
		return "expired_alert_at", nil
	}
	return "", fmt.Errorf("unknown alert kind %q", kind)
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
