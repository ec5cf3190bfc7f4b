package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rl1809/dental-supply/internal/adapter/storage"
	"github.com/rl1809/dental-supply/internal/core/domain"
)

type testEnv struct {
	store     *storage.SQLAdapter
	cache     *storage.MemoryCache
	notifier  *mockNotifier
	alerts    *AlertService
	inventory *InventoryService
}

func setupTestEnv(t *testing.T) *testEnv {
	ctx := context.Background()

	db, err := storage.Open(ctx, storage.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := storage.NewSQLAdapter(db)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cache := storage.NewMemoryCache()
	notifier := &mockNotifier{}

	alerts, err := NewAlertService(store, cache, notifier, nil, AlertConfig{
		WarningWindowDays: 30,
		Cooldown:          24 * time.Hour,
		Recipients:        []string{"dr@example.com"},
	})
	if err != nil {
		t.Fatalf("alert service: %v", err)
	}
	alerts.now = func() time.Time { return fixedNow }

	inventory := NewInventoryService(store, cache, InventoryConfig{DefaultReorderThreshold: 5, WarningWindowDays: 30})
	inventory.now = func() time.Time { return fixedNow }

	return &testEnv{store: store, cache: cache, notifier: notifier, alerts: alerts, inventory: inventory}
}

func TestIntegration_FullCycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	today := domain.DateOf(fixedNow)
	inputs := []ItemInput{
		{Name: "gloves", Quantity: 2},
		{Name: "composite", Quantity: 0, ExpiryDate: today.String()},
		{Name: "anesthetic", Quantity: 40, ExpiryDate: today.AddDays(12).String()},
		{Name: "floss", Quantity: 200, ExpiryDate: today.AddDays(365).String()},
	}
	for _, in := range inputs {
		if _, err := env.inventory.CreateItem(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}

	summary, err := env.alerts.RunCycle(ctx)
	if err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	// gloves: low; composite: low + expiring today; anesthetic: expiring
	if summary.Events != 4 || summary.Delivered != 4 || summary.Items != 4 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	second, err := env.alerts.RunCycle(ctx)
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if second.Events != 0 {
		t.Errorf("expected no events on immediate rerun, got %d", second.Events)
	}

	last, _ := env.alerts.LastCycle(ctx)
	if last == nil || last.ID != second.ID {
		t.Errorf("expected last cycle %s, got %+v", second.ID, last)
	}
}

func TestIntegration_MalformedRowDoesNotBlockOthers(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		if _, err := env.inventory.CreateItem(ctx, ItemInput{Name: fmt.Sprintf("item %02d", i), Quantity: 1}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	items, _ := env.inventory.ListItems(ctx)
	broken := items[3].ID
	item := items[3]
	item.Quantity = -7
	if err := env.store.UpdateItem(ctx, item); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	summary, err := env.alerts.RunCycle(ctx)
	if err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if summary.Skipped != 1 || summary.Events != 9 {
		t.Errorf("expected 9 events and 1 skipped, got %+v", summary)
	}
	for _, sent := range env.notifier.sent {
		if sent.event.ItemID == broken {
			t.Error("malformed item was alerted")
		}
	}
}

func TestIntegration_RestockClearsCooldown(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	item, _ := env.inventory.CreateItem(ctx, ItemInput{Name: "gloves", Quantity: 1})
	env.alerts.RunCycle(ctx)

	item, err := env.inventory.UpdateItem(ctx, item.ID, ItemInput{Name: "gloves", Quantity: 100}, item.Version)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	env.alerts.RunCycle(ctx)

	if _, err := env.inventory.ConsumeStock(ctx, item.ID, 98); err != nil {
		t.Fatalf("consume: %v", err)
	}
	summary, _ := env.alerts.RunCycle(ctx)
	if summary.Events != 1 {
		t.Errorf("expected immediate low stock alert after restock cycle, got %+v", summary)
	}
	if len(env.notifier.sent) != 2 {
		t.Errorf("expected 2 deliveries in total, got %d", len(env.notifier.sent))
	}
}
