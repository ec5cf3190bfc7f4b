package app

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/dental-supply/internal/adapter/notify"
	"github.com/rl1809/dental-supply/internal/adapter/storage"
	"github.com/rl1809/dental-supply/internal/adapter/telemetry"
	"github.com/rl1809/dental-supply/internal/config"
	"github.com/rl1809/dental-supply/internal/core/service"
	"github.com/rl1809/dental-supply/internal/port"
)

// App holds the wired services and the connections they own.
type App struct {
	Alerts    *service.AlertService
	Inventory *service.InventoryService
	Metrics   *telemetry.Metrics

	db  *sqlx.DB
	rdb *redis.Client
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := storage.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, err
	}
	log.Printf("connected to %s store", cfg.StoreDriver)

	store := storage.NewSQLAdapter(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	a := &App{db: db, Metrics: telemetry.NewMetrics()}

	var cache port.CacheRepository
	if cfg.RedisAddr != "" {
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Println("connected to redis")
		cache = storage.NewRedisAdapter(a.rdb, cfg.ScanLockTTL)
	} else {
		log.Println("no REDIS_ADDR, using in-process scan lock")
		cache = storage.NewMemoryCache()
	}

	var notifier port.Notifier = notify.LogNotifier{}
	if cfg.SMTPEnabled() {
		smtpNotifier, err := notify.NewSMTPNotifier(notify.SMTPConfig{
			Addr:     cfg.SMTPAddr,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		notifier = smtpNotifier
	}

	a.Alerts, err = service.NewAlertService(store, cache, notifier, a.Metrics, service.AlertConfig{
		WarningWindowDays: cfg.WarningWindowDays,
		Cooldown:          cfg.AlertCooldown,
		Recipients:        cfg.AlertRecipients,
		Location:          cfg.Location,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Inventory = service.NewInventoryService(store, cache, service.InventoryConfig{
		DefaultReorderThreshold: cfg.DefaultReorderThreshold,
		WarningWindowDays:       cfg.WarningWindowDays,
		Location:                cfg.Location,
	})

	return a, nil
}

func (a *App) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
