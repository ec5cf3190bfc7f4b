// Command scan runs a single alert scan cycle and exits. It is meant to be
// driven by an external scheduler such as cron.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/rl1809/dental-supply/internal/app"
	"github.com/rl1809/dental-supply/internal/config"
	"github.com/rl1809/dental-supply/internal/core/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer a.Close()

	summary, err := a.Alerts.RunCycle(ctx)
	switch {
	case errors.Is(err, service.ErrScanInProgress):
		log.Println("another cycle is running, nothing to do")
	case err != nil:
		log.Printf("cycle %s aborted: %v", summary.ID, err)
		a.Close()
		os.Exit(1)
	default:
		log.Printf("cycle %s: %d events, %d delivered, %d dropped",
			summary.ID, summary.Events, summary.Delivered, summary.Dropped)
	}
}
