package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/rl1809/dental-supply/internal/adapter/handler"
	"github.com/rl1809/dental-supply/internal/app"
	"github.com/rl1809/dental-supply/internal/config"
	"github.com/rl1809/dental-supply/internal/core/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	// Initialize gRPC health
	health := handler.NewHealthHandler()
	grpcServer := grpc.NewServer()
	health.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("gRPC server error: %v", err)
		}
	}()

	// Start scheduler
	a.Alerts.OnCycle(health.ObserveCycle)
	scheduler := service.NewScheduler(a.Alerts, cfg.ScanInterval, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(a.Alerts, a.Inventory)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpHandler.Routes(a.Metrics.Handler()),
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	health.Shutdown()
	grpcServer.GracefulStop()
	log.Println("gRPC server stopped")

	// Let an in-flight cycle finish
	cancel()
	wg.Wait()
	log.Println("scheduler stopped")

	a.Close()
	log.Println("connections closed")
}
