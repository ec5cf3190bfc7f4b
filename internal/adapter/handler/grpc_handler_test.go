package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/dental-supply/internal/core/domain"
	"github.com/rl1809/dental-supply/internal/core/service"
)

func alertsStatus(t *testing.T, h *HealthHandler) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.server.Check(context.Background(), &healthpb.HealthCheckRequest{Service: AlertsServiceName})
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	return resp.GetStatus()
}

func TestHealthHandler_ObserveCycle(t *testing.T) {
	h := NewHealthHandler()

	if got := alertsStatus(t, h); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING at start, got %s", got)
	}

	h.ObserveCycle(domain.CycleSummary{ID: "c1"}, fmt.Errorf("%w: list items: refused", domain.ErrTransientIO))
	if got := alertsStatus(t, h); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING after aborted cycle, got %s", got)
	}

	h.ObserveCycle(domain.CycleSummary{ID: "c2"}, service.ErrScanInProgress)
	if got := alertsStatus(t, h); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("lock contention must not change status, got %s", got)
	}

	h.ObserveCycle(domain.CycleSummary{ID: "c3"}, nil)
	if got := alertsStatus(t, h); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING after completed cycle, got %s", got)
	}

	h.ObserveCycle(domain.CycleSummary{ID: "c4"}, errors.New("unexpected"))
	if got := alertsStatus(t, h); got != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("non-infrastructure errors keep status, got %s", got)
	}
}
