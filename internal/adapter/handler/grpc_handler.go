package handler

import (
	"errors"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/dental-supply/internal/core/domain"
	"github.com/rl1809/dental-supply/internal/core/service"
)

// AlertsServiceName is the health-checked service for the alert pipeline.
const AlertsServiceName = "dental.inventory.Alerts"

// HealthHandler serves grpc.health.v1 and tracks whether scan cycles succeed.
type HealthHandler struct {
	server *health.Server
}

func NewHealthHandler() *HealthHandler {
	hs := health.NewServer()
	hs.SetServingStatus(AlertsServiceName, healthpb.HealthCheckResponse_SERVING)
	return &HealthHandler{server: hs}
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// ObserveCycle flips the alerts service to NOT_SERVING when a cycle is
// aborted by an infrastructure failure, and back once a cycle completes.
func (h *HealthHandler) ObserveCycle(summary domain.CycleSummary, err error) {
	switch {
	case err == nil:
		h.server.SetServingStatus(AlertsServiceName, healthpb.HealthCheckResponse_SERVING)
	case errors.Is(err, service.ErrScanInProgress):
		// another holder is scanning; nothing learned
	case errors.Is(err, domain.ErrTransientIO):
		log.Printf("health: alerts NOT_SERVING after cycle %s: %v", summary.ID, err)
		h.server.SetServingStatus(AlertsServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	}
}

func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}
