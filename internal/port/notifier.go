package port

import (
	"context"
	"time"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

type Notifier interface {
	// Send delivers one alert to one destination address
	Send(ctx context.Context, event domain.AlertEvent, to string) error
}

type Metrics interface {
	CycleFinished(result domain.CycleResult, took time.Duration)
	AlertEmitted(kind domain.AlertKind)
	ItemSkipped()
	DeliveryFailed()
	DeliveryDropped()
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) CycleFinished(domain.CycleResult, time.Duration) {}
func (NopMetrics) AlertEmitted(domain.AlertKind)                 {}
func (NopMetrics) ItemSkipped()                                  {}
func (NopMetrics) DeliveryFailed()                               {}
func (NopMetrics) DeliveryDropped()                              {}
