package notify

import (
	"context"
	"log"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

// LogNotifier writes alerts to the process log instead of sending mail.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, event domain.AlertEvent, to string) error {
	log.Printf("notify: [%s] to=%s item=%s %s", event.Kind, to, event.ItemID, event.Message)
	return nil
}
