// Package events publishes session lifecycle events to downstream consumers
// (export workers, analytics).
package events

import (
	"context"
	"log/slog"

	"github.com/mmynk/billsplit/internal/models"
)

// TopicSessionSettled is the default topic for settlement events.
const TopicSessionSettled = "billsplit.session_settled"

// SessionSettled is emitted when a fully assigned session is settled.
type SessionSettled struct {
	SessionID  string                 `json:"session_id"`
	SettledAt  int64                  `json:"settled_at"`
	TaxAmount  float64                `json:"tax_amount"`
	GrandTotal float64                `json:"grand_total"`
	Items      []models.Item          `json:"items"`
	Summaries  []models.PersonSummary `json:"summaries"`
}

// Publisher sends events to a message broker.
type Publisher interface {
	PublishSettled(ctx context.Context, event SessionSettled) error
	Close() error
}

// LogPublisher logs events instead of sending them anywhere.
// Used when no broker is configured.
type LogPublisher struct{}

// PublishSettled logs the event at debug level.
func (LogPublisher) PublishSettled(ctx context.Context, event SessionSettled) error {
	slog.DebugContext(ctx, "Session settled",
		"session_id", event.SessionID,
		"participants", len(event.Summaries),
		"grand_total", event.GrandTotal,
	)
	return nil
}

// Close is a no-op.
func (LogPublisher) Close() error { return nil }
