package notifier

import (
	"context"
	"encoding/json"
	"time"
)

const EventTransactionStatusChanged = "transaction.status_changed"

// Notifier broadcasts named events to connected listeners. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, event string, payload interface{}) error
}

type TransactionStatusChanged struct {
	Reference     string `json:"reference"`
	UserID        string `json:"user_id"`
	Service       string `json:"service"`
	Status        string `json:"status"`
	RemainingTime int    `json:"remaining_time"`
	Reason        string `json:"reason,omitempty"`
}

type envelope struct {
	Event       string      `json:"event"`
	Payload     interface{} `json:"payload"`
	PublishedAt time.Time   `json:"published_at"`
}

func encode(event string, payload interface{}) ([]byte, error) {
	return json.Marshal(envelope{Event: event, Payload: payload, PublishedAt: time.Now().UTC()})
}

type noop struct{}

func NewNoop() Notifier { return noop{} }

func (noop) Publish(context.Context, string, interface{}) error { return nil }
