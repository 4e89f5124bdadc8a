package ports

import "context"

const (
	TopicParcelPaid      = "parcel.paid"
	TopicPaymentRecorded = "payment.recorded"
)

// Envelope for domain events published after a successful write.
type Event struct {
	Type string         `json:"event_type"`
	Data map[string]any `json:"data"`
}

// Best-effort notification of completed writes.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}
