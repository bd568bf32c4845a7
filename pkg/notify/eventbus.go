package notify

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/ordermgmt/pkg/logger"
)

// Publisher is the subset of events.EventBus used for notifications.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// EventBusDispatcher queues notifications on the PostgreSQL-backed event bus.
type EventBusDispatcher struct {
	pub     Publisher
	log     logger.Logger
	metrics *Metrics
}

// NewEventBusDispatcher returns a Dispatcher publishing to TopicEmail.
// Failed hand-offs are counted on m, which may be nil.
func NewEventBusDispatcher(pub Publisher, log logger.Logger, m *Metrics) *EventBusDispatcher {
	return &EventBusDispatcher{pub: pub, log: log, metrics: m}
}

// Enqueue publishes n. Errors are logged and counted, never returned.
func (d *EventBusDispatcher) Enqueue(ctx context.Context, n Notification) {
	payload, n, err := Encode(n)
	if err != nil {
		d.log.ErrorContext(ctx, "notify: encode failed", "kind", n.Kind, "error", err)
		d.metrics.Failed(ctx, n.Kind, "encode")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("notification_id", n.ID.String())
	msg.Metadata.Set("kind", string(n.Kind))

	if err := d.pub.Publish(ctx, TopicEmail, msg); err != nil {
		d.log.ErrorContext(ctx, "notify: publish failed",
			"kind", n.Kind,
			"notification_id", n.ID,
			"error", err,
		)
		d.metrics.Failed(ctx, n.Kind, "publish")
		return
	}
	d.log.DebugContext(ctx, "notify: queued", "kind", n.Kind, "notification_id", n.ID)
}
