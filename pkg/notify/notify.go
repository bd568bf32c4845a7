// Package notify carries best-effort outbound notifications (email today)
// from domain services to a delivery worker.
//
// Producers call Dispatcher.Enqueue after their transaction commits. Enqueue
// never returns an error and never blocks on delivery: a failed hand-off is
// logged and counted, and the caller's operation still succeeds. Consumers
// (cmd/worker) decode the queued Notification and pass it to a Mailer.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/pkg/logger"
)

// TopicEmail is the topic (Watermill and Kafka) carrying email notifications.
const TopicEmail = "notification.email"

// Kind identifies the template a notification was built from.
type Kind string

const (
	KindOrderConfirmed Kind = "order.confirmed"
	KindOrderUpdated   Kind = "order.updated"
	KindVerifyEmail    Kind = "account.verify_email"
	KindVerifyReminder Kind = "account.verify_reminder"
)

// ErrNoRecipients is returned by Validate when a notification has nowhere to go.
var ErrNoRecipients = errors.New("notification has no recipients")

// Notification is one outbound message.
type Notification struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate reports whether n can be delivered.
func (n Notification) Validate() error {
	if len(n.Recipients) == 0 {
		return ErrNoRecipients
	}
	if n.Subject == "" {
		return fmt.Errorf("notification %s: empty subject", n.Kind)
	}
	return nil
}

// Encode stamps the ID and creation time if unset and marshals n.
func Encode(n Notification) ([]byte, Notification, error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(n)
	if err != nil {
		return nil, n, fmt.Errorf("notify: marshal: %w", err)
	}
	return b, n, nil
}

// Decode unmarshals a queued notification payload.
func Decode(payload []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return Notification{}, fmt.Errorf("notify: decode: %w", err)
	}
	return n, nil
}

// Dispatcher hands notifications off for asynchronous delivery.
type Dispatcher interface {
	Enqueue(ctx context.Context, n Notification)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, n Notification)

// Enqueue calls f(ctx, n).
func (f DispatcherFunc) Enqueue(ctx context.Context, n Notification) { f(ctx, n) }

// Nop discards every notification.
var Nop Dispatcher = DispatcherFunc(func(context.Context, Notification) {})

// Safe wraps d so a panicking implementation cannot take down the caller.
// Recovered panics are logged and counted on m, which may be nil.
func Safe(d Dispatcher, log logger.Logger, m *Metrics) Dispatcher {
	return DispatcherFunc(func(ctx context.Context, n Notification) {
		defer func() {
			if p := recover(); p != nil {
				log.ErrorContext(ctx, "notify: dispatcher panicked",
					"kind", n.Kind,
					"panic", fmt.Sprint(p),
				)
				m.Failed(ctx, n.Kind, "panic")
			}
		}()
		d.Enqueue(ctx, n)
	})
}
