package notify

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope notify instruments are registered under.
const MeterName = "github.com/ghuser/ordermgmt/pkg/notify"

// Metrics counts notifications that could not be handed off or delivered.
// A nil *Metrics records nothing.
type Metrics struct {
	failed metric.Int64Counter
}

// NewMetrics registers the notify instruments on meter. A registration
// failure is reported to otel.Handle and leaves the counter unset.
func NewMetrics(meter metric.Meter) *Metrics {
	c, err := meter.Int64Counter(
		"notifications.failed",
		metric.WithDescription("Notifications that could not be handed off or delivered"),
	)
	if err != nil {
		otel.Handle(err)
		return &Metrics{}
	}
	return &Metrics{failed: c}
}

// Failed counts one lost notification of kind, labelled with reason.
func (m *Metrics) Failed(ctx context.Context, kind Kind, reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("reason", reason),
	))
}
