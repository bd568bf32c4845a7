package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type orderMetrics struct {
	created       metric.Int64Counter
	updated       metric.Int64Counter
	stockRejected metric.Int64Counter
}

func newOrderMetrics() *orderMetrics {
	meter := otel.Meter(tracerName)
	return &orderMetrics{
		created:       counter(meter, "orders.created", "Orders placed"),
		updated:       counter(meter, "orders.updated", "Orders updated"),
		stockRejected: counter(meter, "orders.stock_rejected", "Order writes rejected for insufficient stock"),
	}
}

// counter never returns nil: on registration failure it falls back to a
// no-op instrument so callers need no nil checks.
func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		otel.Handle(err)
		c, _ = noop.NewMeterProvider().Meter(tracerName).Int64Counter(name)
	}
	return c
}
