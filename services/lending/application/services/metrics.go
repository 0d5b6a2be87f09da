package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/ghuser/lendingdesk/services/lending"

// lendingMetrics counts lifecycle outcomes. The global MeterProvider is the
// Prometheus exporter installed by telemetry.Init, or a no-op in tests.
type lendingMetrics struct {
	transitions metric.Int64Counter
	penalties   metric.Int64Counter
	swept       metric.Int64Counter
}

func newMetrics() *lendingMetrics {
	meter := otel.Meter(meterName)
	return &lendingMetrics{
		transitions: counter(meter, "lending.borrow.transitions", "Borrow status changes by target status"),
		penalties:   counter(meter, "lending.penalty.actions", "Penalty actions by kind"),
		swept:       counter(meter, "lending.sweep.marked_overdue", "Borrows moved to Overdue by the sweeper"),
	}
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter(name)
	}
	return c
}

func (m *lendingMetrics) transition(ctx context.Context, to string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", to)))
}

func (m *lendingMetrics) penalty(ctx context.Context, action string) {
	m.penalties.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}
