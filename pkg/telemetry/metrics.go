package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InventoryMetrics counts item mutations. A nil *InventoryMetrics records nothing.
type InventoryMetrics struct {
	created metric.Int64Counter
	updated metric.Int64Counter
	deleted metric.Int64Counter
}

// NewInventoryMetrics registers the croche.items.* instruments on meter.
func NewInventoryMetrics(meter metric.Meter) (*InventoryMetrics, error) {
	created, err := meter.Int64Counter("croche.items.created",
		metric.WithDescription("Items created"), metric.WithUnit("{item}"))
	if err != nil {
		return nil, fmt.Errorf("created counter: %w", err)
	}
	updated, err := meter.Int64Counter("croche.items.updated",
		metric.WithDescription("Items updated"), metric.WithUnit("{item}"))
	if err != nil {
		return nil, fmt.Errorf("updated counter: %w", err)
	}
	deleted, err := meter.Int64Counter("croche.items.deleted",
		metric.WithDescription("Delete calls, by whether a record was removed"), metric.WithUnit("{call}"))
	if err != nil {
		return nil, fmt.Errorf("deleted counter: %w", err)
	}
	return &InventoryMetrics{created: created, updated: updated, deleted: deleted}, nil
}

func (m *InventoryMetrics) Created(ctx context.Context) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1)
}

func (m *InventoryMetrics) Updated(ctx context.Context) {
	if m == nil {
		return
	}
	m.updated.Add(ctx, 1)
}

func (m *InventoryMetrics) Deleted(ctx context.Context, removed bool) {
	if m == nil {
		return
	}
	m.deleted.Add(ctx, 1, metric.WithAttributes(attribute.Bool("removed", removed)))
}
