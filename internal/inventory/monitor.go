package inventory

import (
	"context"
	"log/slog"
)

// NotificationSink delivers low-stock alerts. Delivery is fire and forget:
// sink errors are logged and never fail the operation that raised the alert.
type NotificationSink interface {
	NotifyLowStock(ctx context.Context, alert LowStockAlert) error
}

// MonitorMetrics counts raised alerts.
type MonitorMetrics interface {
	RecordLowStockAlert()
}

// ReorderMonitor checks records against their reorder threshold after ledger
// reads and mutations. It runs outside the atomic unit.
type ReorderMonitor struct {
	sink    NotificationSink
	logger  *slog.Logger
	metrics MonitorMetrics
}

// NewReorderMonitor constructs the monitor.
func NewReorderMonitor(sink NotificationSink, logger *slog.Logger, metrics MonitorMetrics) *ReorderMonitor {
	return &ReorderMonitor{sink: sink, logger: logger, metrics: metrics}
}

// Check raises a low-stock alert when quantity <= reorderLevel and returns it,
// or nil when the record is above its threshold.
func (m *ReorderMonitor) Check(ctx context.Context, record Record) *LowStockAlert {
	if m == nil {
		return nil
	}
	if record.Quantity > record.ReorderLevel {
		return nil
	}

	alert := LowStockAlert{
		ProductID:    record.ProductID,
		Quantity:     record.Quantity,
		ReorderLevel: record.ReorderLevel,
	}
	if m.metrics != nil {
		m.metrics.RecordLowStockAlert()
	}
	if m.sink != nil {
		if err := m.sink.NotifyLowStock(ctx, alert); err != nil {
			m.logger.Warn("low stock notification failed",
				slog.Int64("product_id", record.ProductID),
				slog.Any("error", err))
		}
	}
	return &alert
}
