package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockAlert delivers a reorder notification for one product.
	TaskLowStockAlert = "inventory:lowstock"
	// TaskIdempotencyCleanup prunes processed idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// LowStockAlertPayload carries one reorder alert through the queue.
type LowStockAlertPayload struct {
	ProductID    int64     `json:"product_id"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
	RaisedAt     time.Time `json:"raised_at"`
}

// NewLowStockAlertTask constructs an Asynq task for a low-stock alert.
func NewLowStockAlertTask(payload LowStockAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockAlert, data, asynq.Queue(QueueDefault)), nil
}

// IdempotencyCleanupPayload carries the retention window for key pruning.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask constructs the periodic cleanup task.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.Queue(QueueDefault)), nil
}
