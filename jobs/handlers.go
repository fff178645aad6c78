package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-retail/meridian/internal/inventory"
	"github.com/meridian-retail/meridian/internal/shared"
)

// AlertMailer sends a formatted low-stock notice to the purchasing inbox.
type AlertMailer interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPMailer delivers alerts over plain SMTP.
type SMTPMailer struct {
	Addr string
	From string
	To   []string
}

// Send writes a single message to the configured recipients.
func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.From, strings.Join(m.To, ", "), subject, body)
	return smtp.SendMail(m.Addr, nil, m.From, m.To, []byte(msg))
}

// Handlers bundles the dependencies task handlers need.
type Handlers struct {
	Mailer      AlertMailer
	Catalog     inventory.ProductCatalog
	Idempotency *shared.IdempotencyStore
	Logger      *slog.Logger
}

// HandleLowStockAlert formats and delivers a queued reorder alert.
func (h *Handlers) HandleLowStockAlert(ctx context.Context, t *asynq.Task) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	label := fmt.Sprintf("product %d", payload.ProductID)
	if h.Catalog != nil {
		if info, err := h.Catalog.Lookup(ctx, payload.ProductID); err == nil {
			label = info.Name
			if info.SKU != "" {
				label = fmt.Sprintf("%s (%s)", info.Name, info.SKU)
			}
		}
	}

	h.Logger.Warn("low stock alert",
		slog.String("product", label),
		slog.Int64("quantity", payload.Quantity),
		slog.Int64("reorder_level", payload.ReorderLevel))

	if h.Mailer == nil {
		return nil
	}
	subject := fmt.Sprintf("Low stock: %s", label)
	body := fmt.Sprintf("Stock for %s dropped to %d (reorder level %d) at %s.\nRaise a purchase order to replenish.",
		label, payload.Quantity, payload.ReorderLevel, payload.RaisedAt.Format(time.RFC3339))
	if err := h.Mailer.Send(ctx, subject, body); err != nil {
		h.Logger.Error("alert mail delivery failed", slog.Any("error", err))
		return err
	}
	return nil
}

// HandleIdempotencyCleanup prunes idempotency keys past retention.
func (h *Handlers) HandleIdempotencyCleanup(ctx context.Context, t *asynq.Task) error {
	var payload IdempotencyCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionHours <= 0 {
		payload.RetentionHours = 24
	}
	if err := h.Idempotency.Cleanup(ctx, time.Duration(payload.RetentionHours)*time.Hour); err != nil {
		return err
	}
	h.Logger.Info("idempotency cleanup done", slog.Int("retention_hours", payload.RetentionHours))
	return nil
}
