package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/meridian-retail/meridian/internal/inventory"
)

type captureMailer struct {
	subjects []string
	bodies   []string
	err      error
}

func (m *captureMailer) Send(ctx context.Context, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, body)
	return nil
}

type staticCatalog map[int64]inventory.ProductInfo

func (c staticCatalog) Lookup(ctx context.Context, productID int64) (inventory.ProductInfo, error) {
	if info, ok := c[productID]; ok {
		return info, nil
	}
	return inventory.ProductInfo{}, inventory.ErrRecordNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleLowStockAlertMailsCatalogLabel(t *testing.T) {
	mailer := &captureMailer{}
	h := &Handlers{
		Mailer:  mailer,
		Catalog: staticCatalog{42: {ID: 42, SKU: "SKU-42", Name: "Widget"}},
		Logger:  testLogger(),
	}

	task, err := NewLowStockAlertTask(LowStockAlertPayload{
		ProductID:    42,
		Quantity:     2,
		ReorderLevel: 5,
		RaisedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, h.HandleLowStockAlert(context.Background(), task))
	require.Len(t, mailer.subjects, 1)
	require.Equal(t, "Low stock: Widget (SKU-42)", mailer.subjects[0])
	require.Contains(t, mailer.bodies[0], "dropped to 2")
}

func TestHandleLowStockAlertWithoutMailer(t *testing.T) {
	h := &Handlers{Logger: testLogger()}

	task, err := NewLowStockAlertTask(LowStockAlertPayload{ProductID: 7, Quantity: 0, ReorderLevel: 3})
	require.NoError(t, err)
	require.NoError(t, h.HandleLowStockAlert(context.Background(), task))
}

func TestHandleLowStockAlertMailerFailure(t *testing.T) {
	mailer := &captureMailer{err: errors.New("smtp down")}
	h := &Handlers{Mailer: mailer, Logger: testLogger()}

	task, err := NewLowStockAlertTask(LowStockAlertPayload{ProductID: 7, Quantity: 0, ReorderLevel: 3})
	require.NoError(t, err)
	require.Error(t, h.HandleLowStockAlert(context.Background(), task))
}

func TestHandleLowStockAlertBadPayload(t *testing.T) {
	h := &Handlers{Logger: testLogger()}
	task := asynq.NewTask(TaskLowStockAlert, []byte("{not json"))
	require.ErrorIs(t, h.HandleLowStockAlert(context.Background(), task), asynq.SkipRetry)
}
