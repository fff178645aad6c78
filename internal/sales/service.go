package sales

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meridian-retail/meridian/internal/inventory"
	"github.com/meridian-retail/meridian/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, filter ListSalesFilter) ([]Sale, int, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service runs the sale fulfillment workflow and sale reads.
type Service struct {
	repo    RepositoryPort
	monitor *inventory.ReorderMonitor
	audit   AuditPort
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, monitor *inventory.ReorderMonitor, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, monitor: monitor, audit: audit, logger: logger}
}

// FulfillSale creates the sale header and its items and decrements the ledger
// for every line, all in one transaction. Items are processed strictly in
// input order; the first line that cannot be fulfilled aborts the whole unit,
// so no header, item or decrement from a failed call is ever observable.
func (s *Service) FulfillSale(ctx context.Context, input FulfillSaleInput) (*Sale, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptySale
	}
	status := input.Status
	if status == "" {
		status = SaleStatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("status %q: %w", input.Status, ErrInvalidStatus)
	}
	for _, item := range input.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			return nil, fmt.Errorf("item product %d quantity %d: %w", item.ProductID, item.Quantity, shared.ErrValidation)
		}
	}

	var sale Sale
	var touched []inventory.Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		sale, err = tx.InsertSale(ctx, Sale{
			CustomerID:  input.CustomerID,
			UserID:      input.UserID,
			Status:      status,
			Subtotal:    input.Subtotal,
			TaxAmount:   input.TaxAmount,
			TotalAmount: input.Total,
			Notes:       input.Notes,
		})
		if err != nil {
			return err
		}

		ledger := tx.Inventory()
		for _, line := range input.Items {
			item, err := tx.InsertSaleItem(ctx, SaleItem{
				SaleID:    sale.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				TaxAmount: line.TaxAmount,
				Subtotal:  line.Subtotal,
			})
			if err != nil {
				return err
			}

			record, err := inventory.ApplyDelta(ctx, ledger, line.ProductID, -line.Quantity)
			if err != nil {
				return fmt.Errorf("sale line product %d: %w", line.ProductID, err)
			}
			touched = append(touched, record)
			sale.Items = append(sale.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, record := range touched {
		s.monitor.Check(ctx, record)
	}
	s.recordAudit(ctx, input.UserID, "SALE_FULFILLED", sale.ID, map[string]any{
		"items": len(sale.Items),
		"total": sale.TotalAmount,
	})
	return &sale, nil
}

// Get returns a sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

// List returns sales matching the filter.
func (s *Service) List(ctx context.Context, filter ListSalesFilter) ([]Sale, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) recordAudit(ctx context.Context, actorID *int64, action string, saleID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actor int64
	if actorID != nil {
		actor = *actorID
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   action,
		Entity:   "sale",
		EntityID: fmt.Sprintf("%d", saleID),
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
