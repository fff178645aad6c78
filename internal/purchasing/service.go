package purchasing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-retail/meridian/internal/inventory"
	"github.com/meridian-retail/meridian/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*PurchaseOrder, error)
	List(ctx context.Context, filter ListOrdersFilter) ([]PurchaseOrder, int, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service runs purchase order creation, cancellation and the receipt workflow.
type Service struct {
	repo        RepositoryPort
	monitor     *inventory.ReorderMonitor
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	logger      *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, monitor *inventory.ReorderMonitor, audit AuditPort, idem *shared.IdempotencyStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, monitor: monitor, audit: audit, idempotency: idem, logger: logger}
}

// Create persists a new PENDING order with its line items.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (*PurchaseOrder, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item quantity %d: %w", item.Quantity, shared.ErrValidation)
		}
		if item.ProductID != nil && *item.ProductID <= 0 {
			return nil, fmt.Errorf("item product %d: %w", *item.ProductID, shared.ErrValidation)
		}
	}

	var order PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		order, err = tx.InsertOrder(ctx, PurchaseOrder{
			SupplierID:       input.SupplierID,
			Status:           OrderStatusPending,
			ExpectedDelivery: input.ExpectedDelivery,
			TotalAmount:      input.TotalAmount,
			Notes:            input.Notes,
			CreatedBy:        input.CreatedBy,
		})
		if err != nil {
			return err
		}
		for _, line := range input.Items {
			item, err := tx.InsertOrderItem(ctx, PurchaseOrderItem{
				PurchaseOrderID: order.ID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				UnitPrice:       line.UnitPrice,
				Subtotal:        line.Subtotal,
			})
			if err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, input.CreatedBy, "PO_CREATE", order.ID, map[string]any{"items": len(order.Items)})
	return &order, nil
}

// Receive marks the order RECEIVED and credits every linked product's stock,
// all in one transaction. Receipt happens at most once: a RECEIVED order
// fails with ErrAlreadyReceived rather than re-crediting, and a CANCELED
// order is not receivable. Lines without a linked product are skipped.
func (s *Service) Receive(ctx context.Context, orderID int64, actorID *int64) (*PurchaseOrder, error) {
	key := fmt.Sprintf("PO:%d", orderID)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "purchasing.receipt"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return nil, fmt.Errorf("purchase order %d: %w", orderID, ErrAlreadyReceived)
			}
			return nil, err
		}
		inserted = true
	}

	var order PurchaseOrder
	var touched []inventory.Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		switch order.Status {
		case OrderStatusReceived:
			return fmt.Errorf("purchase order %d: %w", orderID, ErrAlreadyReceived)
		case OrderStatusCanceled:
			return fmt.Errorf("purchase order %d is canceled: %w", orderID, ErrNotReceivable)
		}

		now := time.Now().UTC()
		if err := tx.UpdateOrderStatus(ctx, orderID, OrderStatusReceived, &now); err != nil {
			return err
		}
		order.Status = OrderStatusReceived
		order.ReceivedAt = &now

		ledger := tx.Inventory()
		for _, line := range order.Items {
			if line.ProductID == nil {
				continue
			}
			record, err := inventory.ApplyDelta(ctx, ledger, *line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("receipt line product %d: %w", *line.ProductID, err)
			}

			ref := uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("PO:%d:%d", orderID, *line.ProductID)))
			var performedBy int64
			if actorID != nil {
				performedBy = *actorID
			}
			if _, err := ledger.InsertMovement(ctx, inventory.Movement{
				ProductID:      *line.ProductID,
				Type:           inventory.MovementAddition,
				QuantityChange: line.Quantity,
				Reference:      ref.String(),
				PerformedBy:    performedBy,
			}); err != nil {
				return err
			}
			touched = append(touched, record)
		}
		return nil
	})
	if err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		return nil, err
	}

	for _, record := range touched {
		s.monitor.Check(ctx, record)
	}
	s.recordAudit(ctx, actorID, "PO_RECEIVE", orderID, map[string]any{"items": len(order.Items)})
	return &order, nil
}

// Cancel transitions a PENDING order to CANCELED.
func (s *Service) Cancel(ctx context.Context, orderID int64, actorID *int64) (*PurchaseOrder, error) {
	var order PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != OrderStatusPending {
			return fmt.Errorf("purchase order %d is %s: %w", orderID, order.Status, ErrInvalidState)
		}
		if err := tx.UpdateOrderStatus(ctx, orderID, OrderStatusCanceled, nil); err != nil {
			return err
		}
		order.Status = OrderStatusCanceled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actorID, "PO_CANCEL", orderID, nil)
	return &order, nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns orders matching the filter.
func (s *Service) List(ctx context.Context, filter ListOrdersFilter) ([]PurchaseOrder, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) recordAudit(ctx context.Context, actorID *int64, action string, orderID int64, meta map[string]any) {
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
		Entity:   "purchase_order",
		EntityID: fmt.Sprintf("%d", orderID),
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
