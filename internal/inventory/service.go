package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-retail/meridian/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetByProduct(ctx context.Context, productID int64) (Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, int, error)
	ListMovements(ctx context.Context, productID int64, limit int) ([]Movement, error)
	UpdateReorderLevel(ctx context.Context, productID, reorderLevel int64) (Record, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// MetricsPort counts posted movements.
type MetricsPort interface {
	RecordMovement(movementType string)
}

// ProductInfo is the catalog data attached to low-stock report rows.
type ProductInfo struct {
	ID   int64  `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// ProductCatalog resolves product data for report enrichment.
type ProductCatalog interface {
	Lookup(ctx context.Context, productID int64) (ProductInfo, error)
}

// LowStockItem is one row of the low-stock report.
type LowStockItem struct {
	Record  Record       `json:"record"`
	Product *ProductInfo `json:"product,omitempty"`
}

// Service coordinates ledger reads, stock movements and the reorder monitor.
type Service struct {
	repo    RepositoryPort
	monitor *ReorderMonitor
	audit   AuditPort
	metrics MetricsPort
	catalog ProductCatalog
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, monitor *ReorderMonitor, audit AuditPort, metrics MetricsPort, catalog ProductCatalog, logger *slog.Logger) *Service {
	return &Service{repo: repo, monitor: monitor, audit: audit, metrics: metrics, catalog: catalog, logger: logger}
}

// ApplyMovement validates and applies a typed stock movement. The ledger
// mutation and the movement record commit in one transaction; the movement is
// only written after the ledger accepted the change.
func (s *Service) ApplyMovement(ctx context.Context, input MovementInput) (MovementResult, error) {
	if input.ProductID <= 0 {
		return MovementResult{}, fmt.Errorf("product id required: %w", ErrInvalidMovement)
	}
	if !input.Type.Valid() {
		return MovementResult{}, fmt.Errorf("unknown type %q: %w", input.Type, ErrInvalidMovement)
	}
	switch input.Type {
	case MovementAddition, MovementSubtraction:
		if input.QuantityChange <= 0 {
			return MovementResult{}, fmt.Errorf("%s quantity must be positive: %w", input.Type, ErrInvalidMovement)
		}
	case MovementAdjustment:
		if input.QuantityChange < 0 {
			return MovementResult{}, fmt.Errorf("adjustment target must be >= 0: %w", ErrInvalidMovement)
		}
	}

	var result MovementResult
	var after Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var record Record
		var err error
		switch input.Type {
		case MovementAddition:
			record, err = ApplyDelta(ctx, tx, input.ProductID, input.QuantityChange)
		case MovementSubtraction:
			record, err = ApplyDelta(ctx, tx, input.ProductID, -input.QuantityChange)
		case MovementAdjustment:
			record, err = SetAbsolute(ctx, tx, input.ProductID, input.QuantityChange)
		}
		if err != nil {
			return err
		}

		movement, err := tx.InsertMovement(ctx, Movement{
			ProductID:      input.ProductID,
			Type:           input.Type,
			QuantityChange: input.QuantityChange,
			Reference:      input.Reference,
			PerformedBy:    input.PerformedBy,
		})
		if err != nil {
			return err
		}

		result = MovementResult{Movement: movement, Quantity: record.Quantity}
		after = record
		return nil
	})
	if err != nil {
		return MovementResult{}, err
	}

	// The monitor runs only after the unit committed, so alerts never fire
	// for rolled-back mutations.
	s.monitor.Check(ctx, after)

	if s.metrics != nil {
		s.metrics.RecordMovement(string(input.Type))
	}
	s.recordAudit(ctx, input.PerformedBy, fmt.Sprintf("STOCK_%s", input.Type), input.ProductID, map[string]any{
		"quantity_change": input.QuantityChange,
		"quantity":        result.Quantity,
		"reference":       input.Reference,
	})
	return result, nil
}

// GetInventory returns the record for productID and runs the reorder check.
func (s *Service) GetInventory(ctx context.Context, productID int64) (Record, error) {
	record, err := s.repo.GetByProduct(ctx, productID)
	if err != nil {
		return Record{}, err
	}
	s.monitor.Check(ctx, record)
	return record, nil
}

// CreateRecord creates an inventory record explicitly, for products stocked
// before any movement happened.
func (s *Service) CreateRecord(ctx context.Context, input CreateRecordInput) (Record, error) {
	if input.ProductID <= 0 {
		return Record{}, fmt.Errorf("product id required: %w", shared.ErrValidation)
	}
	if input.Quantity < 0 || input.ReorderLevel < 0 {
		return Record{}, fmt.Errorf("quantity and reorder level must be >= 0: %w", shared.ErrValidation)
	}

	var record Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		record, err = tx.InsertRecord(ctx, Record{
			ProductID:    input.ProductID,
			Quantity:     input.Quantity,
			ReorderLevel: input.ReorderLevel,
		})
		return err
	})
	if err != nil {
		return Record{}, err
	}
	s.monitor.Check(ctx, record)
	return record, nil
}

// UpdateReorderLevel changes a product's reorder threshold and re-evaluates
// the low-stock condition against the new value.
func (s *Service) UpdateReorderLevel(ctx context.Context, productID, reorderLevel int64) (Record, error) {
	if reorderLevel < 0 {
		return Record{}, fmt.Errorf("reorder level must be >= 0: %w", shared.ErrValidation)
	}
	record, err := s.repo.UpdateReorderLevel(ctx, productID, reorderLevel)
	if err != nil {
		return Record{}, err
	}
	s.monitor.Check(ctx, record)
	return record, nil
}

// ListRecords lists inventory records.
func (s *Service) ListRecords(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	return s.repo.List(ctx, filter)
}

// ListMovements lists a product's movement trail.
func (s *Service) ListMovements(ctx context.Context, productID int64, limit int) ([]Movement, error) {
	return s.repo.ListMovements(ctx, productID, limit)
}

// LowStockReport lists every record at or below its threshold, enriched with
// catalog data fetched concurrently. Missing products leave the row
// unenriched rather than failing the report.
func (s *Service) LowStockReport(ctx context.Context) ([]LowStockItem, error) {
	records, _, err := s.repo.List(ctx, ListFilter{LowStockOnly: true, PerPage: 500})
	if err != nil {
		return nil, err
	}

	items := make([]LowStockItem, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, record := range records {
		items[i] = LowStockItem{Record: record}
		if s.catalog == nil {
			continue
		}
		g.Go(func() error {
			info, err := s.catalog.Lookup(gctx, record.ProductID)
			if err != nil {
				s.logger.Warn("low stock report: product lookup failed",
					slog.Int64("product_id", record.ProductID),
					slog.Any("error", err))
				return nil
			}
			items[i].Product = &info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Monitor exposes the reorder monitor for workflows in other packages.
func (s *Service) Monitor() *ReorderMonitor {
	return s.monitor
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, productID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "inventory",
		EntityID: fmt.Sprintf("%d", productID),
		Meta:     meta,
	}); err != nil {
		s.logger.Warn("audit record failed", slog.Any("error", err))
	}
}
