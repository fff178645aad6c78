package inventory

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	records   map[int64]Record
	movements []Movement
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[int64]Record)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetByProduct(ctx context.Context, productID int64) (Record, error) {
	if rec, ok := r.records[productID]; ok {
		return rec, nil
	}
	return Record{}, ErrRecordNotFound
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	var out []Record
	for _, rec := range r.records {
		if filter.LowStockOnly && rec.Quantity > rec.ReorderLevel {
			continue
		}
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, productID int64, limit int) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdateReorderLevel(ctx context.Context, productID, reorderLevel int64) (Record, error) {
	rec, ok := r.records[productID]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	rec.ReorderLevel = reorderLevel
	r.records[productID] = rec
	return rec, nil
}

func (tx *memoryTx) GetRecordForUpdate(ctx context.Context, productID int64) (Record, error) {
	if rec, ok := tx.repo.records[productID]; ok {
		return rec, nil
	}
	return Record{}, ErrRecordNotFound
}

func (tx *memoryTx) InsertRecord(ctx context.Context, record Record) (Record, error) {
	tx.repo.nextID++
	record.ID = tx.repo.nextID
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	tx.repo.records[record.ProductID] = record
	return record, nil
}

func (tx *memoryTx) UpdateRecordQuantity(ctx context.Context, recordID, quantity int64, updatedAt time.Time) error {
	for productID, rec := range tx.repo.records {
		if rec.ID == recordID {
			rec.Quantity = quantity
			rec.UpdatedAt = updatedAt
			tx.repo.records[productID] = rec
			return nil
		}
	}
	return ErrRecordNotFound
}

func (tx *memoryTx) InsertMovement(ctx context.Context, movement Movement) (Movement, error) {
	tx.repo.nextID++
	movement.ID = tx.repo.nextID
	movement.CreatedAt = time.Now()
	tx.repo.movements = append(tx.repo.movements, movement)
	return movement, nil
}

type captureSink struct {
	alerts []LowStockAlert
}

func (s *captureSink) NotifyLowStock(ctx context.Context, alert LowStockAlert) error {
	s.alerts = append(s.alerts, alert)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *memoryRepo, sink NotificationSink) *Service {
	monitor := NewReorderMonitor(sink, testLogger(), nil)
	return NewService(repo, monitor, nil, nil, nil, testLogger())
}

func seedRecord(repo *memoryRepo, productID, quantity, reorderLevel int64) {
	repo.nextID++
	repo.records[productID] = Record{
		ID:           repo.nextID,
		ProductID:    productID,
		Quantity:     quantity,
		ReorderLevel: reorderLevel,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestApplyMovementAddition(t *testing.T) {
	repo := newMemoryRepo()
	sink := &captureSink{}
	svc := newTestService(repo, sink)
	ctx := context.Background()

	seedRecord(repo, 1, 10, 5)

	result, err := svc.ApplyMovement(ctx, MovementInput{ProductID: 1, Type: MovementAddition, QuantityChange: 5})
	require.NoError(t, err)
	require.EqualValues(t, 15, result.Quantity)
	require.Equal(t, MovementAddition, result.Movement.Type)
	require.Empty(t, sink.alerts)
	require.Len(t, repo.movements, 1)
}

func TestApplyMovementSubtractionInsufficient(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})
	ctx := context.Background()

	seedRecord(repo, 1, 15, 5)

	_, err := svc.ApplyMovement(ctx, MovementInput{ProductID: 1, Type: MovementSubtraction, QuantityChange: 12})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Quantity unchanged, no movement written.
	rec, err := svc.GetInventory(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 15, rec.Quantity)
	require.Empty(t, repo.movements)
}

func TestApplyMovementSubtractionRaisesLowStock(t *testing.T) {
	repo := newMemoryRepo()
	sink := &captureSink{}
	svc := newTestService(repo, sink)
	ctx := context.Background()

	seedRecord(repo, 1, 15, 5)

	result, err := svc.ApplyMovement(ctx, MovementInput{ProductID: 1, Type: MovementSubtraction, QuantityChange: 11})
	require.NoError(t, err)
	require.EqualValues(t, 4, result.Quantity)
	require.Len(t, sink.alerts, 1)
	require.EqualValues(t, 4, sink.alerts[0].Quantity)
	require.EqualValues(t, 5, sink.alerts[0].ReorderLevel)
}

func TestApplyMovementAdjustment(t *testing.T) {
	repo := newMemoryRepo()
	sink := &captureSink{}
	svc := newTestService(repo, sink)
	ctx := context.Background()

	seedRecord(repo, 1, 15, 5)

	result, err := svc.ApplyMovement(ctx, MovementInput{ProductID: 1, Type: MovementAdjustment, QuantityChange: 5})
	require.NoError(t, err)
	require.EqualValues(t, 5, result.Quantity)
	// 5 <= 5 triggers the threshold.
	require.Len(t, sink.alerts, 1)
}

func TestApplyMovementValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})
	ctx := context.Background()

	seedRecord(repo, 1, 10, 0)

	cases := []MovementInput{
		{ProductID: 1, Type: MovementAddition, QuantityChange: 0},
		{ProductID: 1, Type: MovementAddition, QuantityChange: -3},
		{ProductID: 1, Type: MovementSubtraction, QuantityChange: 0},
		{ProductID: 1, Type: MovementAdjustment, QuantityChange: -1},
		{ProductID: 1, Type: MovementType("TRANSFER"), QuantityChange: 5},
		{ProductID: 0, Type: MovementAddition, QuantityChange: 5},
	}
	for _, input := range cases {
		_, err := svc.ApplyMovement(ctx, input)
		require.ErrorIs(t, err, ErrInvalidMovement, "input %+v", input)
	}
	require.Empty(t, repo.movements)
}

func TestApplyMovementCreatesRecordLazily(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})
	ctx := context.Background()

	result, err := svc.ApplyMovement(ctx, MovementInput{ProductID: 7, Type: MovementAddition, QuantityChange: 3})
	require.NoError(t, err)
	require.EqualValues(t, 3, result.Quantity)

	rec, err := svc.GetInventory(ctx, 7)
	require.NoError(t, err)
	require.EqualValues(t, 3, rec.Quantity)
	require.EqualValues(t, 0, rec.ReorderLevel)
}

func TestSubtractionAgainstMissingRecord(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})

	_, err := svc.ApplyMovement(context.Background(), MovementInput{ProductID: 9, Type: MovementSubtraction, QuantityChange: 1})
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestGetInventoryRunsReorderCheck(t *testing.T) {
	repo := newMemoryRepo()
	sink := &captureSink{}
	svc := newTestService(repo, sink)

	seedRecord(repo, 1, 2, 5)

	_, err := svc.GetInventory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sink.alerts, 1)
}

func TestLowStockReportEnrichment(t *testing.T) {
	repo := newMemoryRepo()
	seedRecord(repo, 1, 1, 5)
	seedRecord(repo, 2, 100, 5)

	catalog := staticCatalog{1: {ID: 1, SKU: "SKU-1", Name: "Widget"}}
	monitor := NewReorderMonitor(&captureSink{}, testLogger(), nil)
	svc := NewService(repo, monitor, nil, nil, catalog, testLogger())

	items, err := svc.LowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	require.Equal(t, "Widget", items[0].Product.Name)
}

type staticCatalog map[int64]ProductInfo

func (c staticCatalog) Lookup(ctx context.Context, productID int64) (ProductInfo, error) {
	if info, ok := c[productID]; ok {
		return info, nil
	}
	return ProductInfo{}, ErrRecordNotFound
}
