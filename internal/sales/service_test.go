package sales

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-retail/meridian/internal/inventory"
)

// memoryRepo emulates the transactional repository: all writes inside WithTx
// go to a scratch copy that is merged only when the callback succeeds.
type memoryRepo struct {
	sales     map[int64]Sale
	items     map[int64][]SaleItem
	inventory map[int64]inventory.Record
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		sales:     make(map[int64]Sale),
		items:     make(map[int64][]SaleItem),
		inventory: make(map[int64]inventory.Record),
	}
}

type memoryTx struct {
	repo      *memoryRepo
	sales     map[int64]Sale
	items     map[int64][]SaleItem
	inventory map[int64]inventory.Record
	nextID    int64
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{
		repo:      r,
		sales:     make(map[int64]Sale),
		items:     make(map[int64][]SaleItem),
		inventory: make(map[int64]inventory.Record),
		nextID:    r.nextID,
	}
	for k, v := range r.sales {
		tx.sales[k] = v
	}
	for k, v := range r.items {
		tx.items[k] = append([]SaleItem(nil), v...)
	}
	for k, v := range r.inventory {
		tx.inventory[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.sales = tx.sales
	r.items = tx.items
	r.inventory = tx.inventory
	r.nextID = tx.nextID
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*Sale, error) {
	sale, ok := r.sales[id]
	if !ok {
		return nil, ErrNotFound
	}
	sale.Items = append([]SaleItem(nil), r.items[id]...)
	return &sale, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListSalesFilter) ([]Sale, int, error) {
	var out []Sale
	for _, sale := range r.sales {
		if filter.Status != nil && sale.Status != *filter.Status {
			continue
		}
		out = append(out, sale)
	}
	return out, len(out), nil
}

func (t *memoryTx) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	t.nextID++
	sale.ID = t.nextID
	sale.CreatedAt = time.Now()
	sale.UpdatedAt = sale.CreatedAt
	t.sales[sale.ID] = sale
	return sale, nil
}

func (t *memoryTx) InsertSaleItem(ctx context.Context, item SaleItem) (SaleItem, error) {
	t.nextID++
	item.ID = t.nextID
	t.items[item.SaleID] = append(t.items[item.SaleID], item)
	return item, nil
}

func (t *memoryTx) Inventory() inventory.TxRepository {
	return &ledgerTx{tx: t}
}

// ledgerTx adapts the scratch inventory map to the ledger interface.
type ledgerTx struct {
	tx *memoryTx
}

func (l *ledgerTx) GetRecordForUpdate(ctx context.Context, productID int64) (inventory.Record, error) {
	if rec, ok := l.tx.inventory[productID]; ok {
		return rec, nil
	}
	return inventory.Record{}, inventory.ErrRecordNotFound
}

func (l *ledgerTx) InsertRecord(ctx context.Context, record inventory.Record) (inventory.Record, error) {
	l.tx.nextID++
	record.ID = l.tx.nextID
	l.tx.inventory[record.ProductID] = record
	return record, nil
}

func (l *ledgerTx) UpdateRecordQuantity(ctx context.Context, recordID, quantity int64, updatedAt time.Time) error {
	for productID, rec := range l.tx.inventory {
		if rec.ID == recordID {
			rec.Quantity = quantity
			rec.UpdatedAt = updatedAt
			l.tx.inventory[productID] = rec
			return nil
		}
	}
	return inventory.ErrRecordNotFound
}

func (l *ledgerTx) InsertMovement(ctx context.Context, movement inventory.Movement) (inventory.Movement, error) {
	l.tx.nextID++
	movement.ID = l.tx.nextID
	return movement, nil
}

type captureSink struct {
	alerts []inventory.LowStockAlert
}

func (s *captureSink) NotifyLowStock(ctx context.Context, alert inventory.LowStockAlert) error {
	s.alerts = append(s.alerts, alert)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedInventory(repo *memoryRepo, productID, quantity, reorderLevel int64) {
	repo.nextID++
	repo.inventory[productID] = inventory.Record{
		ID:           repo.nextID,
		ProductID:    productID,
		Quantity:     quantity,
		ReorderLevel: reorderLevel,
	}
}

func newTestService(repo *memoryRepo, sink inventory.NotificationSink) *Service {
	monitor := inventory.NewReorderMonitor(sink, testLogger(), nil)
	return NewService(repo, monitor, nil, testLogger())
}

func oneLineSale(productID, quantity int64) FulfillSaleInput {
	price := decimal.NewFromInt(10)
	total := price.Mul(decimal.NewFromInt(quantity))
	return FulfillSaleInput{
		Subtotal: total,
		Total:    total,
		Items: []FulfillSaleItem{{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: price,
			Subtotal:  total,
		}},
	}
}

func TestFulfillSaleDecrementsStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})
	ctx := context.Background()

	seedInventory(repo, 1, 3, 0)

	sale, err := svc.FulfillSale(ctx, oneLineSale(1, 3))
	require.NoError(t, err)
	require.Equal(t, SaleStatusPending, sale.Status)
	require.Len(t, sale.Items, 1)
	require.EqualValues(t, 0, repo.inventory[1].Quantity)

	// A second identical sale against zero stock fails, and nothing from the
	// failed attempt persists.
	_, err = svc.FulfillSale(ctx, oneLineSale(1, 3))
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	require.Len(t, repo.sales, 1)
	require.EqualValues(t, 0, repo.inventory[1].Quantity)
}

func TestFulfillSaleRollsBackEarlierLines(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})
	ctx := context.Background()

	seedInventory(repo, 1, 10, 0)
	seedInventory(repo, 2, 1, 0)

	input := oneLineSale(1, 5)
	input.Items = append(input.Items, FulfillSaleItem{ProductID: 2, Quantity: 4, UnitPrice: decimal.NewFromInt(10)})

	_, err := svc.FulfillSale(ctx, input)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// The first line's decrement is rolled back with the rest of the unit.
	require.EqualValues(t, 10, repo.inventory[1].Quantity)
	require.EqualValues(t, 1, repo.inventory[2].Quantity)
	require.Empty(t, repo.sales)
	require.Empty(t, repo.items)
}

func TestFulfillSaleUnknownProduct(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})

	_, err := svc.FulfillSale(context.Background(), oneLineSale(99, 1))
	require.ErrorIs(t, err, inventory.ErrRecordNotFound)
	require.Empty(t, repo.sales)
}

func TestFulfillSaleRaisesLowStock(t *testing.T) {
	repo := newMemoryRepo()
	sink := &captureSink{}
	svc := newTestService(repo, sink)

	seedInventory(repo, 1, 10, 5)

	_, err := svc.FulfillSale(context.Background(), oneLineSale(1, 6))
	require.NoError(t, err)
	require.Len(t, sink.alerts, 1)
	require.EqualValues(t, 4, sink.alerts[0].Quantity)
}

func TestFulfillSaleValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})
	ctx := context.Background()

	_, err := svc.FulfillSale(ctx, FulfillSaleInput{})
	require.ErrorIs(t, err, ErrEmptySale)

	input := oneLineSale(1, 1)
	input.Status = SaleStatus("SHIPPED")
	_, err = svc.FulfillSale(ctx, input)
	require.ErrorIs(t, err, ErrInvalidStatus)

	input = oneLineSale(1, 0)
	_, err = svc.FulfillSale(ctx, input)
	require.Error(t, err)
}

func TestFulfillSaleHonoursCallerStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, &captureSink{})

	seedInventory(repo, 1, 5, 0)
	input := oneLineSale(1, 1)
	input.Status = SaleStatusCompleted

	sale, err := svc.FulfillSale(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, SaleStatusCompleted, sale.Status)
}
