package purchasing

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

// memoryRepo emulates the transactional repository: writes inside WithTx go
// to a scratch copy that is merged only when the callback succeeds.
type memoryRepo struct {
	orders    map[int64]PurchaseOrder
	items     map[int64][]PurchaseOrderItem
	inventory map[int64]inventory.Record
	movements []inventory.Movement
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:    make(map[int64]PurchaseOrder),
		items:     make(map[int64][]PurchaseOrderItem),
		inventory: make(map[int64]inventory.Record),
	}
}

type memoryTx struct {
	repo      *memoryRepo
	orders    map[int64]PurchaseOrder
	items     map[int64][]PurchaseOrderItem
	inventory map[int64]inventory.Record
	movements []inventory.Movement
	nextID    int64
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{
		repo:      r,
		orders:    make(map[int64]PurchaseOrder),
		items:     make(map[int64][]PurchaseOrderItem),
		inventory: make(map[int64]inventory.Record),
		movements: append([]inventory.Movement(nil), r.movements...),
		nextID:    r.nextID,
	}
	for k, v := range r.orders {
		tx.orders[k] = v
	}
	for k, v := range r.items {
		tx.items[k] = append([]PurchaseOrderItem(nil), v...)
	}
	for k, v := range r.inventory {
		tx.inventory[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.orders = tx.orders
	r.items = tx.items
	r.inventory = tx.inventory
	r.movements = tx.movements
	r.nextID = tx.nextID
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order.Items = append([]PurchaseOrderItem(nil), r.items[id]...)
	return &order, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListOrdersFilter) ([]PurchaseOrder, int, error) {
	var out []PurchaseOrder
	for _, order := range r.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		out = append(out, order)
	}
	return out, len(out), nil
}

func (t *memoryTx) InsertOrder(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error) {
	t.nextID++
	order.ID = t.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	t.orders[order.ID] = order
	return order, nil
}

func (t *memoryTx) InsertOrderItem(ctx context.Context, item PurchaseOrderItem) (PurchaseOrderItem, error) {
	t.nextID++
	item.ID = t.nextID
	t.items[item.PurchaseOrderID] = append(t.items[item.PurchaseOrderID], item)
	return item, nil
}

func (t *memoryTx) GetOrderForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	order, ok := t.orders[id]
	if !ok {
		return PurchaseOrder{}, ErrNotFound
	}
	order.Items = append([]PurchaseOrderItem(nil), t.items[id]...)
	return order, nil
}

func (t *memoryTx) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus, receivedAt *time.Time) error {
	order, ok := t.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	if receivedAt != nil {
		order.ReceivedAt = receivedAt
	}
	order.UpdatedAt = time.Now()
	t.orders[id] = order
	return nil
}

func (t *memoryTx) Inventory() inventory.TxRepository {
	return &ledgerTx{tx: t}
}

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
	l.tx.movements = append(l.tx.movements, movement)
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

func newTestService(repo *memoryRepo) *Service {
	monitor := inventory.NewReorderMonitor(&captureSink{}, testLogger(), nil)
	return NewService(repo, monitor, nil, nil, testLogger())
}

func ptr(v int64) *int64 { return &v }

func twoLineOrder() CreateOrderInput {
	return CreateOrderInput{
		SupplierID:  ptr(1),
		TotalAmount: decimal.NewFromInt(100),
		Items: []CreateOrderItem{
			{ProductID: ptr(1), Quantity: 4, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: ptr(2), Quantity: 6, UnitPrice: decimal.NewFromInt(10)},
		},
	}
}

func TestCreateOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	order, err := svc.Create(context.Background(), twoLineOrder())
	require.NoError(t, err)
	require.Equal(t, OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)

	_, err = svc.Create(context.Background(), CreateOrderInput{})
	require.ErrorIs(t, err, ErrEmptyOrder)
}

func TestReceiveCreditsStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Product 1 has an existing record; product 2 has none yet.
	repo.nextID++
	repo.inventory[1] = inventory.Record{ID: repo.nextID, ProductID: 1, Quantity: 1, ReorderLevel: 0}

	order, err := svc.Create(ctx, twoLineOrder())
	require.NoError(t, err)

	received, err := svc.Receive(ctx, order.ID, ptr(9))
	require.NoError(t, err)
	require.Equal(t, OrderStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)

	require.EqualValues(t, 5, repo.inventory[1].Quantity)
	// The missing record is created with the received quantity and a zero
	// threshold.
	require.EqualValues(t, 6, repo.inventory[2].Quantity)
	require.EqualValues(t, 0, repo.inventory[2].ReorderLevel)
	require.Len(t, repo.movements, 2)
	for _, m := range repo.movements {
		require.Equal(t, inventory.MovementAddition, m.Type)
		require.EqualValues(t, 9, m.PerformedBy)
	}
}

func TestReceiveTwiceFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, twoLineOrder())
	require.NoError(t, err)

	_, err = svc.Receive(ctx, order.ID, nil)
	require.NoError(t, err)

	_, err = svc.Receive(ctx, order.ID, nil)
	require.ErrorIs(t, err, ErrAlreadyReceived)
	// No double credit.
	require.EqualValues(t, 4, repo.inventory[1].Quantity)
}

func TestReceiveCanceledOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, twoLineOrder())
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, order.ID, nil)
	require.NoError(t, err)

	_, err = svc.Receive(ctx, order.ID, nil)
	require.ErrorIs(t, err, ErrNotReceivable)
	require.Empty(t, repo.inventory)
}

func TestReceiveUnknownOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.Receive(context.Background(), 42, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReceiveSkipsUnlinkedLines(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	input := twoLineOrder()
	input.Items = append(input.Items, CreateOrderItem{ProductID: nil, Quantity: 1, UnitPrice: decimal.NewFromInt(25)})

	order, err := svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = svc.Receive(ctx, order.ID, nil)
	require.NoError(t, err)
	require.Len(t, repo.inventory, 2)
	require.Len(t, repo.movements, 2)
}

func TestCancelReceivedOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, twoLineOrder())
	require.NoError(t, err)

	_, err = svc.Receive(ctx, order.ID, nil)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, order.ID, nil)
	require.ErrorIs(t, err, ErrInvalidState)
}
