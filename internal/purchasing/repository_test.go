package purchasing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/meridian-retail/meridian/internal/shared"
)

func TestMapTxErrSerializationFailure(t *testing.T) {
	serialization := fmt.Errorf("platform/db: commit tx: %w", &pgconn.PgError{Code: "40001"})
	require.ErrorIs(t, mapTxErr(serialization), shared.ErrConcurrencyConflict)

	deadlock := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40P01"})
	require.ErrorIs(t, mapTxErr(deadlock), shared.ErrConcurrencyConflict)
}

func TestMapTxErrPassthrough(t *testing.T) {
	require.NoError(t, mapTxErr(nil))

	plain := errors.New("context canceled")
	require.Equal(t, plain, mapTxErr(plain))
}

// conflictRepo simulates a repository whose transaction lost a serialization
// race against a concurrent writer.
type conflictRepo struct{}

func (conflictRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return mapTxErr(fmt.Errorf("platform/db: commit tx: %w", &pgconn.PgError{Code: "40001"}))
}

func (conflictRepo) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	return nil, ErrNotFound
}

func (conflictRepo) List(ctx context.Context, filter ListOrdersFilter) ([]PurchaseOrder, int, error) {
	return nil, 0, nil
}

func TestReceiveConcurrencyConflict(t *testing.T) {
	svc := NewService(conflictRepo{}, nil, nil, nil, testLogger())

	_, err := svc.Receive(context.Background(), 1, nil)
	require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}
