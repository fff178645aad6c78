package inventory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/meridian-retail/meridian/internal/shared"
)

func TestMapStorageErrSerializationFailure(t *testing.T) {
	serialization := fmt.Errorf("platform/db: commit tx: %w", &pgconn.PgError{Code: "40001"})
	require.ErrorIs(t, mapStorageErr(serialization), shared.ErrConcurrencyConflict)

	deadlock := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40P01"})
	require.ErrorIs(t, mapStorageErr(deadlock), shared.ErrConcurrencyConflict)
}

func TestMapStorageErrUniqueViolation(t *testing.T) {
	unique := fmt.Errorf("insert record: %w", &pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, mapStorageErr(unique), shared.ErrDuplicate)
}

func TestMapStorageErrPassthrough(t *testing.T) {
	require.NoError(t, mapStorageErr(nil))

	plain := errors.New("context canceled")
	require.Equal(t, plain, mapStorageErr(plain))
}
