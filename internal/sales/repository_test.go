package sales

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
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

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	require.Equal(t, unique, mapTxErr(unique))
}

// conflictRepo simulates a repository whose transaction lost a serialization
// race against a concurrent writer.
type conflictRepo struct{}

func (conflictRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return mapTxErr(fmt.Errorf("platform/db: commit tx: %w", &pgconn.PgError{Code: "40001"}))
}

func (conflictRepo) Get(ctx context.Context, id int64) (*Sale, error) {
	return nil, ErrNotFound
}

func (conflictRepo) List(ctx context.Context, filter ListSalesFilter) ([]Sale, int, error) {
	return nil, 0, nil
}

func TestFulfillConcurrencyConflict(t *testing.T) {
	svc := NewService(conflictRepo{}, nil, nil, testLogger())

	_, err := svc.FulfillSale(context.Background(), oneLineSale(1, 1))
	require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestFulfillHandlerMapsConflictTo409(t *testing.T) {
	svc := NewService(conflictRepo{}, nil, nil, testLogger())
	handler := NewHandler(testLogger(), svc)

	r := chi.NewRouter()
	r.Route("/sales", handler.MountRoutes)

	body := `{"items":[{"product_id":1,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/sales/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}
