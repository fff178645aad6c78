package db

import (
	"errors"
	"fmt"
	"testing"

	pgconnv1 "github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	require.Equal(t, "40001", ErrorCode(&pgconn.PgError{Code: "40001"}))
	require.Equal(t, "40001", ErrorCode(&pgconnv1.PgError{Code: "40001"}))
	require.Equal(t, "", ErrorCode(errors.New("not a pg error")))
	require.Equal(t, "", ErrorCode(nil))

	wrapped := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})
	require.Equal(t, "23505", ErrorCode(wrapped))
}

func TestIsSerializationFailure(t *testing.T) {
	require.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40001"}))
	require.True(t, IsSerializationFailure(&pgconn.PgError{Code: "40P01"}))
	require.True(t, IsSerializationFailure(fmt.Errorf("commit tx: %w", &pgconn.PgError{Code: "40001"})))
	require.True(t, IsSerializationFailure(&pgconnv1.PgError{Code: "40P01"}))
	require.False(t, IsSerializationFailure(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsSerializationFailure(errors.New("context canceled")))
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "40001"}))
}

func TestIsForeignKeyViolation(t *testing.T) {
	require.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
}
