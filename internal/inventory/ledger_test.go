package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyDeltaBounds(t *testing.T) {
	repo := newMemoryRepo()
	tx := &memoryTx{repo: repo}
	ctx := context.Background()

	seedRecord(repo, 1, 3, 0)

	_, err := ApplyDelta(ctx, tx, 1, -4)
	require.ErrorIs(t, err, ErrInsufficientStock)

	rec, err := ApplyDelta(ctx, tx, 1, -3)
	require.NoError(t, err)
	require.EqualValues(t, 0, rec.Quantity)
}

func TestApplyDeltaMissingRecord(t *testing.T) {
	repo := newMemoryRepo()
	tx := &memoryTx{repo: repo}
	ctx := context.Background()

	// A positive delta against an unknown product seeds the record.
	rec, err := ApplyDelta(ctx, tx, 5, 7)
	require.NoError(t, err)
	require.EqualValues(t, 7, rec.Quantity)

	_, err = ApplyDelta(ctx, tx, 6, -1)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSetAbsolute(t *testing.T) {
	repo := newMemoryRepo()
	tx := &memoryTx{repo: repo}
	ctx := context.Background()

	_, err := SetAbsolute(ctx, tx, 1, -1)
	require.ErrorIs(t, err, ErrInvalidMovement)

	rec, err := SetAbsolute(ctx, tx, 1, 12)
	require.NoError(t, err)
	require.EqualValues(t, 12, rec.Quantity)

	rec, err = SetAbsolute(ctx, tx, 1, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, rec.Quantity)
}

func TestMonitorSignalsAtOrBelowThreshold(t *testing.T) {
	sink := &captureSink{}
	monitor := NewReorderMonitor(sink, testLogger(), nil)
	ctx := context.Background()

	require.Nil(t, monitor.Check(ctx, Record{ProductID: 1, Quantity: 6, ReorderLevel: 5}))
	require.NotNil(t, monitor.Check(ctx, Record{ProductID: 1, Quantity: 5, ReorderLevel: 5}))
	require.NotNil(t, monitor.Check(ctx, Record{ProductID: 1, Quantity: 0, ReorderLevel: 5}))
	require.Len(t, sink.alerts, 2)
}
