package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

func TestListReservationsIncludesCanceledAndOrders(t *testing.T) {
	store := newFakeStore(
		model.Event{ID: 1, Title: "gig", Price: 1000},
		model.Event{ID: 2, Title: "expo", Price: 500},
	)
	res := newTestReservationService(store)
	ctx := context.Background()

	// Seed out of chronological order to exercise the sort.
	store.seed(model.Reservation{
		EventID: 2, SheetID: 501, UserID: 9, ReservedAt: testTime.Add(2 * time.Hour),
	})
	first, err := res.Allocate(ctx, 1, "S", 7)
	require.NoError(t, err)
	canceledID, err := res.Cancel(ctx, 1, "S", first.Num, 7)
	require.NoError(t, err)
	require.Equal(t, first.ReservationID, canceledID)

	svc := NewReportService(store)
	records, err := svc.ListReservations(ctx, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Canceled rows stay in the report.
	sold := records[0]
	assert.Equal(t, uint64(1), sold.EventID)
	assert.Equal(t, "S", sold.Rank)
	assert.Equal(t, first.Num, sold.Num)
	assert.Equal(t, uint32(6000), sold.Price)
	assert.Equal(t, uint64(7), sold.UserID)
	assert.True(t, sold.SoldAt.Equal(testTime))
	require.NotNil(t, sold.CanceledAt)
	assert.True(t, sold.CanceledAt.Equal(testTime))

	assert.True(t, records[1].SoldAt.After(records[0].SoldAt), "ordered by sale time ascending")
	assert.Nil(t, records[1].CanceledAt)
}

func TestListReservationsEventFilter(t *testing.T) {
	store := newFakeStore(
		model.Event{ID: 1, Title: "gig", Price: 1000},
		model.Event{ID: 2, Title: "expo", Price: 500},
	)
	res := newTestReservationService(store)
	ctx := context.Background()

	_, err := res.Allocate(ctx, 1, "A", 7)
	require.NoError(t, err)
	_, err = res.Allocate(ctx, 2, "C", 8)
	require.NoError(t, err)

	svc := NewReportService(store)
	eventID := uint64(2)
	records, err := svc.ListReservations(ctx, &eventID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(2), records[0].EventID)
	assert.Equal(t, "C", records[0].Rank)
	assert.Equal(t, uint32(500), records[0].Price)
}

func TestListReservationsRetriesTransientReads(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	svc := NewReportService(store)

	store.readFailures = 2
	records, err := svc.ListReservations(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	store.readFailures = 3
	_, err = svc.ListReservations(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}
