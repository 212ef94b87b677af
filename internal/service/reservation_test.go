package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-reservation/internal/catalog"
	"github.com/iliyamo/event-seat-reservation/internal/model"
)

var testTime = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestReservationService(store *fakeStore, opts ...ReservationOption) *ReservationService {
	return NewReservationService(store, catalog.Standard(), FixedClock(testTime), opts...)
}

func TestAllocateInvalidRank(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 1000})
	svc := newTestReservationService(store)

	for _, rank := range []string{"", "D", "s", "SS"} {
		_, err := svc.Allocate(context.Background(), 1, rank, 7)
		assert.ErrorIs(t, err, ErrInvalidRank, "rank %q", rank)
	}
	assert.Empty(t, store.reservations)
}

func TestAllocatePicksFromFreeSet(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 1000})
	rng := rand.New(rand.NewSource(42))
	svc := newTestReservationService(store, WithRand(rng.Intn))

	alloc, err := svc.Allocate(context.Background(), 1, "S", 7)
	require.NoError(t, err)
	assert.Equal(t, "S", alloc.Rank)
	assert.NotZero(t, alloc.ReservationID)
	assert.GreaterOrEqual(t, alloc.Num, uint32(1))
	assert.LessOrEqual(t, alloc.Num, uint32(50))

	require.Len(t, store.reservations, 1)
	row := store.reservations[0]
	assert.Equal(t, uint64(1), row.EventID)
	assert.Equal(t, uint64(7), row.UserID)
	assert.True(t, row.ReservedAt.Equal(testTime))
	assert.Nil(t, row.CanceledAt)
}

func TestAllocateSecondPickSkipsTakenSheet(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	// Always pick index 0 so the second call would collide if the
	// free set were not recomputed.
	svc := newTestReservationService(store, WithRand(func(n int) int { return 0 }))

	first, err := svc.Allocate(context.Background(), 1, "A", 7)
	require.NoError(t, err)
	second, err := svc.Allocate(context.Background(), 1, "A", 8)
	require.NoError(t, err)
	assert.NotEqual(t, first.Num, second.Num)
}

func TestAllocateSoldOut(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	svc := newTestReservationService(store)

	capS := int(catalog.RankCapacity("S"))
	for i := 0; i < capS; i++ {
		_, err := svc.Allocate(context.Background(), 1, "S", uint64(i+1))
		require.NoError(t, err)
	}
	_, err := svc.Allocate(context.Background(), 1, "S", 999)
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Len(t, store.reservations, capS)

	// Other ranks are unaffected.
	_, err = svc.Allocate(context.Background(), 1, "A", 999)
	assert.NoError(t, err)
}

func TestAllocateConcurrentExactlyFillsRank(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	svc := newTestReservationService(store)

	const callers = 80
	capS := int(catalog.RankCapacity("S"))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		allocs   []*Allocation
		soldOuts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			alloc, err := svc.Allocate(context.Background(), 1, "S", userID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				allocs = append(allocs, alloc)
			case assert.ErrorIs(t, err, ErrSoldOut):
				soldOuts++
			}
		}(uint64(i + 1))
	}
	wg.Wait()

	assert.Len(t, allocs, capS)
	assert.Equal(t, callers-capS, soldOuts)

	seen := make(map[uint32]bool, capS)
	for _, a := range allocs {
		assert.False(t, seen[a.Num], "sheet S-%d allocated twice", a.Num)
		seen[a.Num] = true
	}
}

func TestAllocateStorageFailure(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	store.insertErr = errFakeStorage
	svc := newTestReservationService(store)

	_, err := svc.Allocate(context.Background(), 1, "S", 7)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Empty(t, store.reservations, "failed allocation must not persist a row")
}

func TestCancelFlow(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	svc := newTestReservationService(store)

	alloc, err := svc.Allocate(context.Background(), 1, "B", 7)
	require.NoError(t, err)

	// Wrong owner leaves the reservation active.
	_, err = svc.Cancel(context.Background(), 1, "B", alloc.Num, 8)
	assert.ErrorIs(t, err, ErrNotPermitted)
	assert.Nil(t, store.reservations[0].CanceledAt)

	canceledID, err := svc.Cancel(context.Background(), 1, "B", alloc.Num, 7)
	require.NoError(t, err)
	assert.Equal(t, alloc.ReservationID, canceledID)
	require.NotNil(t, store.reservations[0].CanceledAt)
	assert.True(t, store.reservations[0].CanceledAt.Equal(testTime))

	// Second cancel of the same sheet.
	_, err = svc.Cancel(context.Background(), 1, "B", alloc.Num, 7)
	assert.ErrorIs(t, err, ErrNotReserved)
}

func TestCancelValidation(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	svc := newTestReservationService(store)

	_, err := svc.Cancel(context.Background(), 1, "X", 1, 7)
	assert.ErrorIs(t, err, ErrInvalidRank)

	// S has 50 sheets; num 51 does not exist.
	_, err = svc.Cancel(context.Background(), 1, "S", 51, 7)
	assert.ErrorIs(t, err, catalog.ErrSheetNotFound)

	// Valid sheet, never reserved.
	_, err = svc.Cancel(context.Background(), 1, "C", 100, 7)
	assert.ErrorIs(t, err, ErrNotReserved)
}

func TestCancelFreesSheetForReallocation(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	svc := newTestReservationService(store)

	for i := 0; i < int(catalog.RankCapacity("S")); i++ {
		_, err := svc.Allocate(context.Background(), 1, "S", 7)
		require.NoError(t, err)
	}
	_, err := svc.Allocate(context.Background(), 1, "S", 8)
	require.ErrorIs(t, err, ErrSoldOut)

	_, err = svc.Cancel(context.Background(), 1, "S", 13, 7)
	require.NoError(t, err)

	alloc, err := svc.Allocate(context.Background(), 1, "S", 8)
	require.NoError(t, err)
	assert.Equal(t, uint32(13), alloc.Num, "only the canceled sheet is free")
}

func TestCancelTargetsEarliestActiveDuplicate(t *testing.T) {
	store := newFakeStore(model.Event{ID: 1, Title: "gig", Price: 0})
	cat := catalog.Standard()
	sheet, err := cat.SheetByRankNum("A", 10)
	require.NoError(t, err)

	// Two active rows on one sheet, as left behind by a historical
	// race. The earlier one owns the sheet.
	early := store.seed(model.Reservation{
		EventID: 1, SheetID: sheet.ID, UserID: 7, ReservedAt: testTime,
	})
	late := store.seed(model.Reservation{
		EventID: 1, SheetID: sheet.ID, UserID: 8, ReservedAt: testTime.Add(time.Minute),
	})

	svc := newTestReservationService(store)
	_, err = svc.Cancel(context.Background(), 1, "A", 10, 8)
	assert.ErrorIs(t, err, ErrNotPermitted, "later duplicate holder does not own the sheet")

	canceledID, err := svc.Cancel(context.Background(), 1, "A", 10, 7)
	require.NoError(t, err)
	assert.Equal(t, early.ID, canceledID)
	for _, r := range store.reservations {
		switch r.ID {
		case early.ID:
			assert.NotNil(t, r.CanceledAt)
		case late.ID:
			assert.Nil(t, r.CanceledAt)
		}
	}
}
