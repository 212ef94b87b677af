package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/catalog"
	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
)

// fakeStore is an in-memory stand-in for the MySQL repositories. Its
// WithTx holds a mutex for the whole callback, which serializes
// read-then-write sequences exactly the way the row locks do in
// production, so the concurrency tests exercise the real protocol.
type fakeStore struct {
	mu  sync.Mutex
	cat *catalog.Catalog

	events       map[uint64]model.Event
	reservations []model.Reservation
	nextID       uint64

	readFailures int   // remaining injected read errors
	insertErr    error // injected Insert error
}

var errFakeStorage = errors.New("fake storage down")

func newFakeStore(events ...model.Event) *fakeStore {
	f := &fakeStore{
		cat:    catalog.Standard(),
		events: make(map[uint64]model.Event, len(events)),
	}
	for _, ev := range events {
		f.events[ev.ID] = ev
	}
	return f
}

type fakeTxKey struct{}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(context.WithValue(ctx, fakeTxKey{}, true))
}

// lock acquires the mutex unless the context already runs inside
// WithTx. It returns the matching unlock.
func (f *fakeStore) lock(ctx context.Context) func() {
	if ctx.Value(fakeTxKey{}) != nil {
		return func() {}
	}
	f.mu.Lock()
	return f.mu.Unlock
}

func (f *fakeStore) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	defer f.lock(ctx)()
	ev, ok := f.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &ev, nil
}

// activeBySheetLocked returns the earliest active reservation per
// sheet, mirroring the earliest-wins tie-break of the SQL queries.
// Callers must hold the mutex.
func (f *fakeStore) activeBySheetLocked(eventID uint64) map[uint64]model.Reservation {
	out := make(map[uint64]model.Reservation)
	for _, r := range f.reservations {
		if r.EventID != eventID || r.CanceledAt != nil {
			continue
		}
		cur, ok := out[r.SheetID]
		if !ok || r.ReservedAt.Before(cur.ReservedAt) ||
			(r.ReservedAt.Equal(cur.ReservedAt) && r.ID < cur.ID) {
			out[r.SheetID] = r
		}
	}
	return out
}

func (f *fakeStore) ActiveByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error) {
	defer f.lock(ctx)()
	if f.readFailures > 0 {
		f.readFailures--
		return nil, errFakeStorage
	}
	bySheet := f.activeBySheetLocked(eventID)
	out := make([]model.Reservation, 0, len(bySheet))
	for _, r := range bySheet {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SheetID < out[j].SheetID })
	return out, nil
}

func (f *fakeStore) AvailableSheetIDs(ctx context.Context, eventID uint64, rank string) ([]uint64, error) {
	defer f.lock(ctx)()
	taken := f.activeBySheetLocked(eventID)
	ids := make([]uint64, 0)
	for _, id := range f.cat.SheetIDsOfRank(rank) {
		if _, ok := taken[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeStore) Insert(ctx context.Context, res *model.Reservation) error {
	defer f.lock(ctx)()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	res.ID = f.nextID
	f.reservations = append(f.reservations, *res)
	return nil
}

func (f *fakeStore) ActiveBySheet(ctx context.Context, eventID, sheetID uint64) (*model.Reservation, error) {
	defer f.lock(ctx)()
	r, ok := f.activeBySheetLocked(eventID)[sheetID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeStore) MarkCanceled(ctx context.Context, reservationID uint64, at time.Time) error {
	defer f.lock(ctx)()
	for i := range f.reservations {
		if f.reservations[i].ID == reservationID && f.reservations[i].CanceledAt == nil {
			t := at.UTC()
			f.reservations[i].CanceledAt = &t
			return nil
		}
	}
	return nil
}

func (f *fakeStore) ListRecords(ctx context.Context, eventID *uint64) ([]model.SalesRecord, error) {
	defer f.lock(ctx)()
	if f.readFailures > 0 {
		f.readFailures--
		return nil, errFakeStorage
	}
	records := make([]model.SalesRecord, 0, len(f.reservations))
	for _, r := range f.reservations {
		if eventID != nil && r.EventID != *eventID {
			continue
		}
		sheet, err := f.cat.SheetByID(r.SheetID)
		if err != nil {
			return nil, err
		}
		ev := f.events[r.EventID]
		records = append(records, model.SalesRecord{
			ReservationID: r.ID,
			EventID:       r.EventID,
			Rank:          sheet.Rank,
			Num:           sheet.Num,
			Price:         ev.Price + sheet.Price,
			UserID:        r.UserID,
			SoldAt:        r.ReservedAt,
			CanceledAt:    r.CanceledAt,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].SoldAt.Equal(records[j].SoldAt) {
			return records[i].SoldAt.Before(records[j].SoldAt)
		}
		return records[i].ReservationID < records[j].ReservationID
	})
	return records, nil
}

// seed inserts a reservation row directly, bypassing the allocator.
// Used to set up duplicate-active scenarios for the safety-net tests.
func (f *fakeStore) seed(r model.Reservation) model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.reservations = append(f.reservations, r)
	return r
}
