package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/catalog"
	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// ReservationStore is the slice of the reservation repository the
// allocator and the cancellation path need. WithTx must serialize the
// read-then-write sequences below against concurrent callers touching
// the same event's reservations (FOR UPDATE row locks in the MySQL
// implementation); AvailableSheetIDs and ActiveBySheet are only valid
// inside WithTx.
type ReservationStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	AvailableSheetIDs(ctx context.Context, eventID uint64, rank string) ([]uint64, error)
	Insert(ctx context.Context, res *model.Reservation) error
	ActiveBySheet(ctx context.Context, eventID, sheetID uint64) (*model.Reservation, error)
	MarkCanceled(ctx context.Context, reservationID uint64, at time.Time) error
}

// Allocation is the result of a successful seat allocation.
type Allocation struct {
	ReservationID uint64
	Rank          string
	Num           uint32
	ReservedAt    time.Time
}

// ReservationService allocates and cancels seats. Both operations run
// a single small transaction and are never retried internally: a
// storage failure rolls back fully and surfaces ErrStorageUnavailable,
// leaving the caller to decide whether to re-issue the request.
type ReservationService struct {
	store   ReservationStore
	catalog *catalog.Catalog
	clock   Clock
	intn    func(n int) int
}

// ReservationOption customizes a ReservationService.
type ReservationOption func(*ReservationService)

// WithRand replaces the random sheet picker. intn must return a value
// in [0,n); tests inject a seeded generator for determinism.
func WithRand(intn func(n int) int) ReservationOption {
	return func(s *ReservationService) {
		if intn != nil {
			s.intn = intn
		}
	}
}

// NewReservationService constructs a ReservationService. The default
// picker is math/rand's shared source, which is safe for concurrent
// use.
func NewReservationService(store ReservationStore, cat *catalog.Catalog, clk Clock, opts ...ReservationOption) *ReservationService {
	if store == nil || cat == nil || clk == nil {
		panic("nil dependency passed to NewReservationService")
	}
	s := &ReservationService{store: store, catalog: cat, clock: clk, intn: rand.Intn}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allocate reserves one currently-unreserved sheet of the given rank
// for the user and returns its reservation id, rank and display
// number. The sheet is chosen uniformly at random from the free set —
// never lowest-id-first, which would give clients a predictable
// allocation order to game. Fails with ErrInvalidRank or ErrSoldOut;
// on ErrSoldOut no state is mutated.
func (s *ReservationService) Allocate(ctx context.Context, eventID uint64, rank string, userID uint64) (*Allocation, error) {
	if !catalog.IsValidRank(rank) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRank, rank)
	}

	var reserved model.Reservation
	err := s.store.WithTx(ctx, func(ctx context.Context) error {
		available, err := s.store.AvailableSheetIDs(ctx, eventID, rank)
		if err != nil {
			return err
		}
		if len(available) == 0 {
			return ErrSoldOut
		}
		reserved = model.Reservation{
			EventID:    eventID,
			SheetID:    available[s.intn(len(available))],
			UserID:     userID,
			ReservedAt: s.clock.Now(),
		}
		return s.store.Insert(ctx, &reserved)
	})
	if err != nil {
		if errors.Is(err, ErrSoldOut) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	sheet, err := s.catalog.SheetByID(reserved.SheetID)
	if err != nil {
		return nil, err
	}
	return &Allocation{
		ReservationID: reserved.ID,
		Rank:          sheet.Rank,
		Num:           sheet.Num,
		ReservedAt:    reserved.ReservedAt,
	}, nil
}

// Cancel marks the user's active reservation on (rank, num) as
// canceled and returns its id. The row is never deleted; the sheet
// becomes immediately eligible for re-allocation once the transaction
// commits. Fails with ErrInvalidRank, catalog.ErrSheetNotFound,
// ErrNotReserved or ErrNotPermitted; on any failure no state is
// mutated.
func (s *ReservationService) Cancel(ctx context.Context, eventID uint64, rank string, num uint32, userID uint64) (uint64, error) {
	if !catalog.IsValidRank(rank) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRank, rank)
	}
	sheet, err := s.catalog.SheetByRankNum(rank, num)
	if err != nil {
		return 0, err
	}

	var canceledID uint64
	err = s.store.WithTx(ctx, func(ctx context.Context) error {
		active, err := s.store.ActiveBySheet(ctx, eventID, sheet.ID)
		if err != nil {
			return err
		}
		if active == nil {
			return ErrNotReserved
		}
		if active.UserID != userID {
			return ErrNotPermitted
		}
		canceledID = active.ID
		return s.store.MarkCanceled(ctx, active.ID, s.clock.Now())
	})
	if err != nil {
		if errors.Is(err, ErrNotReserved) || errors.Is(err, ErrNotPermitted) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return canceledID, nil
}
