package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/event-seat-reservation/internal/catalog"
	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
)

// EventStore is the slice of the event repository the services need.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// InventoryStore is the slice of the reservation repository the
// snapshot builder needs: one consistent read of the active
// reservations of an event, at most one per sheet (earliest wins).
type InventoryStore interface {
	ActiveByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error)
}

// InventoryService computes point-in-time inventory snapshots. It
// holds no state beyond its collaborators; every snapshot is built
// fresh from the catalog plus the active reservations.
type InventoryService struct {
	events       EventStore
	reservations InventoryStore
	catalog      *catalog.Catalog
}

// NewInventoryService constructs an InventoryService. All
// dependencies must be non-nil.
func NewInventoryService(events EventStore, reservations InventoryStore, cat *catalog.Catalog) *InventoryService {
	if events == nil || reservations == nil || cat == nil {
		panic("nil dependency passed to NewInventoryService")
	}
	return &InventoryService{events: events, reservations: reservations, catalog: cat}
}

// BuildSnapshot returns the current per-rank remaining counts for an
// event, with per-sheet detail when withDetail is set. viewerID, when
// non-nil, marks the viewer's own reservations as mine in the detail.
// Transient storage errors are retried up to readAttempts times before
// surfacing ErrStorageUnavailable; ErrEventNotFound is never retried.
func (s *InventoryService) BuildSnapshot(ctx context.Context, eventID uint64, viewerID *uint64, withDetail bool) (*model.EventSnapshot, error) {
	var lastErr error
	for attempt := 0; attempt < readAttempts; attempt++ {
		snap, err := s.buildOnce(ctx, eventID, viewerID, withDetail)
		if err == nil {
			return snap, nil
		}
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, lastErr)
}

func (s *InventoryService) buildOnce(ctx context.Context, eventID uint64, viewerID *uint64, withDetail bool) (*model.EventSnapshot, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	snap := &model.EventSnapshot{
		ID:      event.ID,
		Title:   event.Title,
		Total:   catalog.TotalSheets,
		Remains: catalog.TotalSheets,
		Sheets:  make(map[string]*model.RankSnapshot, len(catalog.Ranks)),
		Price:   event.Price,
		Public:  event.Public,
		Closed:  event.Closed,
	}
	for _, rank := range catalog.Ranks {
		capacity := catalog.RankCapacity(rank)
		snap.Sheets[rank] = &model.RankSnapshot{
			Total:   capacity,
			Remains: capacity,
			Price:   event.Price + catalog.RankSurcharge(rank),
		}
	}

	// Seed the detail lists in catalog order; detailIdx maps a sheet id
	// to its position within its rank's list.
	var detailIdx map[uint64]int
	if withDetail {
		detailIdx = make(map[uint64]int, catalog.TotalSheets)
		for _, sheet := range s.catalog.SheetsOrdered() {
			rank := snap.Sheets[sheet.Rank]
			detailIdx[sheet.ID] = len(rank.Detail)
			rank.Detail = append(rank.Detail, model.SheetDetail{
				Num:   sheet.Num,
				Price: event.Price + sheet.Price,
			})
		}
	}

	active, err := s.reservations.ActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, res := range active {
		rank, err := catalog.RankOf(res.SheetID)
		if err != nil {
			return nil, err
		}
		snap.Sheets[rank].Remains--
		snap.Remains--
		if withDetail {
			idx, ok := detailIdx[res.SheetID]
			if !ok {
				return nil, fmt.Errorf("reservation %d references unknown sheet %d", res.ID, res.SheetID)
			}
			detail := &snap.Sheets[rank].Detail[idx]
			detail.Reserved = true
			detail.ReservedAt = res.ReservedAt.UTC().Unix()
			detail.Mine = viewerID != nil && res.UserID == *viewerID
		}
	}
	return snap, nil
}
