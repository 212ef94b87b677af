package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-reservation/internal/catalog"
	"github.com/iliyamo/event-seat-reservation/internal/queue"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
	"github.com/iliyamo/event-seat-reservation/internal/service"
)

// eventTimeLayout renders broker event timestamps.
const eventTimeLayout = "2006-01-02T15:04:05.000000Z"

// EventHandler serves the public browse endpoints plus reservation and
// cancellation for authenticated users.
type EventHandler struct {
	Events       *repository.EventRepo
	Inventory    *service.InventoryService
	Reservations *service.ReservationService
	Catalog      *catalog.Catalog
	Publisher    *queue.Publisher
}

func NewEventHandler(events *repository.EventRepo, inv *service.InventoryService, res *service.ReservationService, cat *catalog.Catalog, pub *queue.Publisher) *EventHandler {
	if events == nil || inv == nil || res == nil || cat == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Inventory: inv, Reservations: res, Catalog: cat, Publisher: pub}
}

// List returns every public event with per-rank remaining counts, no
// per-seat detail.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	out := make([]eventResp, 0, len(events))
	for _, ev := range events {
		snap, err := h.Inventory.BuildSnapshot(ctx, ev.ID, nil, false)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build snapshot failed"})
		}
		out = append(out, publicEvent(snap))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one public event with full per-seat detail. When the
// caller presented a valid token, their own seats are flagged mine.
func (h *EventHandler) Get(c echo.Context) error {
	eventID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_event"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	var viewer *uint64
	if uid, ok := currentUserID(c); ok {
		viewer = &uid
	}
	snap, err := h.Inventory.BuildSnapshot(ctx, eventID, viewer, true)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_event"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build snapshot failed"})
	}
	if !snap.Public {
		// Hidden events are indistinguishable from missing ones.
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_event"})
	}
	return c.JSON(http.StatusOK, publicEvent(snap))
}

type reserveReq struct {
	Rank string `json:"sheet_rank"`
}

// Reserve allocates one random free sheet of the requested rank.
func (h *EventHandler) Reserve(c echo.Context) error {
	eventID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_event"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login_required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	event, err := h.Events.GetByID(ctx, eventID)
	if err != nil || !event.Public {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_event"})
	}

	alloc, err := h.Reservations.Allocate(ctx, eventID, req.Rank, uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRank):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_rank"})
		case errors.Is(err, service.ErrSoldOut):
			return c.JSON(http.StatusConflict, echo.Map{"error": "sold_out"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "reserve failed"})
	}

	h.Publisher.PublishReservationCreated(ctx, queue.ReservationCreatedEvent{
		ReservationID: alloc.ReservationID,
		EventID:       event.ID,
		EventTitle:    event.Title,
		UserID:        uid,
		Rank:          alloc.Rank,
		Num:           alloc.Num,
		Price:         event.Price + catalog.RankSurcharge(alloc.Rank),
		ReservedAt:    alloc.ReservedAt.UTC().Format(eventTimeLayout),
	})

	return c.JSON(http.StatusAccepted, echo.Map{
		"id":         alloc.ReservationID,
		"sheet_rank": alloc.Rank,
		"sheet_num":  alloc.Num,
	})
}

// Cancel releases the caller's active reservation on one sheet.
func (h *EventHandler) Cancel(c echo.Context) error {
	eventID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_event"})
	}
	rank := c.Param("rank")
	num, err := paramUint32(c, "num")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_sheet"})
	}
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login_required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	event, err := h.Events.GetByID(ctx, eventID)
	if err != nil || !event.Public {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_event"})
	}

	canceledID, err := h.Reservations.Cancel(ctx, eventID, rank, num, uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRank):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_rank"})
		case errors.Is(err, catalog.ErrSheetNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid_sheet"})
		case errors.Is(err, service.ErrNotReserved):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "not_reserved"})
		case errors.Is(err, service.ErrNotPermitted):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not_permitted"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "cancel failed"})
	}

	h.Publisher.PublishReservationCanceled(ctx, queue.ReservationCanceledEvent{
		ReservationID: canceledID,
		EventID:       event.ID,
		UserID:        uid,
		Rank:          rank,
		Num:           num,
		CanceledAt:    time.Now().UTC().Format(eventTimeLayout),
	})

	return c.NoContent(http.StatusNoContent)
}
