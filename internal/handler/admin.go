package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-reservation/internal/report"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
	"github.com/iliyamo/event-seat-reservation/internal/service"
)

// AdminHandler serves the back-office endpoints: event creation, flag
// transitions and the sales reports. All routes require the ADMIN role.
type AdminHandler struct {
	Events    *repository.EventRepo
	Inventory *service.InventoryService
	Reports   *service.ReportService
}

func NewAdminHandler(events *repository.EventRepo, inv *service.InventoryService, rep *service.ReportService) *AdminHandler {
	if events == nil || inv == nil || rep == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Events: events, Inventory: inv, Reports: rep}
}

type createEventReq struct {
	Title  string `json:"title"`
	Price  uint32 `json:"price"`
	Public bool   `json:"public"`
}

type editEventReq struct {
	Public bool `json:"public"`
	Closed bool `json:"closed"`
}

// ListEvents returns every event, hidden and closed ones included,
// with remaining counts.
func (h *AdminHandler) ListEvents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	out := make([]adminEventResp, 0, len(events))
	for _, ev := range events {
		snap, err := h.Inventory.BuildSnapshot(ctx, ev.ID, nil, false)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build snapshot failed"})
		}
		out = append(out, adminEvent(snap))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateEvent inserts a new event. New events always start open for
// sales; closing is a later, one-way transition.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	id, err := h.Events.Create(ctx, req.Title, req.Price, req.Public)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	snap, err := h.Inventory.BuildSnapshot(ctx, id, nil, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build snapshot failed"})
	}
	return c.JSON(http.StatusOK, adminEvent(snap))
}

// GetEvent returns one event with full per-seat detail, flags and
// price included.
func (h *AdminHandler) GetEvent(c echo.Context) error {
	eventID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	snap, err := h.Inventory.BuildSnapshot(ctx, eventID, nil, true)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build snapshot failed"})
	}
	return c.JSON(http.StatusOK, adminEvent(snap))
}

// EditEvent transitions the public/closed flags. A closed event is
// frozen forever, and a public event must be taken private before it
// can be closed.
func (h *AdminHandler) EditEvent(c echo.Context) error {
	eventID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	}
	var req editEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	event, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	if event.Closed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot_edit_closed_event"})
	}
	if event.Public && req.Closed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot_close_public_event"})
	}

	if err := h.Events.UpdateFlags(ctx, eventID, req.Public, req.Closed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	snap, err := h.Inventory.BuildSnapshot(ctx, eventID, nil, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build snapshot failed"})
	}
	return c.JSON(http.StatusOK, adminEvent(snap))
}

// EventSalesReport streams the sales history of one event as CSV.
func (h *AdminHandler) EventSalesReport(c echo.Context) error {
	eventID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	return h.writeReport(c, &eventID)
}

// SalesReport streams the full sales history across all events as CSV.
func (h *AdminHandler) SalesReport(c echo.Context) error {
	return h.writeReport(c, nil)
}

func (h *AdminHandler) writeReport(c echo.Context, eventID *uint64) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	records, err := h.Reports.ListReservations(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "report failed"})
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=UTF-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=report.csv")
	c.Response().WriteHeader(http.StatusOK)
	return report.WriteCSV(c.Response(), records)
}
