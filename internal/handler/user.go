package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-reservation/internal/model"
	"github.com/iliyamo/event-seat-reservation/internal/repository"
	"github.com/iliyamo/event-seat-reservation/internal/service"
)

// recentLimit caps the recent reservation and event lists on the user
// detail page.
const recentLimit = 5

// UserHandler serves the user detail page: recent reservations, total
// spend and recently touched events. Users can only view themselves.
type UserHandler struct {
	Users        *repository.UserRepo
	Events       *repository.EventRepo
	Reservations *repository.ReservationRepo
	Inventory    *service.InventoryService
}

func NewUserHandler(users *repository.UserRepo, events *repository.EventRepo, reservations *repository.ReservationRepo, inv *service.InventoryService) *UserHandler {
	if users == nil || events == nil || reservations == nil || inv == nil {
		panic("nil dependency passed to NewUserHandler")
	}
	return &UserHandler{Users: users, Events: events, Reservations: reservations, Inventory: inv}
}

type userReservationResp struct {
	ID         uint64 `json:"id"`
	EventID    uint64 `json:"event_id"`
	EventTitle string `json:"event_title"`
	SheetRank  string `json:"sheet_rank"`
	SheetNum   uint32 `json:"sheet_num"`
	Price      uint32 `json:"price"`
	ReservedAt int64  `json:"reserved_at"`
	CanceledAt int64  `json:"canceled_at,omitempty"`
}

type userDetailResp struct {
	ID                 uint64                `json:"id"`
	Nickname           string                `json:"nickname"`
	RecentReservations []userReservationResp `json:"recent_reservations"`
	TotalPrice         uint64                `json:"total_price"`
	RecentEvents       []eventResp           `json:"recent_events"`
}

// Get returns the caller's own detail page. Requesting another user's
// id fails with 403 regardless of whether that user exists.
func (h *UserHandler) Get(c echo.Context) error {
	userID, err := paramUint64(c, "id")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	}
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login_required"})
	}
	if uid != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSeconds*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	recent, err := h.Reservations.RecentByUser(ctx, userID, recentLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load reservations failed"})
	}
	titles, err := h.eventTitles(ctx, recent)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load events failed"})
	}
	reservations := make([]userReservationResp, 0, len(recent))
	for _, rec := range recent {
		item := userReservationResp{
			ID:         rec.ReservationID,
			EventID:    rec.EventID,
			EventTitle: titles[rec.EventID],
			SheetRank:  rec.Rank,
			SheetNum:   rec.Num,
			Price:      rec.Price,
			ReservedAt: rec.SoldAt.UTC().Unix(),
		}
		if rec.CanceledAt != nil {
			item.CanceledAt = rec.CanceledAt.UTC().Unix()
		}
		reservations = append(reservations, item)
	}

	total, err := h.Reservations.TotalPriceByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load total failed"})
	}

	eventIDs, err := h.Reservations.RecentEventIDsByUser(ctx, userID, recentLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load events failed"})
	}
	recentEvents := make([]eventResp, 0, len(eventIDs))
	for _, id := range eventIDs {
		snap, err := h.Inventory.BuildSnapshot(ctx, id, nil, false)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "build snapshot failed"})
		}
		recentEvents = append(recentEvents, publicEvent(snap))
	}

	return c.JSON(http.StatusOK, userDetailResp{
		ID:                 u.ID,
		Nickname:           u.Nickname,
		RecentReservations: reservations,
		TotalPrice:         total,
		RecentEvents:       recentEvents,
	})
}

// eventTitles resolves the titles of the events behind a reservation
// list, one lookup per distinct event.
func (h *UserHandler) eventTitles(ctx context.Context, records []model.SalesRecord) (map[uint64]string, error) {
	titles := make(map[uint64]string, len(records))
	for _, rec := range records {
		if _, ok := titles[rec.EventID]; ok {
			continue
		}
		ev, err := h.Events.GetByID(ctx, rec.EventID)
		if err != nil {
			return nil, err
		}
		titles[rec.EventID] = ev.Title
	}
	return titles, nil
}
