package handler // handler defines the HTTP layer over the reservation services

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-seat-reservation/internal/middleware"
	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// dbTimeoutSeconds bounds every database call made from a handler.
const dbTimeoutSeconds = 5

// currentUserID returns the authenticated user id from the context.
// Routes behind JWTAuth always have one; (0, false) means anonymous.
func currentUserID(c echo.Context) (uint64, bool) {
	return middleware.UserID(c)
}

// paramUint64 parses a numeric path parameter.
func paramUint64(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// paramUint32 parses a numeric path parameter that must fit 32 bits,
// so oversized values fail here instead of aliasing after truncation.
func paramUint32(c echo.Context, name string) (uint32, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint32(v), err
}

// eventResp is the public rendering of an event snapshot: inventory
// only, no pricing flags. Anonymous browsers never learn whether an
// event is closed or still hidden.
type eventResp struct {
	ID      uint64                         `json:"id"`
	Title   string                         `json:"title"`
	Total   uint32                         `json:"total"`
	Remains uint32                         `json:"remains"`
	Sheets  map[string]*model.RankSnapshot `json:"sheets"`
}

// adminEventResp is the back-office rendering: everything the public
// one has plus base price and the visibility flags.
type adminEventResp struct {
	eventResp
	Price  uint32 `json:"price"`
	Public bool   `json:"public"`
	Closed bool   `json:"closed"`
}

func publicEvent(snap *model.EventSnapshot) eventResp {
	return eventResp{
		ID:      snap.ID,
		Title:   snap.Title,
		Total:   snap.Total,
		Remains: snap.Remains,
		Sheets:  snap.Sheets,
	}
}

func adminEvent(snap *model.EventSnapshot) adminEventResp {
	return adminEventResp{
		eventResp: publicEvent(snap),
		Price:     snap.Price,
		Public:    snap.Public,
		Closed:    snap.Closed,
	}
}
