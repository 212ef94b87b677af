package model

import "time"

// Reservation records one user's claim on one sheet for one event.
// A reservation is active while CanceledAt is nil. Rows are never
// deleted: cancellation sets CanceledAt exactly once, and a sheet may
// be reserved, canceled and re-reserved arbitrarily many times, so the
// table doubles as the full sales history.
//
// Invariant: for a given (event, sheet) at most one reservation is
// active at any time. The allocator and the cancellation path uphold
// this with FOR UPDATE reads inside a transaction.
//
// Fields:
//
//	ID         – primary key identifier.
//	EventID    – event being reserved.
//	SheetID    – sheet being reserved.
//	UserID     – owner of the reservation.
//	ReservedAt – when the reservation was made (UTC, microsecond precision).
//	CanceledAt – when it was canceled (nil while active).
type Reservation struct {
	ID         uint64     // reservations.id
	EventID    uint64     // reservations.event_id
	SheetID    uint64     // reservations.sheet_id
	UserID     uint64     // reservations.user_id
	ReservedAt time.Time  // reservations.reserved_at
	CanceledAt *time.Time // reservations.canceled_at (nullable)
}

// Active reports whether the reservation still holds its sheet.
func (r *Reservation) Active() bool { return r.CanceledAt == nil }

// SalesRecord is one row of the sales report: a reservation joined with
// its sheet and event pricing. Price is event base price plus the rank
// surcharge at query time; prices are not historized, so later price
// edits retroactively change reported prices for past sales.
type SalesRecord struct {
	ReservationID uint64
	EventID       uint64
	Rank          string
	Num           uint32
	Price         uint32
	UserID        uint64
	SoldAt        time.Time
	CanceledAt    *time.Time
}
