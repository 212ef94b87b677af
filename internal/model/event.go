package model

// Event represents a ticketed event with a fixed pool of 1000 sheets.
// It corresponds to a row in the `events` table. Title and Price are
// immutable after creation; only the public and closed flags transition
// (via the admin edit endpoint).
//
// Fields:
//
//	ID     – primary key identifier.
//	Title  – display title of the event.
//	Price  – base price; each rank adds its surcharge on top.
//	Public – whether the event is visible and reservable by users.
//	Closed – whether sales for the event have ended.
type Event struct {
	ID     uint64 // events.id
	Title  string // events.title
	Price  uint32 // events.price
	Public bool   // events.public_fg
	Closed bool   // events.closed_fg
}
