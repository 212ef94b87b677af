package model

// Sheet is one numbered, purchasable seat. Every event shares the same
// fixed pool of 1000 sheets; availability is per event and derived from
// active reservations. The assignment of sheet id to rank and number is
// static, so the whole table is loaded once at startup into the catalog
// and never re-read.
//
// Fields:
//
//	ID    – sheet identifier in [1,1000].
//	Rank  – one of S, A, B, C.
//	Num   – 1-based display number, unique within the rank.
//	Price – rank surcharge added to the event base price.
type Sheet struct {
	ID    uint64 // sheets.id
	Rank  string // sheets.rank
	Num   uint32 // sheets.num
	Price uint32 // sheets.price
}
