package model

// EventSnapshot is a computed, point-in-time view of remaining
// inventory for one event. It is built fresh on every read from the
// catalog plus the currently active reservations and is never stored.
// Remaining counts always satisfy 0 <= Remains <= Total per rank, and
// the event-level Remains equals the sum over ranks.
type EventSnapshot struct {
	ID      uint64                   `json:"id"`
	Title   string                   `json:"title"`
	Total   uint32                   `json:"total"`
	Remains uint32                   `json:"remains"`
	Sheets  map[string]*RankSnapshot `json:"sheets"`
	Price   uint32                   `json:"price"`
	Public  bool                     `json:"public"`
	Closed  bool                     `json:"closed"`
}

// RankSnapshot holds per-rank capacity, remaining count and effective
// price (event base price + rank surcharge). Detail is populated only
// when the caller asked for seat-by-seat state.
type RankSnapshot struct {
	Total   uint32        `json:"total"`
	Remains uint32        `json:"remains"`
	Price   uint32        `json:"price"`
	Detail  []SheetDetail `json:"detail,omitempty"`
}

// SheetDetail is the per-sheet entry of a detailed snapshot.
// ReservedAt is Unix epoch seconds (UTC) and only set when reserved;
// Mine is set when the viewing user owns the active reservation.
type SheetDetail struct {
	Num        uint32 `json:"num"`
	Price      uint32 `json:"price"`
	Mine       bool   `json:"mine,omitempty"`
	Reserved   bool   `json:"reserved"`
	ReservedAt int64  `json:"reserved_at,omitempty"`
}
