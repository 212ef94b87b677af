// Package queue defines the message payloads exchanged over the
// broker and the publisher/consumer endpoints around them.
package queue

// Queue names. Both are declared durable by publisher and consumer.
const (
	ReservationCreatedQueue  = "reservation.created"
	ReservationCanceledQueue = "reservation.canceled"
)

// ReservationCreatedEvent is published after a seat allocation commits.
// It carries enough for downstream consumers to log or notify without
// querying the primary database. Timestamps are ISO-8601 UTC strings.
type ReservationCreatedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	EventID       uint64 `json:"event_id"`
	EventTitle    string `json:"event_title"`
	UserID        uint64 `json:"user_id"`
	Rank          string `json:"rank"`
	Num           uint32 `json:"num"`
	Price         uint32 `json:"price"`
	ReservedAt    string `json:"reserved_at"`
}

// ReservationCanceledEvent is published after a cancellation commits.
type ReservationCanceledEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	EventID       uint64 `json:"event_id"`
	UserID        uint64 `json:"user_id"`
	Rank          string `json:"rank"`
	Num           uint32 `json:"num"`
	CanceledAt    string `json:"canceled_at"`
}
