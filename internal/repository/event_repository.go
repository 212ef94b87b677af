package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// EventRepo provides access to the events table.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns an EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *EventRepo) DB() *sql.DB { return r.db }

// GetByID fetches one event. It returns ErrEventNotFound when the id
// does not exist.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const query = `SELECT id, title, price, public_fg, closed_fg FROM events WHERE id = ?`
	var ev model.Event
	err := q(ctx, r.db).QueryRowContext(ctx, query, id).
		Scan(&ev.ID, &ev.Title, &ev.Price, &ev.Public, &ev.Closed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// List returns events ordered by id ascending, optionally restricted
// to public ones.
func (r *EventRepo) List(ctx context.Context, onlyPublic bool) ([]model.Event, error) {
	query := `SELECT id, title, price, public_fg, closed_fg FROM events ORDER BY id ASC`
	if onlyPublic {
		query = `SELECT id, title, price, public_fg, closed_fg FROM events WHERE public_fg = 1 ORDER BY id ASC`
	}
	rows, err := q(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Price, &ev.Public, &ev.Closed); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Create inserts a new event. New events are never closed; the public
// flag comes from the admin request.
func (r *EventRepo) Create(ctx context.Context, title string, price uint32, public bool) (uint64, error) {
	const query = `INSERT INTO events (title, public_fg, closed_fg, price) VALUES (?, ?, 0, ?)`
	res, err := q(ctx, r.db).ExecContext(ctx, query, title, public, price)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateFlags transitions the public/closed flags of an event. Title
// and price are immutable after creation.
func (r *EventRepo) UpdateFlags(ctx context.Context, id uint64, public, closed bool) error {
	const query = `UPDATE events SET public_fg = ?, closed_fg = ? WHERE id = ?`
	_, err := q(ctx, r.db).ExecContext(ctx, query, public, closed, id)
	return err
}
