package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// ReservationRepo provides access to the reservations table, the
// single source of truth for seat availability. Mutating callers wrap
// their read-then-write sequences in WithTx; the FOR UPDATE variants
// below block concurrent writers touching the same event so that two
// allocations can never claim one sheet and an allocation racing a
// cancellation resolves to one consistent outcome.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// WithTx runs fn inside a transaction carried on the context. All
// repository methods invoked from fn join that transaction. fn's error
// rolls everything back; otherwise the transaction commits when fn
// returns.
func (r *ReservationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// ActiveByEvent returns the active reservations of an event, at most
// one per sheet. Should duplicate active rows ever exist for a sheet,
// the earliest reserved_at wins; this is an invariant-repair safety
// net, not the primary correctness mechanism (that is the FOR UPDATE
// discipline in the write paths).
func (r *ReservationRepo) ActiveByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error) {
	const query = `SELECT r.id, r.event_id, r.sheet_id, r.user_id, r.reserved_at
                   FROM reservations r
                   JOIN (
                       SELECT sheet_id, MIN(reserved_at) AS first_reserved_at
                       FROM reservations
                       WHERE event_id = ? AND canceled_at IS NULL
                       GROUP BY sheet_id
                   ) f ON f.sheet_id = r.sheet_id AND f.first_reserved_at = r.reserved_at
                   WHERE r.event_id = ? AND r.canceled_at IS NULL
                   ORDER BY r.sheet_id ASC, r.id ASC`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, eventID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reservations := make([]model.Reservation, 0)
	var lastSheet uint64
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.EventID, &res.SheetID, &res.UserID, &res.ReservedAt); err != nil {
			return nil, err
		}
		// Equal reserved_at on one sheet would produce two rows; keep
		// the lowest id.
		if len(reservations) > 0 && res.SheetID == lastSheet {
			continue
		}
		lastSheet = res.SheetID
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

// AvailableSheetIDs returns the ids of all sheets of a rank with no
// active reservation for the event. Must run inside WithTx: the inner
// FOR UPDATE locks the event's active reservation rows against
// concurrent allocators until the caller commits.
func (r *ReservationRepo) AvailableSheetIDs(ctx context.Context, eventID uint64, rank string) ([]uint64, error) {
	const query = "SELECT s.id FROM sheets s" +
		" WHERE s.id NOT IN (" +
		"     SELECT sheet_id FROM reservations" +
		"     WHERE event_id = ? AND canceled_at IS NULL" +
		"     FOR UPDATE" +
		" ) AND s.`rank` = ?" +
		" ORDER BY s.id ASC"
	rows, err := q(ctx, r.db).QueryContext(ctx, query, eventID, rank)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Insert persists a new active reservation and populates its ID.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
	const query = `INSERT INTO reservations (event_id, sheet_id, user_id, reserved_at) VALUES (?, ?, ?, ?)`
	result, err := q(ctx, r.db).ExecContext(ctx, query,
		res.EventID, res.SheetID, res.UserID, res.ReservedAt.UTC())
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// ActiveBySheet returns the active reservation for (event, sheet) with
// the earliest reserved_at, locked FOR UPDATE, or (nil, nil) when the
// sheet is free. Must run inside WithTx. The earliest-wins tie-break
// matches ActiveByEvent so a cancellation always removes the same row
// the snapshot counts.
func (r *ReservationRepo) ActiveBySheet(ctx context.Context, eventID, sheetID uint64) (*model.Reservation, error) {
	const query = `SELECT id, event_id, sheet_id, user_id, reserved_at
                   FROM reservations
                   WHERE event_id = ? AND sheet_id = ? AND canceled_at IS NULL
                   ORDER BY reserved_at ASC, id ASC
                   LIMIT 1
                   FOR UPDATE`
	var res model.Reservation
	err := q(ctx, r.db).QueryRowContext(ctx, query, eventID, sheetID).
		Scan(&res.ID, &res.EventID, &res.SheetID, &res.UserID, &res.ReservedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// MarkCanceled stamps canceled_at on a reservation. The guard on
// canceled_at keeps the stamp write-once: rows are never deleted and a
// cancellation is never unset.
func (r *ReservationRepo) MarkCanceled(ctx context.Context, reservationID uint64, at time.Time) error {
	const query = `UPDATE reservations SET canceled_at = ? WHERE id = ? AND canceled_at IS NULL`
	_, err := q(ctx, r.db).ExecContext(ctx, query, at.UTC(), reservationID)
	return err
}

// ListRecords returns the full sales history (sold and canceled rows)
// joined with sheet and event pricing, ordered by reserved_at
// ascending. A nil eventID covers all events. The read is consistent
// but takes no exclusive locks, so long reports do not starve
// allocation traffic.
func (r *ReservationRepo) ListRecords(ctx context.Context, eventID *uint64) ([]model.SalesRecord, error) {
	query := "SELECT r.id, r.event_id, s.`rank`, s.num, e.price + s.price, r.user_id, r.reserved_at, r.canceled_at" +
		" FROM reservations r" +
		" INNER JOIN sheets s ON s.id = r.sheet_id" +
		" INNER JOIN events e ON e.id = r.event_id"
	args := make([]interface{}, 0, 1)
	if eventID != nil {
		query += " WHERE r.event_id = ?"
		args = append(args, *eventID)
	}
	query += " ORDER BY r.reserved_at ASC, r.id ASC"
	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]model.SalesRecord, 0)
	for rows.Next() {
		var rec model.SalesRecord
		var canceledAt sql.NullTime
		if err := rows.Scan(&rec.ReservationID, &rec.EventID, &rec.Rank, &rec.Num,
			&rec.Price, &rec.UserID, &rec.SoldAt, &canceledAt); err != nil {
			return nil, err
		}
		if canceledAt.Valid {
			t := canceledAt.Time
			rec.CanceledAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// RecentByUser returns the user's most recent reservations (active or
// canceled) joined with sheet and event data, newest activity first.
// Activity time is canceled_at when set, else reserved_at.
func (r *ReservationRepo) RecentByUser(ctx context.Context, userID uint64, limit int) ([]model.SalesRecord, error) {
	const query = "SELECT r.id, r.event_id, s.`rank`, s.num, e.price + s.price, r.user_id, r.reserved_at, r.canceled_at" +
		" FROM reservations r" +
		" INNER JOIN sheets s ON s.id = r.sheet_id" +
		" INNER JOIN events e ON e.id = r.event_id" +
		" WHERE r.user_id = ?" +
		" ORDER BY IFNULL(r.canceled_at, r.reserved_at) DESC" +
		" LIMIT ?"
	rows, err := q(ctx, r.db).QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]model.SalesRecord, 0, limit)
	for rows.Next() {
		var rec model.SalesRecord
		var canceledAt sql.NullTime
		if err := rows.Scan(&rec.ReservationID, &rec.EventID, &rec.Rank, &rec.Num,
			&rec.Price, &rec.UserID, &rec.SoldAt, &canceledAt); err != nil {
			return nil, err
		}
		if canceledAt.Valid {
			t := canceledAt.Time
			rec.CanceledAt = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// TotalPriceByUser sums the price of the user's active reservations.
func (r *ReservationRepo) TotalPriceByUser(ctx context.Context, userID uint64) (uint64, error) {
	const query = `SELECT IFNULL(SUM(e.price + s.price), 0)
                   FROM reservations r
                   INNER JOIN sheets s ON s.id = r.sheet_id
                   INNER JOIN events e ON e.id = r.event_id
                   WHERE r.user_id = ? AND r.canceled_at IS NULL`
	var total uint64
	err := q(ctx, r.db).QueryRowContext(ctx, query, userID).Scan(&total)
	return total, err
}

// RecentEventIDsByUser returns the ids of the events the user touched
// most recently, newest first.
func (r *ReservationRepo) RecentEventIDsByUser(ctx context.Context, userID uint64, limit int) ([]uint64, error) {
	const query = `SELECT event_id
                   FROM reservations
                   WHERE user_id = ?
                   GROUP BY event_id
                   ORDER BY MAX(IFNULL(canceled_at, reserved_at)) DESC
                   LIMIT ?`
	rows, err := q(ctx, r.db).QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0, limit)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
