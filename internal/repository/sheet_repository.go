package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// SheetRepo reads the static sheets table. It is only used once, at
// startup, to build the in-process catalog; all later sheet lookups go
// through the catalog.
type SheetRepo struct {
	db *sql.DB
}

// NewSheetRepo returns a SheetRepo bound to the given database.
func NewSheetRepo(db *sql.DB) *SheetRepo { return &SheetRepo{db: db} }

// LoadAll returns every sheet ordered by (rank, num). The catalog
// constructor validates the shape of the result.
func (r *SheetRepo) LoadAll(ctx context.Context) ([]model.Sheet, error) {
	const query = "SELECT id, `rank`, num, price FROM sheets ORDER BY `rank`, num"
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sheets := make([]model.Sheet, 0, 1000)
	for rows.Next() {
		var s model.Sheet
		if err := rows.Scan(&s.ID, &s.Rank, &s.Num, &s.Price); err != nil {
			return nil, err
		}
		sheets = append(sheets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sheets, nil
}
