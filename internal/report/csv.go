// Package report renders sales records into the CSV interchange
// format consumed by the back-office tooling.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// timeLayout renders timestamps as UTC ISO-8601 with microsecond
// precision and a literal Z suffix, e.g. 2026-08-31T12:00:00.000000Z.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// header is the fixed column order. Consumers index by position, so it
// never changes.
var header = []string{
	"reservation_id", "event_id", "rank", "num",
	"price", "user_id", "sold_at", "canceled_at",
}

// WriteCSV streams records to w as CSV, header row first. Canceled
// rows carry their cancellation timestamp; active rows leave the
// canceled_at column empty.
func WriteCSV(w io.Writer, records []model.SalesRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, r := range records {
		canceled := ""
		if r.CanceledAt != nil {
			canceled = r.CanceledAt.UTC().Format(timeLayout)
		}
		row := []string{
			strconv.FormatUint(r.ReservationID, 10),
			strconv.FormatUint(r.EventID, 10),
			r.Rank,
			strconv.FormatUint(uint64(r.Num), 10),
			strconv.FormatUint(uint64(r.Price), 10),
			strconv.FormatUint(r.UserID, 10),
			r.SoldAt.UTC().Format(timeLayout),
			canceled,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row %d: %w", r.ReservationID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
