// Package catalog holds the immutable sheet catalog: the static
// assignment of sheet id to rank, display number and rank surcharge.
// The catalog is loaded once at process start and injected into every
// component that needs it; after construction it is read-only and safe
// for unsynchronized concurrent reads.
package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

// ErrInvalidSheetID is returned when a sheet id falls outside [1,1000].
var ErrInvalidSheetID = errors.New("invalid sheet id")

// ErrSheetNotFound is returned when no sheet matches a (rank, num) pair.
var ErrSheetNotFound = errors.New("sheet not found")

// Ranks lists the four sheet ranks in display order.
var Ranks = []string{"S", "A", "B", "C"}

// TotalSheets is the fixed pool size every event shares.
const TotalSheets = 1000

// Ranks partition sheet ids into contiguous bands. The boundaries are
// derived, not stored, and are load-bearing: RankOf and the snapshot
// math both depend on them.
var rankBands = map[string]struct{ lo, hi uint64 }{
	"S": {1, 50},
	"A": {51, 200},
	"B": {201, 500},
	"C": {501, 1000},
}

// rankSurcharges is the fixed price added on top of an event's base
// price for each rank.
var rankSurcharges = map[string]uint32{"S": 5000, "A": 3000, "B": 1000, "C": 0}

// Catalog is the loaded, immutable sheet reference data.
type Catalog struct {
	byID      map[uint64]model.Sheet
	byRankNum map[string]map[uint32]model.Sheet
	ordered   []model.Sheet
}

// New builds a catalog from the sheets loaded out of storage. It
// rejects anything other than the complete, well-banded 1000-sheet
// pool: a partially loaded catalog would silently corrupt every
// remaining-count computation downstream.
func New(sheets []model.Sheet) (*Catalog, error) {
	if len(sheets) != TotalSheets {
		return nil, fmt.Errorf("catalog: expected %d sheets, got %d", TotalSheets, len(sheets))
	}
	c := &Catalog{
		byID:      make(map[uint64]model.Sheet, len(sheets)),
		byRankNum: make(map[string]map[uint32]model.Sheet, len(Ranks)),
		ordered:   make([]model.Sheet, 0, len(sheets)),
	}
	for _, r := range Ranks {
		c.byRankNum[r] = make(map[uint32]model.Sheet, RankCapacity(r))
	}
	for _, s := range sheets {
		want, err := RankOf(s.ID)
		if err != nil {
			return nil, err
		}
		if s.Rank != want {
			return nil, fmt.Errorf("catalog: sheet %d has rank %s, band says %s", s.ID, s.Rank, want)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate sheet id %d", s.ID)
		}
		c.byID[s.ID] = s
		c.byRankNum[s.Rank][s.Num] = s
		c.ordered = append(c.ordered, s)
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		a, b := c.ordered[i], c.ordered[j]
		if a.Rank != b.Rank {
			return rankOrder(a.Rank) < rankOrder(b.Rank)
		}
		return a.Num < b.Num
	})
	return c, nil
}

// Standard returns the canonical catalog: ids 1..1000 banded into
// ranks with 1-based numbers and the fixed surcharges. The seed data
// in storage matches this exactly; tests use it directly.
func Standard() *Catalog {
	sheets := make([]model.Sheet, 0, TotalSheets)
	for id := uint64(1); id <= TotalSheets; id++ {
		rank, _ := RankOf(id)
		band := rankBands[rank]
		sheets = append(sheets, model.Sheet{
			ID:    id,
			Rank:  rank,
			Num:   uint32(id - band.lo + 1),
			Price: rankSurcharges[rank],
		})
	}
	c, err := New(sheets)
	if err != nil {
		panic(err) // unreachable: the generated pool is well-formed
	}
	return c
}

// RankOf resolves a sheet id to its rank purely from the band
// boundaries. It fails with ErrInvalidSheetID outside [1,1000].
func RankOf(sheetID uint64) (string, error) {
	switch {
	case sheetID >= 1 && sheetID <= 50:
		return "S", nil
	case sheetID >= 51 && sheetID <= 200:
		return "A", nil
	case sheetID >= 201 && sheetID <= 500:
		return "B", nil
	case sheetID >= 501 && sheetID <= 1000:
		return "C", nil
	}
	return "", fmt.Errorf("%w: %d", ErrInvalidSheetID, sheetID)
}

// IsValidRank reports whether rank is one of S, A, B, C.
func IsValidRank(rank string) bool {
	_, ok := rankBands[rank]
	return ok
}

// RankCapacity returns the number of sheets in a rank (0 for an
// unknown rank).
func RankCapacity(rank string) uint32 {
	band, ok := rankBands[rank]
	if !ok {
		return 0
	}
	return uint32(band.hi - band.lo + 1)
}

// RankSurcharge returns the fixed price added to the event base price
// for a rank (0 for an unknown rank).
func RankSurcharge(rank string) uint32 { return rankSurcharges[rank] }

// SheetByID returns the sheet for an id, or ErrInvalidSheetID.
func (c *Catalog) SheetByID(sheetID uint64) (model.Sheet, error) {
	s, ok := c.byID[sheetID]
	if !ok {
		return model.Sheet{}, fmt.Errorf("%w: %d", ErrInvalidSheetID, sheetID)
	}
	return s, nil
}

// SheetByRankNum resolves a (rank, display number) pair to its sheet.
// It fails with ErrSheetNotFound when no such sheet exists.
func (c *Catalog) SheetByRankNum(rank string, num uint32) (model.Sheet, error) {
	byNum, ok := c.byRankNum[rank]
	if !ok {
		return model.Sheet{}, fmt.Errorf("%w: rank %q num %d", ErrSheetNotFound, rank, num)
	}
	s, ok := byNum[num]
	if !ok {
		return model.Sheet{}, fmt.Errorf("%w: rank %q num %d", ErrSheetNotFound, rank, num)
	}
	return s, nil
}

// SheetsOrdered returns all sheets in stable (rank, num) order with
// ranks ordered S, A, B, C. Callers must not mutate the slice.
func (c *Catalog) SheetsOrdered() []model.Sheet { return c.ordered }

// SheetIDsOfRank returns the ids of one rank in ascending order.
func (c *Catalog) SheetIDsOfRank(rank string) []uint64 {
	band, ok := rankBands[rank]
	if !ok {
		return nil
	}
	ids := make([]uint64, 0, band.hi-band.lo+1)
	for id := band.lo; id <= band.hi; id++ {
		ids = append(ids, id)
	}
	return ids
}

func rankOrder(rank string) int {
	for i, r := range Ranks {
		if r == rank {
			return i
		}
	}
	return len(Ranks)
}
