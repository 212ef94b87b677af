package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-seat-reservation/internal/model"
)

func TestRankOfBandBoundaries(t *testing.T) {
	cases := []struct {
		sheetID uint64
		rank    string
	}{
		{1, "S"}, {50, "S"},
		{51, "A"}, {200, "A"},
		{201, "B"}, {500, "B"},
		{501, "C"}, {1000, "C"},
	}
	for _, tc := range cases {
		rank, err := RankOf(tc.sheetID)
		require.NoError(t, err, "sheet %d", tc.sheetID)
		assert.Equal(t, tc.rank, rank, "sheet %d", tc.sheetID)
	}
}

func TestRankOfOutOfRange(t *testing.T) {
	for _, id := range []uint64{0, 1001, 99999} {
		_, err := RankOf(id)
		assert.ErrorIs(t, err, ErrInvalidSheetID, "sheet %d", id)
	}
}

func TestRankCapacitiesSumToPool(t *testing.T) {
	var sum uint32
	for _, r := range Ranks {
		sum += RankCapacity(r)
	}
	assert.Equal(t, uint32(TotalSheets), sum)
	assert.Equal(t, uint32(50), RankCapacity("S"))
	assert.Equal(t, uint32(150), RankCapacity("A"))
	assert.Equal(t, uint32(300), RankCapacity("B"))
	assert.Equal(t, uint32(500), RankCapacity("C"))
}

func TestStandardCatalogShape(t *testing.T) {
	c := Standard()

	ordered := c.SheetsOrdered()
	require.Len(t, ordered, TotalSheets)

	// Stable (rank, num) order with ranks S, A, B, C.
	assert.Equal(t, "S", ordered[0].Rank)
	assert.Equal(t, uint32(1), ordered[0].Num)
	assert.Equal(t, "S", ordered[49].Rank)
	assert.Equal(t, uint32(50), ordered[49].Num)
	assert.Equal(t, "A", ordered[50].Rank)
	assert.Equal(t, uint32(1), ordered[50].Num)
	assert.Equal(t, "C", ordered[999].Rank)
	assert.Equal(t, uint32(500), ordered[999].Num)

	// Numbers are 1-based and rank-relative: sheet 51 is A-1, 501 is C-1.
	s, err := c.SheetByID(51)
	require.NoError(t, err)
	assert.Equal(t, "A", s.Rank)
	assert.Equal(t, uint32(1), s.Num)
	assert.Equal(t, uint32(3000), s.Price)

	s, err = c.SheetByID(501)
	require.NoError(t, err)
	assert.Equal(t, "C", s.Rank)
	assert.Equal(t, uint32(1), s.Num)
	assert.Equal(t, uint32(0), s.Price)
}

func TestSheetByRankNum(t *testing.T) {
	c := Standard()

	s, err := c.SheetByRankNum("B", 300)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), s.ID)

	_, err = c.SheetByRankNum("S", 51)
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = c.SheetByRankNum("X", 1)
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestIsValidRank(t *testing.T) {
	for _, r := range Ranks {
		assert.True(t, IsValidRank(r))
	}
	assert.False(t, IsValidRank("D"))
	assert.False(t, IsValidRank("s"))
	assert.False(t, IsValidRank(""))
}

func TestNewRejectsMalformedPools(t *testing.T) {
	full := Standard().SheetsOrdered()

	_, err := New(full[:999])
	assert.Error(t, err)

	// Rank not matching the band for the id.
	wrong := append([]model.Sheet(nil), full...)
	wrong[0].Rank = "C"
	_, err = New(wrong)
	assert.Error(t, err)
}
