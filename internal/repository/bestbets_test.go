//go:build integration

package repository

import (
	"database/sql"
	"testing"
	"time"

	"mlb_edge/pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPick(day time.Time, betType models.BetType, rank int) models.BestBetEntry {
	e := models.BestBetEntry{
		PickDate:   day,
		BetType:    betType,
		Rank:       rank,
		HomeTeam:   "NYY",
		AwayTeam:   "BOS",
		Line:       sql.NullFloat64{Float64: -1.5, Valid: true},
		ModelPick:  "NYY -1.3 (vs -1.5)",
		PickSide:   models.SideHome,
		Confidence: models.ConfidenceTier2,
		Result:     models.ResultPending,
	}
	if betType == models.BetTotal {
		e.Line = sql.NullFloat64{Float64: 8.5, Valid: true}
		e.ModelPick = "Over (vs 8.5)"
		e.PickSide = ""
		e.PickDirection = models.DirectionOver
	}
	return e
}

func TestBestBetRepository_AppendIfAbsent(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	picks := []models.BestBetEntry{
		testPick(day, models.BetSpread, 1),
		testPick(day, models.BetTotal, 1),
	}

	written, err := db.BestBets.AppendIfAbsent(ctx, day, picks)
	require.NoError(t, err, "Should log picks for a fresh day")
	assert.True(t, written)

	// A second run on the same day must leave the ledger untouched.
	written, err = db.BestBets.AppendIfAbsent(ctx, day, picks)
	require.NoError(t, err)
	assert.False(t, written, "Day already logged, must not double-write")

	stored, err := db.BestBets.GetByDate(ctx, day)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestBestBetRepository_UpdateResults(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	day := time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC)
	written, err := db.BestBets.AppendIfAbsent(ctx, day, []models.BestBetEntry{
		testPick(day, models.BetSpread, 1),
	})
	require.NoError(t, err)
	require.True(t, written)

	unresolved, err := db.BestBets.GetUnresolved(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, unresolved, "Pending pick should show up as unresolved")

	entry := unresolved[0]
	entry.Result = models.ResultWin
	entry.Correct = sql.NullInt32{Int32: 1, Valid: true}
	require.NoError(t, db.BestBets.UpdateResults(ctx, []models.BestBetEntry{entry}))

	stored, err := db.BestBets.GetByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.ResultWin, stored[0].Result)
	assert.Equal(t, int32(1), stored[0].Correct.Int32)
}

func TestBestBetRepository_WinRates(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	day := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	picks := []models.BestBetEntry{
		testPick(day, models.BetSpread, 1),
		testPick(day, models.BetSpread, 2),
		testPick(day, models.BetTotal, 1),
	}
	written, err := db.BestBets.AppendIfAbsent(ctx, day, picks)
	require.NoError(t, err)
	require.True(t, written)

	stored, err := db.BestBets.GetByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	stored[0].Result = models.ResultWin
	stored[0].Correct = sql.NullInt32{Int32: 1, Valid: true}
	stored[1].Result = models.ResultLoss
	stored[1].Correct = sql.NullInt32{Int32: 0, Valid: true}
	require.NoError(t, db.BestBets.UpdateResults(ctx, stored[:2]))

	rates, err := db.BestBets.WinRates(ctx, day, day)
	require.NoError(t, err)
	require.Len(t, rates, 2, "One bucket per bet type")

	for _, rate := range rates {
		switch rate.BetType {
		case models.BetSpread:
			assert.Equal(t, 1, rate.Wins)
			assert.Equal(t, 1, rate.Losses)
			assert.InDelta(t, 0.5, rate.Rate(), 1e-9)
		case models.BetTotal:
			assert.Equal(t, 1, rate.Pending)
			assert.Zero(t, rate.Rate())
		}
	}
}
