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

func testMergedGame(day time.Time, home, away string, hs, as int) models.MergedGame {
	g := models.MergedGame{
		GameDate:      day,
		HomeTeam:      home,
		AwayTeam:      away,
		HomeScore:     hs,
		AwayScore:     as,
		HomeMoneyline: -150,
		AwayMoneyline: 130,
		PointSpread:   sql.NullFloat64{Float64: -1.5, Valid: true},
		OverUnder:     sql.NullFloat64{Float64: 8.5, Valid: true},
		Winner:        models.SideHome,
		Favorite:      models.SideHome,
		CorrectSide:   true,
		TotalRuns:     hs + as,
		UnderHit:      true,
	}
	return g
}

func TestComparisonRepository_AppendNewIsIdempotent(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	day := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	games := []models.MergedGame{
		testMergedGame(day, "NYY", "BOS", 6, 2),
		testMergedGame(day, "LAD", "SF", 3, 1),
	}

	added, err := db.Comparisons.AppendNew(ctx, games)
	require.NoError(t, err, "Should append comparisons")
	assert.Equal(t, 2, added)

	// Re-running the same day must not rewrite existing rows.
	games[0].HomeScore = 99
	added, err = db.Comparisons.AppendNew(ctx, games)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "Existing games should be skipped")

	stored, err := db.Comparisons.GetByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 6, stored[1].HomeScore, "First write should survive re-runs")
}

func TestComparisonRepository_GetByDateOrdering(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	day := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)
	games := []models.MergedGame{
		testMergedGame(day, "SEA", "TEX", 4, 2),
		testMergedGame(day, "ATL", "NYM", 5, 1),
	}

	_, err := db.Comparisons.AppendNew(ctx, games)
	require.NoError(t, err)

	stored, err := db.Comparisons.GetByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "ATL", stored[0].HomeTeam, "Rows should come back sorted by matchup")
	assert.Equal(t, "SEA", stored[1].HomeTeam)
}

func TestComparisonRepository_Summary(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	day := time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC)
	favoriteLost := testMergedGame(day, "CHC", "STL", 2, 7)
	favoriteLost.Winner = models.SideAway
	favoriteLost.CorrectSide = false
	favoriteLost.OverHit = true
	favoriteLost.UnderHit = false

	_, err := db.Comparisons.AppendNew(ctx, []models.MergedGame{
		testMergedGame(day, "NYY", "BOS", 6, 2),
		favoriteLost,
	})
	require.NoError(t, err)

	summary, err := db.Comparisons.Summary(ctx, day, day)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Games)
	assert.Equal(t, 1, summary.CorrectSides)
	assert.Equal(t, 1, summary.Overs)
	assert.Equal(t, 1, summary.Unders)
	assert.InDelta(t, 0.5, summary.FavoriteRate(), 1e-9)
}
