//go:build integration

package repository

import (
	"testing"
	"time"

	"mlb_edge/pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestScoreRepository_UpsertBatch(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	recs := []models.GameRecord{
		{
			Date: day, SourceID: "401700001",
			HomeTeam: "NYY", AwayTeam: "BOS",
			HomeScore: intPtr(6), AwayScore: intPtr(2), Final: true,
		},
		{
			Date: day, SourceID: "401700002",
			HomeTeam: "LAD", AwayTeam: "SF",
			HomeScore: intPtr(3), AwayScore: intPtr(1), Final: true,
		},
	}

	require.NoError(t, db.Scores.UpsertBatch(ctx, recs))

	stored, err := db.Scores.GetByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "NYY", stored[0].HomeTeam)
	assert.Equal(t, 6, *stored[0].HomeScore)
	assert.True(t, stored[0].Final)

	// Re-upserting the same day updates in place.
	recs[0].HomeScore = intPtr(7)
	require.NoError(t, db.Scores.UpsertBatch(ctx, recs))

	stored, err = db.Scores.GetByDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, stored, 2, "Upsert must not duplicate rows")
	assert.Equal(t, 7, *stored[0].HomeScore)
}
