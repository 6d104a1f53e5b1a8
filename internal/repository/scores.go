package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/models"
)

// ScoreRepository persists raw scoreboard records, one row per source game.
// Kept alongside the merged comparisons so a day can be re-reconciled without
// refetching the feed.
type ScoreRepository struct {
	db *Database
}

// Upsert inserts or updates a scoreboard record keyed by (game_date, source_id).
func (r *ScoreRepository) Upsert(ctx context.Context, rec *models.GameRecord) error {
	query := `
		INSERT INTO daily_scores (
			game_date, source_id, home_team, away_team, home_score, away_score, final
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_date, source_id) DO UPDATE SET
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			final = EXCLUDED.final,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(
		ctx, query,
		rec.Date, rec.SourceID, rec.HomeTeam, rec.AwayTeam,
		rec.HomeScore, rec.AwayScore, rec.Final,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}

	return nil
}

// UpsertBatch upserts a day's scoreboard records in a single transaction.
func (r *ScoreRepository) UpsertBatch(ctx context.Context, recs []models.GameRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO daily_scores (
			game_date, source_id, home_team, away_team, home_score, away_score, final
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_date, source_id) DO UPDATE SET
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			final = EXCLUDED.final,
			updated_at = NOW()
	`

	for i := range recs {
		rec := &recs[i]
		if _, err := tx.Exec(
			ctx, query,
			rec.Date, rec.SourceID, rec.HomeTeam, rec.AwayTeam,
			rec.HomeScore, rec.AwayScore, rec.Final,
		); err != nil {
			return fmt.Errorf("failed to upsert score for %s: %w", rec.SourceID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit score batch: %w", err)
	}

	log.Debug().Int("count", len(recs)).Msg("Upserted scoreboard batch")
	return nil
}

// GetByDate retrieves all scoreboard records for a day, ordered by source id.
func (r *ScoreRepository) GetByDate(ctx context.Context, date time.Time) ([]models.GameRecord, error) {
	query := `
		SELECT game_date, source_id, home_team, away_team, home_score, away_score, final
		FROM daily_scores
		WHERE game_date = $1
		ORDER BY source_id
	`

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get scores by date: %w", err)
	}
	defer rows.Close()

	var recs []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		err := rows.Scan(
			&rec.Date, &rec.SourceID, &rec.HomeTeam, &rec.AwayTeam,
			&rec.HomeScore, &rec.AwayScore, &rec.Final,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}

	return recs, nil
}

// Count returns the total number of stored scoreboard records.
func (r *ScoreRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM daily_scores`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scores: %w", err)
	}
	return count, nil
}
