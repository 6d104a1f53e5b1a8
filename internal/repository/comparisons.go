package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/models"
)

// ComparisonRepository handles the merged, labeled game history. The table is
// append-only: a game already present for its (date, home, away) identity is
// never rewritten on a re-run.
type ComparisonRepository struct {
	db *Database
}

const comparisonColumns = `
	id, game_date, home_team, away_team, home_score, away_score,
	home_moneyline, away_moneyline, point_spread, over_under,
	winner, favorite, correct_side, total_runs, over_hit, under_hit, push_total,
	created_at
`

// AppendNew inserts the merged games that are not already present, keyed by
// (game_date, home_team, away_team). Returns how many rows were added.
func (r *ComparisonRepository) AppendNew(ctx context.Context, games []models.MergedGame) (int, error) {
	if len(games) == 0 {
		return 0, nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO comparisons (
			game_date, home_team, away_team, home_score, away_score,
			home_moneyline, away_moneyline, point_spread, over_under,
			winner, favorite, correct_side, total_runs, over_hit, under_hit, push_total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (game_date, home_team, away_team) DO NOTHING
	`

	added := 0
	for i := range games {
		g := &games[i]
		result, err := tx.Exec(
			ctx, query,
			g.GameDate, g.HomeTeam, g.AwayTeam, g.HomeScore, g.AwayScore,
			g.HomeMoneyline, g.AwayMoneyline, g.PointSpread, g.OverUnder,
			g.Winner, g.Favorite, g.CorrectSide, g.TotalRuns, g.OverHit, g.UnderHit, g.PushTotal,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to append comparison %s/%s: %w", g.HomeTeam, g.AwayTeam, err)
		}
		added += int(result.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit comparisons: %w", err)
	}

	log.Debug().
		Int("candidates", len(games)).
		Int("added", added).
		Msg("Appended new comparisons")

	return added, nil
}

// GetByDate retrieves the merged games for a day, ordered by matchup.
func (r *ComparisonRepository) GetByDate(ctx context.Context, date time.Time) ([]models.MergedGame, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comparisons
		WHERE game_date = $1
		ORDER BY home_team, away_team
	`, comparisonColumns)

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get comparisons by date: %w", err)
	}
	defer rows.Close()

	return scanComparisons(rows)
}

// GetRange retrieves merged games with game_date in [from, to], ordered by day
// then matchup.
func (r *ComparisonRepository) GetRange(ctx context.Context, from, to time.Time) ([]models.MergedGame, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comparisons
		WHERE game_date BETWEEN $1 AND $2
		ORDER BY game_date, home_team, away_team
	`, comparisonColumns)

	rows, err := r.db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get comparisons by range: %w", err)
	}
	defer rows.Close()

	return scanComparisons(rows)
}

// Summary tallies line accuracy over a date range.
func (r *ComparisonRepository) Summary(ctx context.Context, from, to time.Time) (models.LineSummary, error) {
	games, err := r.GetRange(ctx, from, to)
	if err != nil {
		return models.LineSummary{}, err
	}
	return models.Summarize(games), nil
}

// Count returns the total number of stored comparisons.
func (r *ComparisonRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM comparisons`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comparisons: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanComparisons(rows rowScanner) ([]models.MergedGame, error) {
	var games []models.MergedGame
	for rows.Next() {
		var g models.MergedGame
		err := rows.Scan(
			&g.ID, &g.GameDate, &g.HomeTeam, &g.AwayTeam, &g.HomeScore, &g.AwayScore,
			&g.HomeMoneyline, &g.AwayMoneyline, &g.PointSpread, &g.OverUnder,
			&g.Winner, &g.Favorite, &g.CorrectSide, &g.TotalRuns, &g.OverHit, &g.UnderHit, &g.PushTotal,
			&g.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comparisons: %w", err)
	}

	return games, nil
}
