package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/models"
)

// BestBetRepository handles the append-only best-bets ledger. Picks for a day
// are written at most once; only result fields change afterwards.
type BestBetRepository struct {
	db *Database
}

const bestBetColumns = `
	id, pick_date, bet_type, rank, home_team, away_team,
	line, model_pick, pick_side, pick_direction, confidence, edge,
	result, correct, created_at, updated_at
`

// AppendIfAbsent writes a day's picks unless any picks already exist for that
// day. Returns true if the entries were written. The existence check and the
// inserts share one transaction so a concurrent run cannot double-log a day.
func (r *BestBetRepository) AppendIfAbsent(ctx context.Context, date time.Time, entries []models.BestBetEntry) (bool, error) {
	if len(entries) == 0 {
		return false, nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM best_bets WHERE pick_date = $1`, date).Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("failed to check existing picks: %w", err)
	}
	if existing > 0 {
		log.Debug().
			Str("date", date.Format(models.DateLayout)).
			Int("existing", existing).
			Msg("Picks already logged for day, not overwriting")
		return false, nil
	}

	query := `
		INSERT INTO best_bets (
			pick_date, bet_type, rank, home_team, away_team,
			line, model_pick, pick_side, pick_direction, confidence, edge, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	for i := range entries {
		e := &entries[i]
		if _, err := tx.Exec(
			ctx, query,
			e.PickDate, e.BetType, e.Rank, e.HomeTeam, e.AwayTeam,
			e.Line, e.ModelPick, e.PickSide, e.PickDirection, e.Confidence, e.Edge, e.Result,
		); err != nil {
			return false, fmt.Errorf("failed to insert pick %s #%d: %w", e.BetType, e.Rank, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit picks: %w", err)
	}

	log.Info().
		Str("date", date.Format(models.DateLayout)).
		Int("count", len(entries)).
		Msg("Logged picks for day")

	return true, nil
}

// GetUnresolved retrieves every entry whose result is not terminal, ordered
// by pick date.
func (r *BestBetRepository) GetUnresolved(ctx context.Context) ([]models.BestBetEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM best_bets
		WHERE result NOT IN ('Win', 'Loss', 'Unknown')
		ORDER BY pick_date, bet_type, rank
	`, bestBetColumns)

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get unresolved picks: %w", err)
	}
	defer rows.Close()

	return scanBestBets(rows)
}

// GetByDate retrieves the picks logged for a day.
func (r *BestBetRepository) GetByDate(ctx context.Context, date time.Time) ([]models.BestBetEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM best_bets
		WHERE pick_date = $1
		ORDER BY bet_type, rank
	`, bestBetColumns)

	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get picks by date: %w", err)
	}
	defer rows.Close()

	return scanBestBets(rows)
}

// GetRange retrieves picks with pick_date in [from, to].
func (r *BestBetRepository) GetRange(ctx context.Context, from, to time.Time) ([]models.BestBetEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM best_bets
		WHERE pick_date BETWEEN $1 AND $2
		ORDER BY pick_date, bet_type, rank
	`, bestBetColumns)

	rows, err := r.db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get picks by range: %w", err)
	}
	defer rows.Close()

	return scanBestBets(rows)
}

// UpdateResults writes new result states in one transaction. Only the result
// fields are touched.
func (r *BestBetRepository) UpdateResults(ctx context.Context, entries []models.BestBetEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE best_bets
		SET result = $1, correct = $2, updated_at = NOW()
		WHERE id = $3
	`

	for i := range entries {
		e := &entries[i]
		result, err := tx.Exec(ctx, query, e.Result, e.Correct, e.ID)
		if err != nil {
			return fmt.Errorf("failed to update pick %d: %w", e.ID, err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("pick not found: id=%d", e.ID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit result updates: %w", err)
	}

	log.Debug().Int("count", len(entries)).Msg("Updated pick results")
	return nil
}

// WinRate is the rolling record for one (day, market) bucket of the ledger.
type WinRate struct {
	PickDate time.Time      `db:"pick_date"`
	BetType  models.BetType `db:"bet_type"`
	Wins     int            `db:"wins"`
	Losses   int            `db:"losses"`
	Pending  int            `db:"pending"`
}

// Rate returns wins over settled picks, or 0 with nothing settled.
func (w WinRate) Rate() float64 {
	settled := w.Wins + w.Losses
	if settled == 0 {
		return 0
	}
	return float64(w.Wins) / float64(settled)
}

// WinRates aggregates the ledger per (pick_date, bet_type) over a date range.
func (r *BestBetRepository) WinRates(ctx context.Context, from, to time.Time) ([]WinRate, error) {
	query := `
		SELECT pick_date, bet_type,
		       COUNT(*) FILTER (WHERE result = 'Win') AS wins,
		       COUNT(*) FILTER (WHERE result = 'Loss') AS losses,
		       COUNT(*) FILTER (WHERE result NOT IN ('Win', 'Loss', 'Unknown')) AS pending
		FROM best_bets
		WHERE pick_date BETWEEN $1 AND $2
		GROUP BY pick_date, bet_type
		ORDER BY pick_date, bet_type
	`

	rows, err := r.db.Pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get win rates: %w", err)
	}
	defer rows.Close()

	var rates []WinRate
	for rows.Next() {
		var w WinRate
		if err := rows.Scan(&w.PickDate, &w.BetType, &w.Wins, &w.Losses, &w.Pending); err != nil {
			return nil, fmt.Errorf("failed to scan win rate: %w", err)
		}
		rates = append(rates, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating win rates: %w", err)
	}

	return rates, nil
}

func scanBestBets(rows rowScanner) ([]models.BestBetEntry, error) {
	var entries []models.BestBetEntry
	for rows.Next() {
		var e models.BestBetEntry
		err := rows.Scan(
			&e.ID, &e.PickDate, &e.BetType, &e.Rank, &e.HomeTeam, &e.AwayTeam,
			&e.Line, &e.ModelPick, &e.PickSide, &e.PickDirection, &e.Confidence, &e.Edge,
			&e.Result, &e.Correct, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picks: %w", err)
	}

	return entries, nil
}
