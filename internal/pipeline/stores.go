package pipeline

import (
	"context"
	"time"

	"mlb_edge/pipeline/internal/models"
	"mlb_edge/pipeline/internal/repository"
)

// dbStores adapts the repository layer to the Stores interface.
type dbStores struct {
	db *repository.Database
}

// NewStores wraps the database repositories for pipeline use.
func NewStores(db *repository.Database) Stores {
	return &dbStores{db: db}
}

func (s *dbStores) UpsertScores(ctx context.Context, recs []models.GameRecord) error {
	return s.db.Scores.UpsertBatch(ctx, recs)
}

func (s *dbStores) AppendComparisons(ctx context.Context, games []models.MergedGame) (int, error) {
	return s.db.Comparisons.AppendNew(ctx, games)
}

func (s *dbStores) ComparisonsByDate(ctx context.Context, date time.Time) ([]models.MergedGame, error) {
	return s.db.Comparisons.GetByDate(ctx, date)
}

func (s *dbStores) AppendPicks(ctx context.Context, date time.Time, entries []models.BestBetEntry) (bool, error) {
	return s.db.BestBets.AppendIfAbsent(ctx, date, entries)
}

func (s *dbStores) UnresolvedPicks(ctx context.Context) ([]models.BestBetEntry, error) {
	return s.db.BestBets.GetUnresolved(ctx)
}

func (s *dbStores) UpdatePickResults(ctx context.Context, entries []models.BestBetEntry) error {
	return s.db.BestBets.UpdateResults(ctx, entries)
}
