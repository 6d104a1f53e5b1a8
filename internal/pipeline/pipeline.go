// Package pipeline orchestrates one reconciliation run: fetch the day's
// feeds, merge and label, persist, generate picks, and settle the ledger.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/cache"
	"mlb_edge/pipeline/internal/feeds"
	"mlb_edge/pipeline/internal/metrics"
	"mlb_edge/pipeline/internal/models"
	"mlb_edge/pipeline/internal/predictor"
	"mlb_edge/pipeline/internal/reconcile"
)

// Stores is the persistence surface the pipeline needs. Satisfied by the
// repository layer; narrowed here so tests can run against fakes.
type Stores interface {
	UpsertScores(ctx context.Context, recs []models.GameRecord) error
	AppendComparisons(ctx context.Context, games []models.MergedGame) (int, error)
	ComparisonsByDate(ctx context.Context, date time.Time) ([]models.MergedGame, error)
	AppendPicks(ctx context.Context, date time.Time, entries []models.BestBetEntry) (bool, error)
	UnresolvedPicks(ctx context.Context) ([]models.BestBetEntry, error)
	UpdatePickResults(ctx context.Context, entries []models.BestBetEntry) error
}

// Pipeline wires the feeds, the model service, and the stores together.
type Pipeline struct {
	scoreboard feeds.Source
	odds       feeds.Source
	book       feeds.Source

	predictor predictor.Predictor // nil disables pick generation
	stores    Stores
	cache     *cache.Cache

	clamp     reconcile.ClampBounds
	picks     predictor.PickConfig
	ttlScores time.Duration
	ttlOdds   time.Duration
}

// Options configures a Pipeline.
type Options struct {
	Scoreboard feeds.Source
	Odds       feeds.Source
	Book       feeds.Source
	Predictor  predictor.Predictor
	Stores     Stores
	Cache      *cache.Cache
	Clamp      reconcile.ClampBounds
	Picks      predictor.PickConfig
	TTLScores  time.Duration
	TTLOdds    time.Duration
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		scoreboard: opts.Scoreboard,
		odds:       opts.Odds,
		book:       opts.Book,
		predictor:  opts.Predictor,
		stores:     opts.Stores,
		cache:      opts.Cache,
		clamp:      opts.Clamp,
		picks:      opts.Picks,
		ttlScores:  opts.TTLScores,
		ttlOdds:    opts.TTLOdds,
	}
}

// RunDate reconciles one calendar day end to end.
func (p *Pipeline) RunDate(ctx context.Context, date time.Time) error {
	start := time.Now()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	runID := uuid.NewString()[:8]
	logger := log.With().
		Str("run_id", runID).
		Str("date", day.Format(models.DateLayout)).
		Logger()
	logger.Info().Msg("Starting pipeline run")

	// Step 1: fetch the three sources concurrently. A failed source
	// contributes nothing; the merge decides what is still usable.
	scoreboard, odds, snapshots := p.fetchAll(ctx, day, &logger)

	// Step 2: normalize, merge, label.
	merged := reconcile.Merge(scoreboard, odds, snapshots, p.clamp)
	metrics.RecordMerged(len(merged))

	// Step 3: persist raw scores and append new comparisons.
	if err := p.stores.UpsertScores(ctx, scoreboard); err != nil {
		metrics.RecordError("pipeline", "persist_scores")
		metrics.RecordPipelineRun("failure", time.Since(start).Seconds())
		return fmt.Errorf("failed to persist scores for %s: %w", day.Format(models.DateLayout), err)
	}
	added, err := p.stores.AppendComparisons(ctx, merged)
	if err != nil {
		metrics.RecordError("pipeline", "persist_comparisons")
		metrics.RecordPipelineRun("failure", time.Since(start).Seconds())
		return fmt.Errorf("failed to persist comparisons for %s: %w", day.Format(models.DateLayout), err)
	}

	// Step 4: generate and log picks for the day.
	if err := p.logPicks(ctx, day, odds, &logger); err != nil {
		// Pick generation failing does not invalidate the merged history.
		logger.Error().Err(err).Msg("Pick generation failed, continuing")
		metrics.RecordError("pipeline", "picks")
	}

	// Step 5: settle every unresolved ledger entry.
	settled, err := p.settleLedger(ctx, &logger)
	if err != nil {
		metrics.RecordError("pipeline", "settle")
		metrics.RecordPipelineRun("failure", time.Since(start).Seconds())
		return fmt.Errorf("failed to settle ledger: %w", err)
	}

	summary := models.Summarize(merged)
	logger.Info().
		Int("merged", len(merged)).
		Int("appended", added).
		Int("settled", settled).
		Int("correct_sides", summary.CorrectSides).
		Int("overs", summary.Overs).
		Int("unders", summary.Unders).
		Int("total_pushes", summary.TotalPushes).
		Dur("duration", time.Since(start)).
		Msg("Pipeline run complete")

	metrics.RecordPipelineRun("success", time.Since(start).Seconds())
	return nil
}

// RunRange runs each day in [from, to] in order. A failed day is logged and
// does not stop the rest of the range.
func (p *Pipeline) RunRange(ctx context.Context, from, to time.Time) error {
	var failures int
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.RunDate(ctx, day); err != nil {
			log.Error().
				Err(err).
				Str("date", day.Format(models.DateLayout)).
				Msg("Date run failed, continuing with next day")
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d date runs failed", failures)
	}
	return nil
}

// fetchAll pulls the three feeds concurrently.
func (p *Pipeline) fetchAll(ctx context.Context, day time.Time, logger *zerolog.Logger) (scoreboard, odds, snapshots []models.GameRecord) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		scoreboard = p.fetchSource(ctx, p.scoreboard, day, p.ttlScores, logger)
	}()
	go func() {
		defer wg.Done()
		odds = p.fetchSource(ctx, p.odds, day, p.ttlOdds, logger)
	}()
	go func() {
		defer wg.Done()
		snapshots = p.fetchSource(ctx, p.book, day, p.ttlOdds, logger)
	}()

	wg.Wait()
	return scoreboard, odds, snapshots
}

// fetchSource fetches one source with the day cache in front of it. Failure
// degrades to an empty contribution.
func (p *Pipeline) fetchSource(ctx context.Context, src feeds.Source, day time.Time, ttl time.Duration, logger *zerolog.Logger) []models.GameRecord {
	if src == nil {
		return nil
	}

	if recs, ok := p.cache.GetDay(ctx, src.Name(), day); ok {
		logger.Debug().Str("source", src.Name()).Int("count", len(recs)).Msg("Feed served from cache")
		return recs
	}

	start := time.Now()
	recs, err := src.FetchDay(ctx, day)
	duration := time.Since(start)
	if err != nil {
		logger.Error().
			Err(err).
			Str("source", src.Name()).
			Dur("duration", duration).
			Msg("Feed fetch failed, contributing no records")
		metrics.RecordFeedFetch(src.Name(), "failure", 0, duration.Seconds())
		metrics.RecordError("feeds", src.Name())
		return nil
	}

	metrics.RecordFeedFetch(src.Name(), "success", len(recs), duration.Seconds())
	p.cache.SetDay(ctx, src.Name(), day, recs, ttl)
	return recs
}

// logPicks asks the model for the day's slate and appends the ranked picks.
func (p *Pipeline) logPicks(ctx context.Context, day time.Time, odds []models.GameRecord, logger *zerolog.Logger) error {
	if p.predictor == nil {
		logger.Debug().Msg("No predictor configured, skipping picks")
		return nil
	}
	if len(odds) == 0 {
		logger.Debug().Msg("No odds for day, skipping picks")
		return nil
	}

	preds, err := p.predictor.Predict(ctx, day, odds)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	entries := predictor.BuildPicks(day, odds, preds, p.picks)
	if len(entries) == 0 {
		logger.Info().Msg("No picks cleared the confidence floor")
		return nil
	}

	written, err := p.stores.AppendPicks(ctx, day, entries)
	if err != nil {
		return fmt.Errorf("failed to log picks: %w", err)
	}
	if !written {
		logger.Debug().Msg("Picks already logged for day")
		return nil
	}

	counts := map[models.BetType]int{}
	for i := range entries {
		counts[entries[i].BetType]++
	}
	for betType, count := range counts {
		metrics.RecordPicksLogged(string(betType), count)
	}
	logger.Info().Int("count", len(entries)).Msg("Picks logged")
	return nil
}

// settleLedger re-scores every unresolved entry against the stored outcomes.
// Returns how many entries moved to a new result state.
func (p *Pipeline) settleLedger(ctx context.Context, logger *zerolog.Logger) (int, error) {
	unresolved, err := p.stores.UnresolvedPicks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load unresolved picks: %w", err)
	}
	if len(unresolved) == 0 {
		return 0, nil
	}

	outcomesByDay := make(map[string][]models.MergedGame)
	var updates []models.BestBetEntry
	for i := range unresolved {
		entry := unresolved[i]

		dayKey := entry.DateKey()
		outcomes, ok := outcomesByDay[dayKey]
		if !ok {
			outcomes, err = p.stores.ComparisonsByDate(ctx, entry.PickDate)
			if err != nil {
				return 0, fmt.Errorf("failed to load outcomes for %s: %w", dayKey, err)
			}
			outcomesByDay[dayKey] = outcomes
		}

		result, correct := reconcile.Score(&entry, outcomes)
		if result == entry.Result {
			continue
		}

		entry.Result = result
		entry.Correct = correct
		updates = append(updates, entry)
		metrics.RecordPickScored(string(result))
	}

	if len(updates) == 0 {
		return 0, nil
	}
	if err := p.stores.UpdatePickResults(ctx, updates); err != nil {
		return 0, fmt.Errorf("failed to update results: %w", err)
	}

	logger.Debug().
		Int("unresolved", len(unresolved)).
		Int("updated", len(updates)).
		Msg("Ledger settled")

	return len(updates), nil
}
