// Package scheduler drives the daily pipeline run and the catch-up pass over
// recent days whose games settled after their first run.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/config"
	"mlb_edge/pipeline/internal/models"
	"mlb_edge/pipeline/internal/pipeline"
)

// Scheduler manages the background pipeline runs:
// - Nightly run for yesterday plus a catch-up window of recent days
// - Optional run on startup
type Scheduler struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	cron     *cron.Cron
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, pipe *pipeline.Pipeline) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		pipe:     pipe,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.DailyRunCron, func() {
		log.Info().Msg("Running daily reconciliation...")
		if err := s.runCatchUp(ctx); err != nil {
			log.Error().Err(err).Msg("Daily reconciliation failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily run: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.DailyRunCron).
		Int("catch_up_days", s.cfg.CatchUpDays).
		Msg("Daily reconciliation scheduled")

	if s.cfg.RunOnStart {
		// The run itself is cancellable through ctx; RunRange checks it
		// before every date.
		go func() {
			log.Info().Msg("Running startup reconciliation...")
			if err := s.runCatchUp(ctx); err != nil {
				log.Error().Err(err).Msg("Startup reconciliation failed")
			}
		}()
	}

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// runCatchUp runs the pipeline over the trailing catch-up window, ending at
// yesterday. Days before the season start are never run.
func (s *Scheduler) runCatchUp(ctx context.Context) error {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	from := yesterday.AddDate(0, 0, -(s.cfg.CatchUpDays - 1))
	if seasonStart := s.cfg.SeasonStartDate(); from.Before(seasonStart) {
		from = seasonStart
	}
	if from.After(yesterday) {
		log.Debug().Msg("Season has not started, nothing to reconcile")
		return nil
	}

	log.Info().
		Str("from", from.Format(models.DateLayout)).
		Str("to", yesterday.Format(models.DateLayout)).
		Msg("Reconciling date window")

	return s.pipe.RunRange(ctx, from, yesterday)
}
