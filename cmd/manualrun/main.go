// Command manualrun reconciles a date range on demand and prints the
// resulting picks and accuracy summary. Useful for backfills and for
// re-running a day whose feeds were late.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"mlb_edge/pipeline/internal/config"
	"mlb_edge/pipeline/internal/feeds/book"
	"mlb_edge/pipeline/internal/feeds/espn"
	"mlb_edge/pipeline/internal/feeds/sportsdataio"
	"mlb_edge/pipeline/internal/models"
	"mlb_edge/pipeline/internal/pipeline"
	"mlb_edge/pipeline/internal/predictor"
	"mlb_edge/pipeline/internal/reconcile"
	"mlb_edge/pipeline/internal/repository"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

func main() {
	var fromFlag, toFlag string
	flag.StringVar(&fromFlag, "from", "", "first day to reconcile (YYYY-MM-DD, default yesterday)")
	flag.StringVar(&toFlag, "to", "", "last day to reconcile (YYYY-MM-DD, default same as -from)")
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	from, to, err := parseRange(fromFlag, toFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date range")
	}

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	var pred predictor.Predictor
	if cfg.ModelServiceURL != "" {
		pred = predictor.NewClient(cfg.ModelServiceURL, cfg.ModelServiceTimeout)
	}

	pipe := pipeline.New(pipeline.Options{
		Scoreboard: espn.NewClient(cfg.ScoreboardBaseURL, cfg.ScoreboardTimeout),
		Odds:       sportsdataio.NewClient(cfg.OddsBaseURL, cfg.OddsAPIKey, cfg.OddsTimeout),
		Book:       book.NewClient(cfg.BookSnapshotURL, cfg.BookSnapshotTimeout, cfg.BookRateLimit, cfg.BookRateBurst),
		Predictor:  pred,
		Stores:     pipeline.NewStores(db),
		Clamp: reconcile.ClampBounds{
			SpreadMin: cfg.SpreadMin,
			SpreadMax: cfg.SpreadMax,
			TotalMin:  cfg.TotalMin,
			TotalMax:  cfg.TotalMax,
		},
		Picks: predictor.PickConfig{
			PerDay:        cfg.PicksPerDay,
			MinConfidence: models.Confidence(cfg.MinConfidence),
		},
	})

	if err := pipe.RunRange(ctx, from, to); err != nil {
		log.Error().Err(err).Msg("Some date runs failed")
	}

	printPicks(ctx, db, from, to)
	printSummary(ctx, db, from, to)
	printWinRates(ctx, db, from, to)
}

func parseRange(fromFlag, toFlag string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	from := yesterday
	if fromFlag != "" {
		d, err := time.Parse(models.DateLayout, fromFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("-from must be YYYY-MM-DD: %w", err)
		}
		from = d
	}

	to := from
	if toFlag != "" {
		d, err := time.Parse(models.DateLayout, toFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("-to must be YYYY-MM-DD: %w", err)
		}
		to = d
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to is before -from")
	}
	return from, to, nil
}

func printPicks(ctx context.Context, db *repository.Database, from, to time.Time) {
	picks, err := db.BestBets.GetRange(ctx, from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load picks")
		return
	}
	if len(picks) == 0 {
		fmt.Println("No picks logged in range.")
		return
	}

	fmt.Println("\nBest bets:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Date", "Type", "Rank", "Matchup", "Pick", "Line", "Conf", "Result")

	for i := range picks {
		p := &picks[i]
		line := "-"
		if p.Line.Valid {
			line = fmt.Sprintf("%+.1f", p.Line.Float64)
		}
		table.Append(
			p.DateKey(),
			string(p.BetType),
			strconv.Itoa(p.Rank),
			fmt.Sprintf("%s @ %s", p.AwayTeam, p.HomeTeam),
			p.ModelPick,
			line,
			p.Confidence.String(),
			string(p.Result),
		)
	}

	table.Render()
}

func printSummary(ctx context.Context, db *repository.Database, from, to time.Time) {
	s, err := db.Comparisons.Summary(ctx, from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute summary")
		return
	}

	fmt.Println("\nLine accuracy:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Games", "Correct sides", "Favorite rate", "Overs", "Unders", "Pushes")
	table.Append(
		strconv.Itoa(s.Games),
		strconv.Itoa(s.CorrectSides),
		fmt.Sprintf("%.1f%%", s.FavoriteRate()*100),
		strconv.Itoa(s.Overs),
		strconv.Itoa(s.Unders),
		strconv.Itoa(s.TotalPushes),
	)
	table.Render()
}

func printWinRates(ctx context.Context, db *repository.Database, from, to time.Time) {
	rates, err := db.BestBets.WinRates(ctx, from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute win rates")
		return
	}
	if len(rates) == 0 {
		return
	}

	fmt.Println("\nLedger record:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Date", "Type", "Wins", "Losses", "Pending", "Win rate")

	for _, r := range rates {
		table.Append(
			r.PickDate.Format(models.DateLayout),
			string(r.BetType),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Pending),
			fmt.Sprintf("%.1f%%", r.Rate()*100),
		)
	}

	table.Render()
}
