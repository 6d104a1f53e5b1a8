package predictor

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/models"
	"mlb_edge/pipeline/internal/reconcile"
)

// PickConfig bounds how many picks a day gets and how weak an edge may be.
type PickConfig struct {
	PerDay        int
	MinConfidence models.Confidence
}

// BuildPicks turns a day's odds and predictions into ranked ledger entries:
// the top-N spread picks by edge and the top-N total picks by confidence.
// Games without a prediction or without the relevant line are skipped.
func BuildPicks(date time.Time, games []models.GameRecord, preds []Prediction, cfg PickConfig) []models.BestBetEntry {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	byMatchup := make(map[string]*Prediction, len(preds))
	for i := range preds {
		p := &preds[i]
		key := reconcile.Normalize(p.HomeTeam) + "/" + reconcile.Normalize(p.AwayTeam)
		byMatchup[key] = p
	}

	var spreads, totals []models.BestBetEntry
	for i := range games {
		g := &games[i]
		home := reconcile.Normalize(g.HomeTeam)
		away := reconcile.Normalize(g.AwayTeam)

		pred, ok := byMatchup[home+"/"+away]
		if !ok {
			log.Debug().
				Str("home", home).
				Str("away", away).
				Msg("No prediction for game, skipping")
			continue
		}
		if g.Odds == nil {
			continue
		}

		if g.Odds.PointSpread != nil {
			if e, ok := spreadPick(day, home, away, *g.Odds.PointSpread, pred.PredictedMargin); ok && e.Confidence.AtLeast(cfg.MinConfidence) {
				spreads = append(spreads, e)
			}
		}
		if g.Odds.OverUnder != nil {
			if e, ok := totalPick(day, home, away, *g.Odds.OverUnder, pred.OverProbability); ok && e.Confidence.AtLeast(cfg.MinConfidence) {
				totals = append(totals, e)
			}
		}
	}

	sort.SliceStable(spreads, func(i, j int) bool {
		return spreads[i].Edge.Float64 > spreads[j].Edge.Float64
	})
	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Confidence != totals[j].Confidence {
			return totals[i].Confidence > totals[j].Confidence
		}
		return totals[i].Edge.Float64 > totals[j].Edge.Float64
	})

	entries := rank(spreads, cfg.PerDay)
	entries = append(entries, rank(totals, cfg.PerDay)...)
	return entries
}

// spreadPick sides with the predicted margin against the posted home spread.
// The stored line is the picked side's own spread so grading compares that
// side's margin to it directly.
func spreadPick(day time.Time, home, away string, spread, margin float64) (models.BestBetEntry, bool) {
	e := models.BestBetEntry{
		PickDate: day,
		BetType:  models.BetSpread,
		HomeTeam: home,
		AwayTeam: away,
		Result:   models.ResultPending,
	}

	edge := margin - spread
	if edge >= 0 {
		e.PickSide = models.SideHome
		e.Line = nullFloat(spread)
		e.ModelPick = fmt.Sprintf("%s %+.1f (vs %+.1f)", home, -margin, spread)
	} else {
		edge = -edge
		e.PickSide = models.SideAway
		e.Line = nullFloat(-spread)
		e.ModelPick = fmt.Sprintf("%s %+.1f (vs %+.1f)", away, margin, -spread)
	}

	e.Edge = nullFloat(edge)
	e.Confidence = models.SpreadConfidence(edge)
	return e, true
}

// totalPick follows the classifier: over when the probability clears one
// half, under on the complement.
func totalPick(day time.Time, home, away string, total, overProb float64) (models.BestBetEntry, bool) {
	if overProb < 0 || overProb > 1 {
		log.Warn().
			Str("home", home).
			Str("away", away).
			Float64("over_probability", overProb).
			Msg("Discarding out-of-range total probability")
		return models.BestBetEntry{}, false
	}

	e := models.BestBetEntry{
		PickDate: day,
		BetType:  models.BetTotal,
		HomeTeam: home,
		AwayTeam: away,
		Line:     nullFloat(total),
		Result:   models.ResultPending,
	}

	prob := overProb
	if overProb >= 0.5 {
		e.PickDirection = models.DirectionOver
		e.ModelPick = fmt.Sprintf("Over (vs %.1f)", total)
	} else {
		prob = 1 - overProb
		e.PickDirection = models.DirectionUnder
		e.ModelPick = fmt.Sprintf("Under (vs %.1f)", total)
	}

	e.Edge = nullFloat(prob)
	e.Confidence = models.TotalConfidence(prob)
	return e, true
}

func rank(entries []models.BestBetEntry, n int) []models.BestBetEntry {
	if len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}
