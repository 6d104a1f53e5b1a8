package reconcile

import (
	"database/sql"

	"mlb_edge/pipeline/internal/metrics"
	"mlb_edge/pipeline/internal/models"

	"github.com/rs/zerolog/log"
)

// ClampBounds is the plausible-range clamp applied to merged odds. Values
// outside the range are clipped, not rejected: a wild line from a flaky feed
// still produces a usable row, at the cost of a lossy value.
type ClampBounds struct {
	SpreadMin float64
	SpreadMax float64
	TotalMin  float64
	TotalMax  float64
}

// DefaultClamp matches MLB run lines and run totals: spreads live within
// +/-2 runs, totals between 6 and 11.
var DefaultClamp = ClampBounds{
	SpreadMin: -2.0,
	SpreadMax: 2.0,
	TotalMin:  6.0,
	TotalMax:  11.0,
}

func (b ClampBounds) clampSpread(v float64) float64 {
	return clip(v, b.SpreadMin, b.SpreadMax)
}

func (b ClampBounds) clampTotal(v float64) float64 {
	return clip(v, b.TotalMin, b.TotalMax)
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Merge joins the scoreboard with the primary odds feed on game identity and
// fills spread/total gaps from the secondary feed, producing fully labeled
// games. Pure over its inputs; output order is unspecified.
//
// Join semantics:
//   - scoreboard x primary is an inner join: no scores or no primary odds
//     means no output row.
//   - secondary is a left join; its point spread and over/under are taken
//     whenever present (the snapshot feed is fresher for those two fields),
//     everything else keeps the primary value.
//   - duplicate per-source identifiers keep the first occurrence only.
//
// Records with unusable keys or incomplete required fields are logged and
// skipped; a bad row never aborts the batch.
func Merge(scoreboard, primary, secondary []models.GameRecord, bounds ClampBounds) []models.MergedGame {
	scores := indexByKey("scoreboard", scoreboard, func(r *models.GameRecord) bool {
		return r.Final && r.HasScores()
	})
	openers := indexByKey("primary_odds", primary, func(r *models.GameRecord) bool {
		return r.Odds.HasMoneylines()
	})
	snapshots := indexByKey("secondary_odds", secondary, nil)

	merged := make([]models.MergedGame, 0, len(scores))
	for key, score := range scores {
		opener, ok := openers[key]
		if !ok {
			// NoMatch: expected whenever a feed lags, not an error.
			log.Debug().
				Str("date", key.Date).
				Str("home", key.Home).
				Str("away", key.Away).
				Msg("No primary odds counterpart, game excluded")
			metrics.RecordDrop("no_odds_match")
			continue
		}

		odds := opener.Odds.Clone()
		if snap, ok := snapshots[key]; ok && snap.Odds != nil {
			if snap.Odds.PointSpread != nil {
				odds.PointSpread = snap.Odds.PointSpread
			}
			if snap.Odds.OverUnder != nil {
				odds.OverUnder = snap.Odds.OverUnder
			}
		}

		g := models.MergedGame{
			GameDate:      score.Date,
			HomeTeam:      key.Home,
			AwayTeam:      key.Away,
			HomeScore:     *score.HomeScore,
			AwayScore:     *score.AwayScore,
			HomeMoneyline: *odds.HomeMoneyline,
			AwayMoneyline: *odds.AwayMoneyline,
		}
		if odds.PointSpread != nil {
			g.PointSpread = sql.NullFloat64{Float64: bounds.clampSpread(*odds.PointSpread), Valid: true}
		}
		if odds.OverUnder != nil {
			g.OverUnder = sql.NullFloat64{Float64: bounds.clampTotal(*odds.OverUnder), Valid: true}
		}

		Label(&g)
		merged = append(merged, g)
	}

	log.Debug().
		Int("scoreboard", len(scores)).
		Int("primary", len(openers)).
		Int("secondary", len(snapshots)).
		Int("merged", len(merged)).
		Msg("Feeds merged")

	return merged
}

// indexByKey builds the per-source GameKey index, deduplicating by the
// source's own game identifier (retries and resends keep the first copy) and
// enforcing at most one record per GameKey.
func indexByKey(source string, recs []models.GameRecord, usable func(*models.GameRecord) bool) map[GameKey]*models.GameRecord {
	index := make(map[GameKey]*models.GameRecord, len(recs))
	seenIDs := make(map[string]bool, len(recs))

	for i := range recs {
		rec := &recs[i]

		key, ok := KeyOf(rec)
		if !ok {
			log.Warn().
				Str("source", source).
				Str("home", rec.HomeTeam).
				Str("away", rec.AwayTeam).
				Msg("Record missing key fields, skipped")
			metrics.RecordDrop("missing_key")
			continue
		}
		if usable != nil && !usable(rec) {
			log.Warn().
				Str("source", source).
				Str("date", key.Date).
				Str("home", key.Home).
				Str("away", key.Away).
				Msg("Record incomplete for this source, skipped")
			metrics.RecordDrop("incomplete")
			continue
		}
		if rec.SourceID != "" && seenIDs[rec.SourceID] {
			log.Debug().
				Str("source", source).
				Str("source_id", rec.SourceID).
				Msg("Duplicate source identifier, first occurrence kept")
			metrics.RecordDrop("duplicate_source_id")
			continue
		}
		if _, dup := index[key]; dup {
			log.Debug().
				Str("source", source).
				Str("date", key.Date).
				Str("home", key.Home).
				Str("away", key.Away).
				Msg("Duplicate game key, first occurrence kept")
			metrics.RecordDrop("duplicate_game_key")
			continue
		}

		if rec.SourceID != "" {
			seenIDs[rec.SourceID] = true
		}
		index[key] = rec
	}

	return index
}
