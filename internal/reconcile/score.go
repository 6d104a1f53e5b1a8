package reconcile

import (
	"database/sql"
	"strings"

	"mlb_edge/pipeline/internal/models"
)

// Score settles a logged pick against the labeled outcomes. Pure function of
// (entry, outcomes): re-scoring a resolved entry with the same outcomes set
// returns the same answer.
//
// Returns (Pending, unset) when the game has not resolved yet or the line is
// missing: a normal, non-terminal state, not an error. Returns (Unknown,
// unset) when the pick cannot be attributed to a side or direction.
//
// A spread landing exactly on the line settles as a Loss, matching how the
// ledger has always been graded.
func Score(entry *models.BestBetEntry, outcomes []models.MergedGame) (models.BetResult, sql.NullInt32) {
	unset := sql.NullInt32{}

	game := findOutcome(entry, outcomes)
	if game == nil || !entry.Line.Valid {
		return models.ResultPending, unset
	}
	line := entry.Line.Float64

	switch entry.BetType {
	case models.BetSpread:
		side := entry.PickSide
		if side == "" {
			side = sideFromPickText(entry)
		}
		margin := float64(game.Margin())
		var covered bool
		switch side {
		case models.SideHome:
			covered = margin > line
		case models.SideAway:
			covered = -margin > line
		default:
			return models.ResultUnknown, unset
		}
		return verdict(covered)

	case models.BetTotal:
		dir := entry.PickDirection
		if dir == models.DirectionNone {
			dir = directionFromPickText(entry.ModelPick)
		}
		total := float64(game.TotalRuns)
		switch dir {
		case models.DirectionOver:
			return verdict(total > line)
		case models.DirectionUnder:
			return verdict(total < line)
		default:
			return models.ResultUnknown, unset
		}
	}

	return models.ResultUnknown, unset
}

func verdict(won bool) (models.BetResult, sql.NullInt32) {
	if won {
		return models.ResultWin, sql.NullInt32{Int32: 1, Valid: true}
	}
	return models.ResultLoss, sql.NullInt32{Int32: 0, Valid: true}
}

// findOutcome locates the labeled game matching the entry's identity triple.
func findOutcome(entry *models.BestBetEntry, outcomes []models.MergedGame) *models.MergedGame {
	want := GameKey{
		Date: entry.DateKey(),
		Home: Normalize(entry.HomeTeam),
		Away: Normalize(entry.AwayTeam),
	}
	for i := range outcomes {
		if SameGame(want, KeyOfMerged(&outcomes[i])) {
			return &outcomes[i]
		}
	}
	return nil
}

// sideFromPickText recovers the picked side from display text for rows
// written before structured attribution existed. A pick naming the home team
// is a home pick; anything else is treated as the away side.
func sideFromPickText(entry *models.BestBetEntry) models.Side {
	pick := strings.ToUpper(entry.ModelPick)
	if pick == "" {
		return ""
	}
	if strings.Contains(pick, strings.ToUpper(strings.TrimSpace(entry.HomeTeam))) {
		return models.SideHome
	}
	return models.SideAway
}

func directionFromPickText(pick string) models.PickDirection {
	switch {
	case strings.Contains(pick, "Over"):
		return models.DirectionOver
	case strings.Contains(pick, "Under"):
		return models.DirectionUnder
	default:
		return models.DirectionNone
	}
}
