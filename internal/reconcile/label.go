package reconcile

import (
	"mlb_edge/pipeline/internal/models"
)

// Label computes the ground-truth outcome fields of a merged game in place.
// Total function: every merged game has scores and moneylines by
// construction, so there is no failure mode.
//
// Tie handling: equal scores yield Winner == Push; a total landing exactly
// on the line sets PushTotal with neither OverHit nor UnderHit. OverHit,
// UnderHit and PushTotal are mutually exclusive and exactly one is set when
// the over/under is present; all three stay false when it is absent.
func Label(g *models.MergedGame) {
	switch {
	case g.HomeScore > g.AwayScore:
		g.Winner = models.SideHome
	case g.AwayScore > g.HomeScore:
		g.Winner = models.SideAway
	default:
		g.Winner = models.SidePush
	}

	// Favorite by higher implied win probability; equal lines favor the away
	// side, matching how the comparisons have always been labeled.
	if models.ImpliedProbability(g.HomeMoneyline) > models.ImpliedProbability(g.AwayMoneyline) {
		g.Favorite = models.SideHome
	} else {
		g.Favorite = models.SideAway
	}
	g.CorrectSide = g.Winner == g.Favorite

	g.TotalRuns = g.HomeScore + g.AwayScore

	g.OverHit = false
	g.UnderHit = false
	g.PushTotal = false
	if g.OverUnder.Valid {
		total := float64(g.TotalRuns)
		switch {
		case total > g.OverUnder.Float64:
			g.OverHit = true
		case total < g.OverUnder.Float64:
			g.UnderHit = true
		default:
			g.PushTotal = true
		}
	}
}
