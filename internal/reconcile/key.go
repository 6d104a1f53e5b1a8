package reconcile

import (
	"mlb_edge/pipeline/internal/models"
)

// GameKey identifies one real-world game: (day, home code, away code).
// It is the join and dedup key across every source.
type GameKey struct {
	Date string // models.DateLayout
	Home string
	Away string
}

// KeyOf builds the post-normalization key for a record. ok is false when a
// keying field is missing or the two teams collapse to the same code; such
// records are dropped by the caller, never merged.
func KeyOf(rec *models.GameRecord) (GameKey, bool) {
	if rec == nil || rec.Date.IsZero() {
		return GameKey{}, false
	}
	home := Normalize(rec.HomeTeam)
	away := Normalize(rec.AwayTeam)
	if home == "" || away == "" || home == away {
		return GameKey{}, false
	}
	return GameKey{Date: rec.DateKey(), Home: home, Away: away}, true
}

// KeyOfMerged builds the key for an already-merged game. Team codes are
// canonical by construction but are re-normalized so keys stay comparable
// with entries built from raw text.
func KeyOfMerged(g *models.MergedGame) GameKey {
	return GameKey{
		Date: g.DateKey(),
		Home: Normalize(g.HomeTeam),
		Away: Normalize(g.AwayTeam),
	}
}

// SameGame reports whether two keys refer to the same real-world game.
// Sides are not commutative: a record listing X at home only matches other
// records listing X at home. A reversed home/away assignment between two
// sources is treated as a non-match rather than risking a bad merge.
func SameGame(a, b GameKey) bool {
	return a == b
}
