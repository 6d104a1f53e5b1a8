package models

import (
	"database/sql"
	"time"
)

// BetType distinguishes the two pick markets tracked in the log.
type BetType string

const (
	BetSpread BetType = "spread"
	BetTotal  BetType = "total"
)

// BetResult is the settled state of a logged pick. Results only move
// forward: unset -> Pending -> Win/Loss/Unknown.
type BetResult string

const (
	ResultUnset   BetResult = ""
	ResultPending BetResult = "Pending"
	ResultWin     BetResult = "Win"
	ResultLoss    BetResult = "Loss"
	// ResultUnknown means the pick could not be attributed to a side or
	// direction. Distinct from Pending and Loss.
	ResultUnknown BetResult = "Unknown"
)

// Resolved reports whether the result is terminal.
func (r BetResult) Resolved() bool {
	return r == ResultWin || r == ResultLoss || r == ResultUnknown
}

// PickDirection is the structured over/under attribution for total picks,
// recorded at prediction time rather than parsed back out of display text.
type PickDirection string

const (
	DirectionNone  PickDirection = ""
	DirectionOver  PickDirection = "Over"
	DirectionUnder PickDirection = "Under"
)

// BestBetEntry is one logged pick in the append-only best-bets ledger.
// Identity is (date, type, rank); result fields are the only mutable part.
type BestBetEntry struct {
	ID int `db:"id"`

	PickDate time.Time `db:"pick_date"`
	BetType  BetType   `db:"bet_type"`
	Rank     int       `db:"rank"`

	HomeTeam string `db:"home_team"`
	AwayTeam string `db:"away_team"`

	Line      sql.NullFloat64 `db:"line"`
	ModelPick string          `db:"model_pick"` // display text, e.g. "NYY -1.3 (vs -1.5)"

	// Structured attribution, set when the pick is generated. PickSide is
	// empty for total picks, PickDirection empty for spread picks.
	PickSide      Side          `db:"pick_side"`
	PickDirection PickDirection `db:"pick_direction"`

	Confidence Confidence      `db:"confidence"`
	Edge       sql.NullFloat64 `db:"edge"` // spread picks only

	Result  BetResult     `db:"result"`
	Correct sql.NullInt32 `db:"correct"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DateKey returns the pick's day in DateLayout form.
func (e *BestBetEntry) DateKey() string {
	return e.PickDate.Format(DateLayout)
}

// Confidence is an ordinal tier, 0 (no edge) through 5 (max). It is stored
// and compared as an integer so "at least tier N" filters are well defined.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceTier1
	ConfidenceTier2
	ConfidenceTier3
	ConfidenceTier4
	ConfidenceTier5
)

// AtLeast reports whether c meets the given minimum tier.
func (c Confidence) AtLeast(min Confidence) bool {
	return c >= min
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceTier1:
		return "tier-1"
	case ConfidenceTier2:
		return "tier-2"
	case ConfidenceTier3:
		return "tier-3"
	case ConfidenceTier4:
		return "tier-4"
	case ConfidenceTier5:
		return "tier-5"
	default:
		return "no-edge"
	}
}

// Spread-edge tier cutoffs, in predicted-margin runs versus the posted line.
var spreadEdgeCuts = [...]float64{2.35, 2.45, 2.55, 2.65, 2.75}

// Probability tier cutoffs for over/under classifications.
var totalProbCuts = [...]float64{0.50, 0.55, 0.60, 0.65, 0.70}

// SpreadConfidence maps an absolute spread edge to a confidence tier.
func SpreadConfidence(edge float64) Confidence {
	return tierFor(edge, spreadEdgeCuts[:])
}

// TotalConfidence maps a classifier probability to a confidence tier.
func TotalConfidence(prob float64) Confidence {
	return tierFor(prob, totalProbCuts[:])
}

func tierFor(v float64, cuts []float64) Confidence {
	tier := ConfidenceNone
	for i, cut := range cuts {
		if v >= cut {
			tier = Confidence(i + 1)
		}
	}
	return tier
}
