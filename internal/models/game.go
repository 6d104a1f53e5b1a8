package models

import (
	"database/sql"
	"time"
)

// DateLayout is the calendar-day format used for game keys and feed requests.
const DateLayout = "2006-01-02"

// Side identifies which side of a game a value refers to.
type Side string

const (
	SideHome Side = "Home"
	SideAway Side = "Away"
	// SidePush marks a tied outcome. Only meaningful as a Winner value.
	SidePush Side = "Push"
)

// GameRecord is one game as reported by a single source for a single day.
// Produced by a feed ingestor, immutable afterwards.
type GameRecord struct {
	Date     time.Time
	SourceID string // stable per-source game identifier, used for dedup

	HomeTeam string // raw or canonical, depending on pipeline stage
	AwayTeam string

	// Scores are nil until the game is final.
	HomeScore *int
	AwayScore *int
	Final     bool

	Odds *OddsSnapshot
}

// DateKey returns the record's reporting day in DateLayout form.
func (r *GameRecord) DateKey() string {
	return r.Date.Format(DateLayout)
}

// HasScores reports whether both final scores are present.
func (r *GameRecord) HasScores() bool {
	return r.HomeScore != nil && r.AwayScore != nil
}

// MergedGame is the join of a scoreboard record with the best available odds
// for the same game. Derived fields are computed once at merge time and are
// immutable afterwards.
type MergedGame struct {
	ID int `db:"id"`

	GameDate time.Time `db:"game_date"`
	HomeTeam string    `db:"home_team"`
	AwayTeam string    `db:"away_team"`

	HomeScore int `db:"home_score"`
	AwayScore int `db:"away_score"`

	HomeMoneyline int             `db:"home_moneyline"`
	AwayMoneyline int             `db:"away_moneyline"`
	PointSpread   sql.NullFloat64 `db:"point_spread"`
	OverUnder     sql.NullFloat64 `db:"over_under"`

	// Derived outcome labels.
	Winner      Side `db:"winner"`
	Favorite    Side `db:"favorite"`
	CorrectSide bool `db:"correct_side"`
	TotalRuns   int  `db:"total_runs"`
	OverHit     bool `db:"over_hit"`
	UnderHit    bool `db:"under_hit"`
	PushTotal   bool `db:"push_total"`

	CreatedAt time.Time `db:"created_at"`
}

// DateKey returns the merged game's day in DateLayout form.
func (m *MergedGame) DateKey() string {
	return m.GameDate.Format(DateLayout)
}

// Margin returns home score minus away score.
func (m *MergedGame) Margin() int {
	return m.HomeScore - m.AwayScore
}

// LineSummary aggregates how the market lines fared over a set of merged
// games. Mirrors the accuracy summary printed after each reconciliation run.
type LineSummary struct {
	Games        int
	CorrectSides int
	Overs        int
	Unders       int
	TotalPushes  int
}

// FavoriteRate returns the fraction of games where the moneyline favorite won.
func (s LineSummary) FavoriteRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.CorrectSides) / float64(s.Games)
}

// Summarize tallies line accuracy across merged games.
func Summarize(games []MergedGame) LineSummary {
	var s LineSummary
	for i := range games {
		g := &games[i]
		s.Games++
		if g.CorrectSide {
			s.CorrectSides++
		}
		if g.OverHit {
			s.Overs++
		}
		if g.UnderHit {
			s.Unders++
		}
		if g.PushTotal {
			s.TotalPushes++
		}
	}
	return s
}
