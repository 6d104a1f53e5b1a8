package reconcile

import (
	"database/sql"
	"testing"

	"mlb_edge/pipeline/internal/models"

	"github.com/stretchr/testify/assert"
)

func labeledGame(hs, as int, total sql.NullFloat64) models.MergedGame {
	g := models.MergedGame{
		GameDate:      testDay,
		HomeTeam:      "NYY",
		AwayTeam:      "BOS",
		HomeScore:     hs,
		AwayScore:     as,
		HomeMoneyline: -150,
		AwayMoneyline: 130,
		OverUnder:     total,
	}
	Label(&g)
	return g
}

func TestLabel_WinnerAndTotal(t *testing.T) {
	g := labeledGame(5, 3, sql.NullFloat64{Float64: 7.5, Valid: true})

	assert.Equal(t, models.SideHome, g.Winner)
	assert.Equal(t, 8, g.TotalRuns)
	assert.True(t, g.OverHit)
	assert.False(t, g.UnderHit)
	assert.False(t, g.PushTotal)
}

func TestLabel_TiedScoreIsPush(t *testing.T) {
	g := labeledGame(4, 4, sql.NullFloat64{})

	assert.Equal(t, models.SidePush, g.Winner)
	assert.False(t, g.CorrectSide)
}

func TestLabel_TotalOnTheLineIsPush(t *testing.T) {
	g := labeledGame(4, 4, sql.NullFloat64{Float64: 8.0, Valid: true})

	assert.True(t, g.PushTotal)
	assert.False(t, g.OverHit)
	assert.False(t, g.UnderHit)
}

func TestLabel_AbsentTotalLeavesFlagsFalse(t *testing.T) {
	g := labeledGame(5, 3, sql.NullFloat64{})

	assert.False(t, g.OverHit)
	assert.False(t, g.UnderHit)
	assert.False(t, g.PushTotal)
}

func TestLabel_FavoriteByLowerMoneyline(t *testing.T) {
	g := models.MergedGame{
		HomeScore:     2,
		AwayScore:     7,
		HomeMoneyline: 120,
		AwayMoneyline: -140,
	}
	Label(&g)

	assert.Equal(t, models.SideAway, g.Favorite)
	assert.Equal(t, models.SideAway, g.Winner)
	assert.True(t, g.CorrectSide)
}

func TestLabel_ExactlyOneTotalFlagWhenLinePresent(t *testing.T) {
	for hs := 0; hs <= 6; hs++ {
		g := labeledGame(hs, 4, sql.NullFloat64{Float64: 8.0, Valid: true})
		set := 0
		for _, flag := range []bool{g.OverHit, g.UnderHit, g.PushTotal} {
			if flag {
				set++
			}
		}
		assert.Equal(t, 1, set, "home score %d", hs)
	}
}
