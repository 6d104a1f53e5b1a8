package reconcile

import (
	"database/sql"
	"testing"
	"time"

	"mlb_edge/pipeline/internal/models"

	"github.com/stretchr/testify/assert"
)

func outcome(home, away string, hs, as int) models.MergedGame {
	g := models.MergedGame{
		GameDate:      testDay,
		HomeTeam:      home,
		AwayTeam:      away,
		HomeScore:     hs,
		AwayScore:     as,
		HomeMoneyline: -150,
		AwayMoneyline: 130,
	}
	Label(&g)
	return g
}

func spreadEntry(side models.Side, line float64) *models.BestBetEntry {
	return &models.BestBetEntry{
		PickDate: testDay,
		BetType:  models.BetSpread,
		HomeTeam: "NYY",
		AwayTeam: "BOS",
		Line:     sql.NullFloat64{Float64: line, Valid: true},
		PickSide: side,
	}
}

func totalEntry(dir models.PickDirection, line float64) *models.BestBetEntry {
	return &models.BestBetEntry{
		PickDate:      testDay,
		BetType:       models.BetTotal,
		HomeTeam:      "NYY",
		AwayTeam:      "BOS",
		Line:          sql.NullFloat64{Float64: line, Valid: true},
		PickDirection: dir,
	}
}

func TestScore_SpreadHomeCover(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 6, 2)}

	result, correct := Score(spreadEntry(models.SideHome, -1.5), outcomes)
	assert.Equal(t, models.ResultWin, result)
	assert.Equal(t, int32(1), correct.Int32)
	assert.True(t, correct.Valid)
}

func TestScore_SpreadAwayPick(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 6, 2)}

	// Away pick needs -margin > line: -4 > 1.5 is false.
	result, correct := Score(spreadEntry(models.SideAway, 1.5), outcomes)
	assert.Equal(t, models.ResultLoss, result)
	assert.Equal(t, int32(0), correct.Int32)
}

func TestScore_SpreadExactlyOnLineIsLoss(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 5, 3)}

	// Margin 2 vs line 2.0: not a cover, settles as a loss.
	result, _ := Score(spreadEntry(models.SideHome, 2.0), outcomes)
	assert.Equal(t, models.ResultLoss, result)
}

func TestScore_TotalOverAndUnder(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 6, 3)}

	result, correct := Score(totalEntry(models.DirectionOver, 8.5), outcomes)
	assert.Equal(t, models.ResultWin, result)
	assert.Equal(t, int32(1), correct.Int32)

	result, correct = Score(totalEntry(models.DirectionUnder, 8.5), outcomes)
	assert.Equal(t, models.ResultLoss, result)
	assert.Equal(t, int32(0), correct.Int32)
}

func TestScore_NoOutcomeYetIsPending(t *testing.T) {
	result, correct := Score(spreadEntry(models.SideHome, -1.5), nil)
	assert.Equal(t, models.ResultPending, result)
	assert.False(t, correct.Valid)
}

func TestScore_MissingLineIsPending(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 6, 2)}
	entry := spreadEntry(models.SideHome, 0)
	entry.Line = sql.NullFloat64{}

	result, correct := Score(entry, outcomes)
	assert.Equal(t, models.ResultPending, result)
	assert.False(t, correct.Valid)
}

func TestScore_DifferentDateDoesNotMatch(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 6, 2)}
	entry := spreadEntry(models.SideHome, -1.5)
	entry.PickDate = testDay.Add(24 * time.Hour)

	result, _ := Score(entry, outcomes)
	assert.Equal(t, models.ResultPending, result)
}

func TestScore_LegacyTextAttribution(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 6, 2)}

	entry := spreadEntry("", -1.5)
	entry.ModelPick = "NYY -1.3 (vs -1.5)"
	result, _ := Score(entry, outcomes)
	assert.Equal(t, models.ResultWin, result, "home team named in pick text")

	entry = totalEntry(models.DirectionNone, 8.5)
	entry.ModelPick = "Under (vs 8.5)"
	result, _ = Score(entry, outcomes)
	assert.Equal(t, models.ResultWin, result, "total 8 stays under 8.5")
}

func TestScore_UnattributablePickIsUnknown(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 6, 2)}

	entry := totalEntry(models.DirectionNone, 8.5)
	entry.ModelPick = "no clear direction"
	result, correct := Score(entry, outcomes)
	assert.Equal(t, models.ResultUnknown, result)
	assert.False(t, correct.Valid)
}

func TestScore_Idempotent(t *testing.T) {
	outcomes := []models.MergedGame{outcome("NYY", "BOS", 6, 2)}
	entry := spreadEntry(models.SideHome, -1.5)

	r1, c1 := Score(entry, outcomes)
	r2, c2 := Score(entry, outcomes)
	assert.Equal(t, r1, r2)
	assert.Equal(t, c1, c2)
}
