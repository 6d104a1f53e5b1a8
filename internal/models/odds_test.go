package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 0.6, ImpliedProbability(-150), 0.0001)
	assert.InDelta(t, 0.4, ImpliedProbability(150), 0.0001)
	assert.InDelta(t, 0.5, ImpliedProbability(100), 0.0001)
	assert.InDelta(t, 0.5, ImpliedProbability(-100), 0.0001)

	// A shorter line always implies a higher win probability, so favorite
	// selection by probability matches favorite selection by moneyline.
	assert.Greater(t, ImpliedProbability(-180), ImpliedProbability(-120))
	assert.Greater(t, ImpliedProbability(-110), ImpliedProbability(120))
	assert.Greater(t, ImpliedProbability(105), ImpliedProbability(140))
}

func TestOddsSnapshotComplete(t *testing.T) {
	hm, am := -150, 130
	spread, total := -1.5, 8.5

	full := &OddsSnapshot{
		HomeMoneyline: &hm,
		AwayMoneyline: &am,
		PointSpread:   &spread,
		OverUnder:     &total,
	}
	assert.True(t, full.Complete())

	cases := map[string]*OddsSnapshot{
		"nil snapshot":      nil,
		"missing home ml":   {AwayMoneyline: &am, PointSpread: &spread, OverUnder: &total},
		"missing away ml":   {HomeMoneyline: &hm, PointSpread: &spread, OverUnder: &total},
		"missing spread":    {HomeMoneyline: &hm, AwayMoneyline: &am, OverUnder: &total},
		"missing overunder": {HomeMoneyline: &hm, AwayMoneyline: &am, PointSpread: &spread},
	}
	for name, snap := range cases {
		assert.False(t, snap.Complete(), name)
	}
}
