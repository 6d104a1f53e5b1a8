package models

// OddsSnapshot is a best-available odds view for a single game. Fields are
// nil when the source did not publish them.
type OddsSnapshot struct {
	HomeMoneyline *int
	AwayMoneyline *int
	PointSpread   *float64
	OverUnder     *float64
}

// HasMoneylines reports whether both moneylines are present.
func (o *OddsSnapshot) HasMoneylines() bool {
	return o != nil && o.HomeMoneyline != nil && o.AwayMoneyline != nil
}

// Complete reports whether every odds field is populated. Opening-line rows
// missing any field are dropped at ingest, mirroring the historical feed.
func (o *OddsSnapshot) Complete() bool {
	return o.HasMoneylines() && o.PointSpread != nil && o.OverUnder != nil
}

// Clone returns a deep copy so merged output never aliases feed records.
func (o *OddsSnapshot) Clone() *OddsSnapshot {
	if o == nil {
		return nil
	}
	c := &OddsSnapshot{}
	if o.HomeMoneyline != nil {
		v := *o.HomeMoneyline
		c.HomeMoneyline = &v
	}
	if o.AwayMoneyline != nil {
		v := *o.AwayMoneyline
		c.AwayMoneyline = &v
	}
	if o.PointSpread != nil {
		v := *o.PointSpread
		c.PointSpread = &v
	}
	if o.OverUnder != nil {
		v := *o.OverUnder
		c.OverUnder = &v
	}
	return c
}

// ImpliedProbability converts an American moneyline to a win probability in
// [0, 1]. A +150 dog implies 0.4; a -150 favorite implies 0.6.
func ImpliedProbability(moneyline int) float64 {
	ml := float64(moneyline)
	if ml > 0 {
		return 100 / (ml + 100)
	}
	return -ml / (-ml + 100)
}
