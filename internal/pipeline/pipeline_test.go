package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"mlb_edge/pipeline/internal/models"
	"mlb_edge/pipeline/internal/predictor"
	"mlb_edge/pipeline/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2025, 3, 27, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// fakeSource serves canned records, or fails.
type fakeSource struct {
	name    string
	records map[string][]models.GameRecord
	err     error
	calls   int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchDay(_ context.Context, date time.Time) ([]models.GameRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[date.Format(models.DateLayout)], nil
}

// fakePredictor returns one fixed prediction per matchup.
type fakePredictor struct {
	preds []predictor.Prediction
	err   error
}

func (f *fakePredictor) Predict(_ context.Context, _ time.Time, _ []models.GameRecord) ([]predictor.Prediction, error) {
	return f.preds, f.err
}

// memStores is an in-memory Stores implementation.
type memStores struct {
	scores      []models.GameRecord
	comparisons []models.MergedGame
	picks       []models.BestBetEntry
	nextID      int
}

func (m *memStores) UpsertScores(_ context.Context, recs []models.GameRecord) error {
	m.scores = append(m.scores, recs...)
	return nil
}

func (m *memStores) AppendComparisons(_ context.Context, games []models.MergedGame) (int, error) {
	added := 0
	for _, g := range games {
		dup := false
		for _, have := range m.comparisons {
			if have.DateKey() == g.DateKey() && have.HomeTeam == g.HomeTeam && have.AwayTeam == g.AwayTeam {
				dup = true
				break
			}
		}
		if !dup {
			m.comparisons = append(m.comparisons, g)
			added++
		}
	}
	return added, nil
}

func (m *memStores) ComparisonsByDate(_ context.Context, date time.Time) ([]models.MergedGame, error) {
	key := date.Format(models.DateLayout)
	var out []models.MergedGame
	for _, g := range m.comparisons {
		if g.DateKey() == key {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStores) AppendPicks(_ context.Context, date time.Time, entries []models.BestBetEntry) (bool, error) {
	key := date.Format(models.DateLayout)
	for _, have := range m.picks {
		if have.DateKey() == key {
			return false, nil
		}
	}
	for _, e := range entries {
		m.nextID++
		e.ID = m.nextID
		m.picks = append(m.picks, e)
	}
	return true, nil
}

func (m *memStores) UnresolvedPicks(_ context.Context) ([]models.BestBetEntry, error) {
	var out []models.BestBetEntry
	for _, e := range m.picks {
		if !e.Result.Resolved() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStores) UpdatePickResults(_ context.Context, entries []models.BestBetEntry) error {
	for _, update := range entries {
		for i := range m.picks {
			if m.picks[i].ID == update.ID {
				m.picks[i].Result = update.Result
				m.picks[i].Correct = update.Correct
			}
		}
	}
	return nil
}

func testScoreboard() *fakeSource {
	return &fakeSource{
		name: "scoreboard",
		records: map[string][]models.GameRecord{
			testDay.Format(models.DateLayout): {
				{
					Date: testDay, SourceID: "e1",
					HomeTeam: "NYY", AwayTeam: "BOS",
					HomeScore: intPtr(6), AwayScore: intPtr(2), Final: true,
				},
			},
		},
	}
}

func testOdds() *fakeSource {
	return &fakeSource{
		name: "odds",
		records: map[string][]models.GameRecord{
			testDay.Format(models.DateLayout): {
				{
					Date: testDay, SourceID: "o1",
					HomeTeam: "New York Yankees", AwayTeam: "Boston Red Sox",
					Odds: &models.OddsSnapshot{
						HomeMoneyline: intPtr(-150), AwayMoneyline: intPtr(130),
						PointSpread: floatPtr(-1.5), OverUnder: floatPtr(8.5),
					},
				},
			},
		},
	}
}

func testPipeline(stores Stores, pred predictor.Predictor, scoreboard, odds, book *fakeSource) *Pipeline {
	return New(Options{
		Scoreboard: scoreboard,
		Odds:       odds,
		Book:       book,
		Predictor:  pred,
		Stores:     stores,
		Clamp:      reconcile.DefaultClamp,
		Picks:      predictor.PickConfig{PerDay: 5},
	})
}

func TestRunDate_MergesAndPersists(t *testing.T) {
	stores := &memStores{}
	p := testPipeline(stores, nil, testScoreboard(), testOdds(), &fakeSource{name: "book"})

	require.NoError(t, p.RunDate(context.Background(), testDay))

	require.Len(t, stores.comparisons, 1)
	g := stores.comparisons[0]
	assert.Equal(t, "NYY", g.HomeTeam)
	assert.Equal(t, "BOS", g.AwayTeam)
	assert.Equal(t, models.SideHome, g.Winner)
	assert.Len(t, stores.scores, 1, "Raw scoreboard rows persisted")
}

func TestRunDate_FeedFailureDegradesToEmpty(t *testing.T) {
	stores := &memStores{}
	odds := testOdds()
	odds.err = errors.New("upstream down")
	p := testPipeline(stores, nil, testScoreboard(), odds, &fakeSource{name: "book"})

	require.NoError(t, p.RunDate(context.Background(), testDay), "One dead feed must not fail the run")
	assert.Empty(t, stores.comparisons, "Inner join with empty odds yields nothing")
	assert.Len(t, stores.scores, 1, "Scoreboard side still persisted")
}

func TestRunDate_SecondaryOverridesLines(t *testing.T) {
	stores := &memStores{}
	book := &fakeSource{
		name: "book",
		records: map[string][]models.GameRecord{
			testDay.Format(models.DateLayout): {
				{
					Date: testDay, SourceID: "b1",
					HomeTeam: "NYY", AwayTeam: "BOS",
					Odds: &models.OddsSnapshot{PointSpread: floatPtr(-1.0)},
				},
			},
		},
	}
	p := testPipeline(stores, nil, testScoreboard(), testOdds(), book)

	require.NoError(t, p.RunDate(context.Background(), testDay))
	require.Len(t, stores.comparisons, 1)
	assert.Equal(t, -1.0, stores.comparisons[0].PointSpread.Float64)
	assert.Equal(t, 8.5, stores.comparisons[0].OverUnder.Float64)
}

func TestRunDate_PicksLoggedAndSettled(t *testing.T) {
	stores := &memStores{}
	pred := &fakePredictor{
		preds: []predictor.Prediction{
			{HomeTeam: "NYY", AwayTeam: "BOS", PredictedMargin: 1.3, OverProbability: 0.62},
		},
	}
	p := testPipeline(stores, pred, testScoreboard(), testOdds(), &fakeSource{name: "book"})

	require.NoError(t, p.RunDate(context.Background(), testDay))

	require.Len(t, stores.picks, 2, "One spread pick and one total pick")
	for _, pick := range stores.picks {
		assert.True(t, pick.Result.Resolved(), "Same-run outcomes settle the picks: %s", pick.BetType)
	}
}

func TestRunDate_RerunDoesNotDuplicate(t *testing.T) {
	stores := &memStores{}
	pred := &fakePredictor{
		preds: []predictor.Prediction{
			{HomeTeam: "NYY", AwayTeam: "BOS", PredictedMargin: 1.3, OverProbability: 0.62},
		},
	}
	p := testPipeline(stores, pred, testScoreboard(), testOdds(), &fakeSource{name: "book"})

	require.NoError(t, p.RunDate(context.Background(), testDay))
	require.NoError(t, p.RunDate(context.Background(), testDay))

	assert.Len(t, stores.comparisons, 1, "Comparisons append-only by game key")
	assert.Len(t, stores.picks, 2, "Picks date-guarded")
}

func TestRunDate_PredictorFailureDoesNotFailRun(t *testing.T) {
	stores := &memStores{}
	pred := &fakePredictor{err: errors.New("model service 500")}
	p := testPipeline(stores, pred, testScoreboard(), testOdds(), &fakeSource{name: "book"})

	require.NoError(t, p.RunDate(context.Background(), testDay))
	assert.Len(t, stores.comparisons, 1, "History still written")
	assert.Empty(t, stores.picks)
}

func TestRunRange_IsolatesFailedDays(t *testing.T) {
	stores := &memStores{}
	p := testPipeline(stores, nil, testScoreboard(), testOdds(), &fakeSource{name: "book"})

	from := testDay.AddDate(0, 0, -1)
	to := testDay.AddDate(0, 0, 1)
	require.NoError(t, p.RunRange(context.Background(), from, to))

	assert.Len(t, stores.comparisons, 1, "Only the day with data produces rows")
}

func TestRunRange_StopsOnCancelledContext(t *testing.T) {
	stores := &memStores{}
	scoreboard := testScoreboard()
	p := testPipeline(stores, nil, scoreboard, testOdds(), &fakeSource{name: "book"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.RunRange(ctx, testDay, testDay.AddDate(0, 0, 10))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, scoreboard.calls)
}
