// Package predictor talks to the external model service and turns its daily
// predictions into ranked picks for the best-bets ledger.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/models"
)

// Prediction is the model's view of one game, keyed by canonical team codes.
type Prediction struct {
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`

	// PredictedMargin is home score minus away score, in runs.
	PredictedMargin float64 `json:"predicted_margin"`

	// OverProbability is the classifier probability that the game total
	// lands over the posted line.
	OverProbability float64 `json:"over_probability"`
}

// Predictor produces model predictions for a day's slate.
type Predictor interface {
	Predict(ctx context.Context, date time.Time, games []models.GameRecord) ([]Prediction, error)
}

// Client calls the model service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a model service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// predictRequest is the slate sent to the model service.
type predictRequest struct {
	Date  string        `json:"date"`
	Games []gameFeature `json:"games"`
}

type gameFeature struct {
	HomeTeam      string   `json:"home_team"`
	AwayTeam      string   `json:"away_team"`
	HomeMoneyline *int     `json:"home_moneyline,omitempty"`
	AwayMoneyline *int     `json:"away_moneyline,omitempty"`
	PointSpread   *float64 `json:"point_spread,omitempty"`
	OverUnder     *float64 `json:"over_under,omitempty"`
}

// Predict posts the day's slate and returns the model's predictions.
func (c *Client) Predict(ctx context.Context, date time.Time, games []models.GameRecord) ([]Prediction, error) {
	features := make([]gameFeature, 0, len(games))
	for i := range games {
		g := &games[i]
		f := gameFeature{
			HomeTeam: g.HomeTeam,
			AwayTeam: g.AwayTeam,
		}
		if g.Odds != nil {
			f.HomeMoneyline = g.Odds.HomeMoneyline
			f.AwayMoneyline = g.Odds.AwayMoneyline
			f.PointSpread = g.Odds.PointSpread
			f.OverUnder = g.Odds.OverUnder
		}
		features = append(features, f)
	}

	payload, err := json.Marshal(predictRequest{
		Date:  date.Format(models.DateLayout),
		Games: features,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	url := fmt.Sprintf("%s/predictions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model service returned status %d: %s", resp.StatusCode, string(body))
	}

	var preds []Prediction
	if err := json.Unmarshal(body, &preds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal predictions: %w", err)
	}

	log.Debug().
		Str("date", date.Format(models.DateLayout)).
		Int("games", len(games)).
		Int("predictions", len(preds)).
		Msg("Fetched model predictions")

	return preds, nil
}
