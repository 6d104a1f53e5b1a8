// Package book ingests line snapshots from the in-house sportsbook scrape
// service. The snapshot is a secondary source: when present, its spread and
// total are preferred over the opening line.
package book

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"mlb_edge/pipeline/internal/models"
)

const sourceName = "book_snapshot"

// Client fetches sportsbook line snapshots for a day.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a snapshot client. An empty baseURL disables the source:
// FetchDay returns no records and no error.
func NewClient(baseURL string, timeout time.Duration, rps float64, burst int) *Client {
	return &Client{
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name implements feeds.Source.
func (c *Client) Name() string {
	return sourceName
}

// snapshotRow mirrors one scraped line from the snapshot service.
type snapshotRow struct {
	GameID        string   `json:"game_id"`
	HomeTeam      string   `json:"home_team"`
	AwayTeam      string   `json:"away_team"`
	Spread        *float64 `json:"spread"`
	Total         *float64 `json:"total"`
	HomeMoneyline *int     `json:"home_moneyline"`
	AwayMoneyline *int     `json:"away_moneyline"`
}

// FetchDay returns the scraped lines for the given day.
func (c *Client) FetchDay(ctx context.Context, date time.Time) ([]models.GameRecord, error) {
	if c.baseURL == "" {
		log.Debug().Msg("Book snapshot source not configured, skipping")
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	url := fmt.Sprintf("%s/lines?date=%s", c.baseURL, day.Format(models.DateLayout))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot service returned status %d: %s", resp.StatusCode, string(body))
	}

	var rows []snapshotRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	records := make([]models.GameRecord, 0, len(rows))
	for _, row := range rows {
		if row.HomeTeam == "" || row.AwayTeam == "" {
			log.Warn().Str("game_id", row.GameID).Msg("Snapshot row missing team names")
			continue
		}
		records = append(records, models.GameRecord{
			Date:     day,
			SourceID: row.GameID,
			HomeTeam: row.HomeTeam,
			AwayTeam: row.AwayTeam,
			Odds: &models.OddsSnapshot{
				HomeMoneyline: row.HomeMoneyline,
				AwayMoneyline: row.AwayMoneyline,
				PointSpread:   row.Spread,
				OverUnder:     row.Total,
			},
		})
	}

	log.Debug().
		Str("date", day.Format(models.DateLayout)).
		Int("rows", len(rows)).
		Int("usable", len(records)).
		Msg("Fetched book snapshot")

	return records, nil
}
