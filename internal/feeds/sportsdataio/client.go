// Package sportsdataio ingests pregame odds from the SportsDataIO MLB API.
// The first pregame entry for a game is treated as the opening line.
package sportsdataio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/models"
)

const sourceName = "sportsdataio_odds"

// Client is the SportsDataIO API client.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new SportsDataIO API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Max 10 concurrent requests against the odds API.
	rateLimiter := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		rateLimiter <- struct{}{}
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rateLimiter,
		maxRetries:  3,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Name implements feeds.Source.
func (c *Client) Name() string {
	return sourceName
}

// gameOdds mirrors the GameOddsByDate payload.
type gameOdds struct {
	GameID      int    `json:"GameId"`
	HomeTeam    string `json:"HomeTeamName"`
	AwayTeam    string `json:"AwayTeamName"`
	PregameOdds []struct {
		HomeMoneyLine   *int     `json:"HomeMoneyLine"`
		AwayMoneyLine   *int     `json:"AwayMoneyLine"`
		HomePointSpread *float64 `json:"HomePointSpread"`
		OverUnder       *float64 `json:"OverUnder"`
		Sportsbook      string   `json:"Sportsbook"`
	} `json:"PregameOdds"`
}

// FetchDay returns one record per game with its opening pregame line.
// Games whose first pregame entry is missing any market are skipped; a
// partial line cannot seed a comparison row.
func (c *Client) FetchDay(ctx context.Context, date time.Time) ([]models.GameRecord, error) {
	// SportsDataIO wants dates like 2025-MAR-27.
	path := fmt.Sprintf("odds/json/GameOddsByDate/%s", strings.ToUpper(date.Format("2006-Jan-02")))

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch game odds: %w", err)
	}

	var games []gameOdds
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game odds: %w", err)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	records := make([]models.GameRecord, 0, len(games))
	for _, game := range games {
		if len(game.PregameOdds) == 0 {
			log.Debug().
				Int("game_id", game.GameID).
				Msg("Game has no pregame odds yet")
			continue
		}
		opener := game.PregameOdds[0]
		odds := &models.OddsSnapshot{
			HomeMoneyline: opener.HomeMoneyLine,
			AwayMoneyline: opener.AwayMoneyLine,
			PointSpread:   opener.HomePointSpread,
			OverUnder:     opener.OverUnder,
		}
		if !odds.Complete() {
			log.Warn().
				Int("game_id", game.GameID).
				Str("sportsbook", opener.Sportsbook).
				Msg("Opening line is incomplete, skipping game")
			continue
		}

		records = append(records, models.GameRecord{
			Date:     day,
			SourceID: strconv.Itoa(game.GameID),
			HomeTeam: game.HomeTeam,
			AwayTeam: game.AwayTeam,
			Odds:     odds,
		})
	}

	log.Debug().
		Str("date", day.Format(models.DateLayout)).
		Int("games", len(games)).
		Int("usable", len(records)).
		Msg("Fetched opening odds")

	return records, nil
}

// get performs a GET request to the SportsDataIO API with retry logic and rate limiting.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		// Rate limiting: acquire semaphore
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.rateLimiter:
		}

		body, status, err := c.doRequest(ctx, url)
		c.rateLimiter <- struct{}{}
		if err != nil {
			lastErr = err
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch status {
		case http.StatusOK:
			return body, nil

		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("API returned retryable status %d: %s", status, string(body))
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", status).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusUnauthorized, http.StatusForbidden:
			// Don't retry auth errors
			return nil, fmt.Errorf("API authentication failed (status %d): %s", status, string(body))

		default:
			return nil, fmt.Errorf("API returned status %d: %s", status, string(body))
		}
	}

	return nil, lastErr
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mlb-edge/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}
