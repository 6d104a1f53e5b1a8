// Package espn ingests final scores from the public ESPN MLB scoreboard API.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/models"
)

const sourceName = "espn_scoreboard"

// scoreboard date format expected by the ESPN API
const espnDateLayout = "20060102"

// Client fetches the daily MLB scoreboard.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates an ESPN scoreboard client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		maxRetries: 3,
		retryDelay: 1 * time.Second,
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

// scoreboardResponse mirrors the subset of the ESPN payload we consume.
type scoreboardResponse struct {
	Events []struct {
		ID           string `json:"id"`
		Competitions []struct {
			Competitors []struct {
				HomeAway string `json:"homeAway"`
				Score    string `json:"score"`
				Team     struct {
					Abbreviation string `json:"abbreviation"`
					DisplayName  string `json:"displayName"`
				} `json:"team"`
			} `json:"competitors"`
			Status struct {
				Type struct {
					Completed bool   `json:"completed"`
					Name      string `json:"name"`
				} `json:"type"`
			} `json:"status"`
		} `json:"competitions"`
	} `json:"events"`
}

// FetchDay returns the completed games on the scoreboard for the given day.
// Games still in progress or not started are skipped.
func (c *Client) FetchDay(ctx context.Context, date time.Time) ([]models.GameRecord, error) {
	url := fmt.Sprintf("%s/scoreboard?dates=%s", c.baseURL, date.Format(espnDateLayout))

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scoreboard: %w", err)
	}

	var sb scoreboardResponse
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scoreboard: %w", err)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	records := make([]models.GameRecord, 0, len(sb.Events))
	for _, event := range sb.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]

		if !comp.Status.Type.Completed {
			log.Debug().
				Str("event_id", event.ID).
				Str("status", comp.Status.Type.Name).
				Msg("Skipping game that is not final")
			continue
		}

		rec := models.GameRecord{
			Date:     day,
			SourceID: event.ID,
			Final:    true,
		}
		ok := true
		for _, competitor := range comp.Competitors {
			score, err := strconv.Atoi(competitor.Score)
			if err != nil {
				log.Warn().
					Str("event_id", event.ID).
					Str("score", competitor.Score).
					Msg("Unparseable score on completed game")
				ok = false
				break
			}
			name := competitor.Team.Abbreviation
			if name == "" {
				name = competitor.Team.DisplayName
			}
			switch competitor.HomeAway {
			case "home":
				rec.HomeTeam = name
				rec.HomeScore = &score
			case "away":
				rec.AwayTeam = name
				rec.AwayScore = &score
			}
		}
		if !ok || rec.HomeTeam == "" || rec.AwayTeam == "" {
			continue
		}
		records = append(records, rec)
	}

	log.Debug().
		Str("date", day.Format(models.DateLayout)).
		Int("events", len(sb.Events)).
		Int("final", len(records)).
		Msg("Fetched ESPN scoreboard")

	return records, nil
}

// get performs a GET request with retry on transient failures.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying scoreboard request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MLBEdgeBot/1.0)")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("scoreboard request failed: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			if attempt < c.maxRetries {
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("scoreboard returned retryable status %d", resp.StatusCode)
			if attempt < c.maxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr
		default:
			return nil, fmt.Errorf("scoreboard returned status %d: %s", resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}
