// Package api serves the pipeline's read side over HTTP: daily comparisons,
// the best-bets ledger, and the rolling accuracy summary.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/models"
	"mlb_edge/pipeline/internal/repository"
)

// API exposes read-only endpoints over the stored pipeline output.
type API struct {
	db *repository.Database
}

// New creates the API.
func New(db *repository.Database) *API {
	return &API{db: db}
}

// Router builds the HTTP routes.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", a.health)
	r.Get("/v1/comparisons/{date}", a.comparisonsByDate)
	r.Get("/v1/picks/{date}", a.picksByDate)
	r.Get("/v1/summary", a.summary)
	r.Get("/v1/winrates", a.winRates)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseDateParam(r *http.Request) (time.Time, bool) {
	d, err := time.Parse(models.DateLayout, chi.URLParam(r, "date"))
	return d, err == nil
}

// parseRange reads optional from/to query parameters, defaulting to the
// trailing 30 days.
func parseRange(r *http.Request) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("from"); v != "" {
		d, err := time.Parse(models.DateLayout, v)
		if err != nil {
			return from, to, false
		}
		from = d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := time.Parse(models.DateLayout, v)
		if err != nil {
			return from, to, false
		}
		to = d
	}
	return from, to, true
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Health(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) comparisonsByDate(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	games, err := a.db.Comparisons.GetByDate(r.Context(), date)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load comparisons")
		writeError(w, http.StatusInternalServerError, "failed to load comparisons")
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (a *API) picksByDate(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	picks, err := a.db.BestBets.GetByDate(r.Context(), date)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load picks")
		writeError(w, http.StatusInternalServerError, "failed to load picks")
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

// summaryResponse is the accuracy summary payload.
type summaryResponse struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	Games        int     `json:"games"`
	CorrectSides int     `json:"correct_sides"`
	FavoriteRate float64 `json:"favorite_rate"`
	Overs        int     `json:"overs"`
	Unders       int     `json:"unders"`
	TotalPushes  int     `json:"total_pushes"`
}

func (a *API) summary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "from/to must be YYYY-MM-DD")
		return
	}

	s, err := a.db.Comparisons.Summary(r.Context(), from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute summary")
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		From:         from.Format(models.DateLayout),
		To:           to.Format(models.DateLayout),
		Games:        s.Games,
		CorrectSides: s.CorrectSides,
		FavoriteRate: s.FavoriteRate(),
		Overs:        s.Overs,
		Unders:       s.Unders,
		TotalPushes:  s.TotalPushes,
	})
}

func (a *API) winRates(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "from/to must be YYYY-MM-DD")
		return
	}

	rates, err := a.db.BestBets.WinRates(r.Context(), from, to)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute win rates")
		writeError(w, http.StatusInternalServerError, "failed to compute win rates")
		return
	}

	type rateResponse struct {
		Date    string  `json:"date"`
		BetType string  `json:"bet_type"`
		Wins    int     `json:"wins"`
		Losses  int     `json:"losses"`
		Pending int     `json:"pending"`
		Rate    float64 `json:"rate"`
	}
	out := make([]rateResponse, 0, len(rates))
	for _, rate := range rates {
		out = append(out, rateResponse{
			Date:    rate.PickDate.Format(models.DateLayout),
			BetType: string(rate.BetType),
			Wins:    rate.Wins,
			Losses:  rate.Losses,
			Pending: rate.Pending,
			Rate:    rate.Rate(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
