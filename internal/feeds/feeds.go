// Package feeds defines the contract between the reconciliation pipeline and
// the per-source ingestors. Each source turns a calendar day into an
// unordered batch of raw game records; everything downstream (normalization,
// identity resolution, merging) is source-agnostic.
package feeds

import (
	"context"
	"time"

	"mlb_edge/pipeline/internal/models"
)

// Source produces raw game records for a single reporting day.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// FetchDay returns every game the source reports for the given day.
	// Order is unspecified. An empty slice with nil error means the source
	// simply has nothing for that day.
	FetchDay(ctx context.Context, date time.Time) ([]models.GameRecord, error)
}
