package store

import (
	"context"
	"time"

	"github.com/influmetrics/integrations-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Stage  string          `json:"stage,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the integration pipeline.
// Parsed platform stats and enrichment results are cached per ad link so
// re-runs skip the YouTube and LLM calls.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, stage, source string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, summary *model.RunSummary) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Parsed platform stats cache
	GetCachedStats(ctx context.Context, url string) (*model.PlatformStats, error)
	SetCachedStats(ctx context.Context, stats model.PlatformStats, ttl time.Duration) error
	DeleteExpiredStats(ctx context.Context) (int, error)

	// Enrichment cache
	GetCachedEnrichment(ctx context.Context, url string) (*model.EnrichmentRecord, error)
	SetCachedEnrichment(ctx context.Context, url string, rec *model.EnrichmentRecord, ttl time.Duration) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
