package model

import "time"

// RunStatus tracks a pipeline run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one execution of a pipeline stage over a source table.
type Run struct {
	ID        string      `json:"id"`
	Stage     string      `json:"stage"`
	Source    string      `json:"source"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RunSummary is the recorded outcome of a completed run.
type RunSummary struct {
	TotalRows     int      `json:"total_rows"`
	UniqueRows    int      `json:"unique_rows"`
	ParseableURLs int      `json:"parseable_urls"`
	Warnings      []string `json:"warnings,omitempty"`
}
