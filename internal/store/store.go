// Package store persists the local run ledger: one row per pipeline stage
// execution, kept in a SQLite file next to the working directory so that
// `trailshed runs` can show history without touching PostGIS.
package store

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of a recorded stage execution.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records a single execution of a pipeline stage.
type Run struct {
	ID         string    `json:"id"`
	Stage      string    `json:"stage"`
	Status     RunStatus `json:"status"`
	RowCount   int64     `json:"row_count"`
	Detail     string    `json:"detail,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Stage  string
	Status RunStatus
	Limit  int
	Offset int
}

// Ledger is the run history interface backed by SQLite.
type Ledger interface {
	Migrate(ctx context.Context) error
	StartRun(ctx context.Context, stage string) (*Run, error)
	FinishRun(ctx context.Context, runID string, status RunStatus, rowCount int64, detail string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	Close() error
}
