// Package store persists the digitization run ledger.
package store

import (
	"context"
	"time"

	"github.com/sells-group/digitize-cli/internal/pipeline"
)

// RunStatus tracks a run through its lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one digitization run: the source raster, the parameters it ran
// with, and the report it produced.
type Run struct {
	ID         string           `json:"id"`
	Source     string           `json:"source"`
	OutputPath string           `json:"output_path,omitempty"`
	Status     RunStatus        `json:"status"`
	Params     *pipeline.Params `json:"params,omitempty"`
	Report     *pipeline.Report `json:"report,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	Source string    `json:"source,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}

// Store defines the run ledger persistence interface.
type Store interface {
	CreateRun(ctx context.Context, source, outputPath string, params *pipeline.Params) (*Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status RunStatus) error
	UpdateRunReport(ctx context.Context, runID string, report *pipeline.Report) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	Migrate(ctx context.Context) error
	Close() error
}
