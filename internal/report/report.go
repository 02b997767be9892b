// Package report models the outcome of a connector pipeline run and its
// persistence to local files and remote storage.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/convoy-ci/convoy/internal/steps"
	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

// RunState is the terminal status computed for a connector's pipeline run.
type RunState string

const (
	// StateSuccessful marks a run whose steps all completed.
	StateSuccessful RunState = "successful"
	// StateFailure marks a run with at least one failed step.
	StateFailure RunState = "failure"
	// StateError marks a run aborted by an execution error.
	StateError RunState = "error"
)

// StatusEmoji returns the slack-style marker for the state.
func (s RunState) StatusEmoji() string {
	switch s {
	case StateSuccessful:
		return ":white_check_mark:"
	case StateFailure:
		return ":x:"
	default:
		return ":bangbang:"
	}
}

// GithubState maps the run state onto the commit status API vocabulary.
func (s RunState) GithubState() string {
	switch s {
	case StateSuccessful:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "error"
	}
}

// Step result statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusPlanned = "planned"
)

// StepResult captures the outcome of a single pipeline step.
type StepResult struct {
	StepID      steps.StepID  `json:"step_id"`
	Status      string        `json:"status"`
	Description string        `json:"description,omitempty"`
	Duration    time.Duration `json:"duration_ns,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Report aggregates a run's identity, final state and step results.
type Report struct {
	RunID         string       `json:"run_id"`
	PipelineName  string       `json:"pipeline_name"`
	ConnectorName string       `json:"connector_name"`
	GitBranch     string       `json:"git_branch"`
	GitRevision   string       `json:"git_revision"`
	CIContext     string       `json:"ci_context,omitempty"`
	State         RunState     `json:"state"`
	StepResults   []StepResult `json:"step_results"`
	CreatedAt     time.Time    `json:"created_at"`
	StoppedAt     time.Time    `json:"stopped_at,omitempty"`
}

// New creates a Report for the given run identity with a fresh run ID.
func New(pipelineName, connectorName, gitBranch, gitRevision, ciContext string, results []StepResult) *Report {
	return &Report{
		RunID:         uuid.NewString(),
		PipelineName:  pipelineName,
		ConnectorName: connectorName,
		GitBranch:     gitBranch,
		GitRevision:   gitRevision,
		CIContext:     ciContext,
		StepResults:   append([]StepResult(nil), results...),
		CreatedAt:     time.Now().UTC(),
	}
}

// NewEmpty creates a default report with zero executed steps. Teardown
// substitutes it when the pipeline never attached a report.
func NewEmpty(pipelineName, connectorName, gitBranch, gitRevision, ciContext string) *Report {
	return New(pipelineName, connectorName, gitBranch, gitRevision, ciContext, nil)
}

// Success reports whether every executed step completed without failing.
// An empty result set is not a success: it means the run produced nothing.
func (r *Report) Success() bool {
	if r == nil || len(r.StepResults) == 0 {
		return false
	}
	for _, result := range r.StepResults {
		if result.Status == StatusFailed {
			return false
		}
	}
	return true
}

// FailedSteps returns the step identifiers that failed.
func (r *Report) FailedSteps() []steps.StepID {
	var failed []steps.StepID
	for _, result := range r.StepResults {
		if result.Status == StatusFailed {
			failed = append(failed, result.StepID)
		}
	}
	return failed
}

// Duration returns the wall-clock span of the run, zero until StoppedAt is
// recorded.
func (r *Report) Duration() time.Duration {
	if r.StoppedAt.IsZero() {
		return 0
	}
	return r.StoppedAt.Sub(r.CreatedAt)
}

// ToJSON serializes the report.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Storage persists serialized reports to a remote location.
type Storage interface {
	Save(ctx context.Context, key string, data []byte) error
}

// Save writes the report under localDir and, when storage is non-nil,
// uploads it under outputPrefix.
func (r *Report) Save(ctx context.Context, localDir, outputPrefix string, storage Storage) error {
	data, err := r.ToJSON()
	if err != nil {
		return convoyerrors.NewReportPersistError("", err)
	}

	fileName := fmt.Sprintf("%s.json", r.RunID)
	localPath := filepath.Join(localDir, fileName)
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return convoyerrors.NewReportPersistError(localPath, err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return convoyerrors.NewReportPersistError(localPath, err)
	}

	if storage != nil {
		key := path.Join(outputPrefix, r.ConnectorName, fileName)
		if err := storage.Save(ctx, key, data); err != nil {
			return convoyerrors.NewReportPersistError(key, err)
		}
	}
	return nil
}
