package main

import (
	"fmt"
	"strings"

	"github.com/convoy-ci/convoy/internal/pipeline"
	"github.com/convoy-ci/convoy/internal/report"
)

// WithSummary wires the connector test pipeline's notification text. The
// message mirrors the commit status vocabulary so both channels tell the same
// story.
func WithSummary() pipeline.Option {
	return pipeline.WithSummaryBuilder(pipeline.SummaryFunc(buildSummary))
}

func buildSummary(c *pipeline.ConnectorContext) (string, error) {
	cfg := c.Config()
	state := c.FinalState()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s run of %s is %s", state.StatusEmoji(), cfg.PipelineName, c.Connector().TechnicalName, state)
	fmt.Fprintf(&b, "\nBranch: %s", cfg.GitBranch)
	fmt.Fprintf(&b, "\nRevision: %s", shortRevision(cfg.GitRevision))
	if cfg.GhaWorkflowRunURL != "" {
		fmt.Fprintf(&b, "\nWorkflow: %s", cfg.GhaWorkflowRunURL)
	}

	if r := c.Report(); r != nil && state == report.StateFailure {
		failed := r.FailedSteps()
		if len(failed) > 0 {
			names := make([]string, 0, len(failed))
			for _, id := range failed {
				names = append(names, string(id))
			}
			fmt.Fprintf(&b, "\nFailed steps: %s", strings.Join(names, ", "))
		}
	}

	return b.String(), nil
}

func shortRevision(revision string) string {
	if len(revision) > 10 {
		return revision[:10]
	}
	return revision
}
