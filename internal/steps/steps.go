// Package steps defines the identifiers of connector pipeline stages and the
// options controlling which stages a run executes.
package steps

// StepID references one executable stage in the pipeline's step graph.
type StepID string

const (
	// StepBuild builds the connector image.
	StepBuild StepID = "build"
	// StepUnit runs the connector's unit test suite.
	StepUnit StepID = "unit"
	// StepIntegration runs the connector's integration test suite.
	StepIntegration StepID = "integration"
	// StepAcceptance runs the connector acceptance test suite.
	StepAcceptance StepID = "acceptance"
	// StepQaChecks runs the connector QA checks.
	StepQaChecks StepID = "qa_checks"
	// StepVersionIncCheck verifies the connector version was bumped.
	StepVersionIncCheck StepID = "version_inc_check"
)

// RunStepOptions controls step selection and failure behaviour for a run.
type RunStepOptions struct {
	FailFast   bool
	SkipSteps  []StepID
	StepParams map[StepID][]string
}

// Clone returns a deep copy so callers can extend the options without
// mutating the original.
func (o RunStepOptions) Clone() RunStepOptions {
	clone := RunStepOptions{FailFast: o.FailFast}
	if o.SkipSteps != nil {
		clone.SkipSteps = append([]StepID(nil), o.SkipSteps...)
	}
	if o.StepParams != nil {
		clone.StepParams = make(map[StepID][]string, len(o.StepParams))
		for id, params := range o.StepParams {
			clone.StepParams[id] = append([]string(nil), params...)
		}
	}
	return clone
}

// ShouldSkip reports whether the given step appears in the skip list.
func (o RunStepOptions) ShouldSkip(id StepID) bool {
	for _, skipped := range o.SkipSteps {
		if skipped == id {
			return true
		}
	}
	return false
}
