package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/convoy-ci/convoy/internal/report"
)

// phase tracks the context lifecycle. A context moves through the phases
// exactly once: running while the guarded body executes, finalizing while
// teardown runs, done afterwards.
type phase int

const (
	phaseRunning phase = iota
	phaseFinalizing
	phaseDone
)

// Body is the guarded pipeline execution scope.
type Body func(ctx context.Context, c *ConnectorContext) error

// RunWithTeardown executes body and always runs the ordered teardown steps
// afterwards, whether body returned normally, returned an error or
// panicked. The error from the scope is reported through the report, the
// status check and the notification channels; it is never re-raised — the
// caller observes the computed final state instead.
func (c *ConnectorContext) RunWithTeardown(ctx context.Context, body Body) report.RunState {
	var runErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				runErr = fmt.Errorf("pipeline panicked: %v", r)
			}
		}()
		runErr = body(ctx, c)
	}()

	return c.teardown(ctx, runErr)
}

// teardown finalizes the run. Each step that calls an external collaborator
// is individually best-effort: a failure is logged and the remaining steps
// still run.
func (c *ConnectorContext) teardown(ctx context.Context, runErr error) report.RunState {
	c.phase = phaseFinalizing
	defer func() { c.phase = phaseDone }()

	c.stoppedAt = time.Now().UTC()

	c.finalState = DetermineFinalState(c.report, runErr)
	if runErr != nil {
		c.logger.Error(runErr, "an error was handled by the connector context")
	}

	if c.report == nil {
		c.logger.Error(nil, "no report was attached, this is probably due to an upstream error; substituting an empty report")
		c.report = report.NewEmpty(c.cfg.PipelineName, c.connector.TechnicalName, c.cfg.GitBranch, c.cfg.GitRevision, c.cfg.CIContext)
	}
	c.report.State = c.finalState
	c.report.StoppedAt = c.stoppedAt

	if c.ShouldSaveUpdatedSecrets() {
		if c.secretStore == nil {
			c.logger.Warn("updated secrets present but no secret store configured, skipping upload")
		} else if err := c.secretStore.Upload(ctx, c.connector.TechnicalName, c.updatedSecretsDir); err != nil {
			c.logger.Error(err, "failed to upload updated secrets")
		}
	}

	c.report.Print(c.out)

	if c.cfg.ShouldSaveReport {
		storage := c.reportStorage
		if !c.IsCI() {
			// Local runs keep reports on disk only.
			storage = nil
		}
		if err := c.report.Save(ctx, c.localReportDir, c.cfg.ReportOutputPrefix, storage); err != nil {
			c.logger.Error(err, "failed to save report")
		}
	}

	if c.statusUpdater != nil {
		if err := c.statusUpdater.Update(ctx, c.githubCommitStatus()); err != nil {
			c.logger.Error(err, "failed to update commit status check")
		}
	}

	if c.cfg.ShouldNotify() && c.notifier != nil {
		message, err := c.notificationMessage()
		if err != nil {
			c.logger.Error(err, "failed to build notification message")
		} else if err := c.notifier.Send(ctx, message, c.cfg.ReportingSlackChannel, c.cfg.SlackWebhook); err != nil {
			c.logger.Error(err, "failed to send notification")
		}
	}

	return c.finalState
}

// DetermineFinalState computes the terminal state from the attached report
// and the error captured at the scope boundary.
func DetermineFinalState(r *report.Report, runErr error) report.RunState {
	if runErr != nil {
		return report.StateError
	}
	if r == nil || !r.Success() {
		return report.StateFailure
	}
	return report.StateSuccessful
}
