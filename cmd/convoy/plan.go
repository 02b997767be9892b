package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/convoy-ci/convoy/internal/connector"
	"github.com/convoy-ci/convoy/internal/gitinfo"
	"github.com/convoy-ci/convoy/internal/github"
	"github.com/convoy-ci/convoy/internal/logger"
	"github.com/convoy-ci/convoy/internal/pipeline"
	"github.com/convoy-ci/convoy/internal/report"
	"github.com/convoy-ci/convoy/internal/secrets"
	"github.com/convoy-ci/convoy/internal/slack"
	"github.com/convoy-ci/convoy/internal/steps"
)

type planOptions struct {
	PipelineName  string
	Local         bool
	CodeTestsOnly bool
	FailFast      bool
	SkipSteps     []string
	Platforms     []string
	DiffedBranch  string
	WorkflowURL   string
	CIContext     string
}

func newPlanCmd(flags *rootFlags, log *logger.Logger) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan <connector-dir> [connector-dir...]",
		Short: "Resolve each connector's effective test plan and publish the run report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePlanArgs(args); err != nil {
				return err
			}

			cfg, err := loadSettings(flags.settingsPath)
			if err != nil {
				return err
			}

			runLog := log
			if flags.verbose {
				runLog, err = logger.New(logger.Options{Level: "debug", HumanReadable: true})
				if err != nil {
					return err
				}
			}

			return runPlan(cmd.Context(), runLog, cfg, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.PipelineName, "name", "test", "Pipeline name used in reports and status checks")
	cmd.Flags().BoolVar(&opts.Local, "local", false, "Mark the run as local instead of CI")
	cmd.Flags().BoolVar(&opts.CodeTestsOnly, "code-tests-only", false, "Skip non-code checks like QA and version checks")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "Stop step execution at the first failure")
	cmd.Flags().StringSliceVar(&opts.SkipSteps, "skip-step", nil, "Step identifiers to skip in addition to metadata-derived skips")
	cmd.Flags().StringSliceVar(&opts.Platforms, "platform", nil, "Docker build platforms, defaults to linux/amd64 and linux/arm64")
	cmd.Flags().StringVar(&opts.DiffedBranch, "diffed-branch", "main", "Branch to compare the current branch against")
	cmd.Flags().StringVar(&opts.WorkflowURL, "workflow-url", "", "URL of the CI workflow run")
	cmd.Flags().StringVar(&opts.CIContext, "ci-context", "", "CI trigger context, e.g. pull_request or nightly")

	return cmd
}

func runPlan(ctx context.Context, log *logger.Logger, cfg *settings, opts *planOptions, connectorDirs []string) error {
	var failures int
	for _, dir := range connectorDirs {
		conn, err := connector.FromDirectory(dir)
		if err != nil {
			return err
		}

		runCfg, err := buildRunConfiguration(conn, cfg, opts)
		if err != nil {
			return err
		}

		connCtx, err := pipeline.NewConnectorContext(runCfg, conn, log, collaboratorOptions(cfg, runCfg)...)
		if err != nil {
			return err
		}

		state := connCtx.RunWithTeardown(ctx, executePlan)
		if state != report.StateSuccessful {
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d connector run(s) did not succeed", failures)
	}
	return nil
}

func buildRunConfiguration(conn connector.Connector, cfg *settings, opts *planOptions) (pipeline.RunConfiguration, error) {
	info, err := gitinfo.Resolve(conn.CodeDirectory)
	if err != nil {
		return pipeline.RunConfiguration{}, err
	}

	runCfg := pipeline.DefaultRunConfiguration()
	runCfg.PipelineName = opts.PipelineName
	runCfg.IsLocal = opts.Local
	runCfg.GitBranch = info.Branch
	runCfg.GitRevision = info.Revision
	runCfg.GitRepoURL = info.RepoURL
	runCfg.DiffedBranch = opts.DiffedBranch
	runCfg.ReportOutputPrefix = cfg.Report.OutputPrefix
	runCfg.CIReportBucket = cfg.Storage.Bucket
	runCfg.CIGitHubAccessToken = cfg.GitHub.AccessToken
	runCfg.GhaWorkflowRunURL = opts.WorkflowURL
	runCfg.PipelineStartTimestamp = time.Now().UTC().Unix()
	runCfg.CIContext = opts.CIContext
	runCfg.SlackWebhook = cfg.Slack.Webhook
	runCfg.ReportingSlackChannel = cfg.Slack.Channel
	runCfg.CodeTestsOnly = opts.CodeTestsOnly
	runCfg.UseRemoteSecrets = cfg.Secrets.Endpoint != ""

	if len(opts.Platforms) > 0 {
		platforms := make([]pipeline.Platform, 0, len(opts.Platforms))
		for _, p := range opts.Platforms {
			platforms = append(platforms, pipeline.Platform(p))
		}
		runCfg.TargetedPlatforms = platforms
	}

	stepOpts := steps.RunStepOptions{FailFast: opts.FailFast}
	for _, id := range opts.SkipSteps {
		stepOpts.SkipSteps = append(stepOpts.SkipSteps, steps.StepID(id))
	}
	runCfg.RunStepOptions = stepOpts

	return runCfg, nil
}

func collaboratorOptions(cfg *settings, runCfg pipeline.RunConfiguration) []pipeline.Option {
	opts := []pipeline.Option{
		WithSummary(),
		pipeline.WithLocalReportDir(cfg.Report.LocalDir),
	}

	if cfg.Secrets.Endpoint != "" {
		opts = append(opts, pipeline.WithSecretStore(secrets.NewHTTPStore(cfg.Secrets.Endpoint, cfg.Secrets.Token)))
	} else {
		opts = append(opts, pipeline.WithSecretStore(secrets.NewLocalStore(cfg.Secrets.LocalRoot)))
	}

	if cfg.GitHub.Repository != "" && cfg.GitHub.AccessToken != "" && !runCfg.IsLocal {
		opts = append(opts, pipeline.WithStatusUpdater(github.NewStatusService(cfg.GitHub.Repository, cfg.GitHub.AccessToken)))
	}

	if runCfg.ShouldNotify() {
		opts = append(opts, pipeline.WithNotifier(slack.NewNotifier()))
	}

	if cfg.Storage.Endpoint != "" && cfg.Storage.Bucket != "" {
		storage, err := report.NewObjectStorage(report.ObjectStorageConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err == nil {
			opts = append(opts, pipeline.WithReportStorage(storage))
		}
	}

	return opts
}

// planSteps is the full step graph of the connector test pipeline, in
// execution order.
var planSteps = []steps.StepID{
	steps.StepBuild,
	steps.StepUnit,
	steps.StepIntegration,
	steps.StepAcceptance,
	steps.StepQaChecks,
	steps.StepVersionIncCheck,
}

// executePlan resolves which steps the run would execute and attaches the
// resulting report. Step execution itself is delegated to the CI engine.
func executePlan(ctx context.Context, c *pipeline.ConnectorContext) error {
	if _, err := c.DockerImage(); err != nil {
		return err
	}

	opts := c.StepOptions()
	runCfg := c.Config()

	results := make([]report.StepResult, 0, len(planSteps))
	for _, id := range planSteps {
		if runCfg.CodeTestsOnly && (id == steps.StepQaChecks || id == steps.StepVersionIncCheck) {
			results = append(results, report.StepResult{
				StepID:      id,
				Status:      report.StatusSkipped,
				Description: "code tests only",
				CreatedAt:   time.Now().UTC(),
			})
			continue
		}
		if opts.ShouldSkip(id) {
			results = append(results, report.StepResult{
				StepID:      id,
				Status:      report.StatusSkipped,
				Description: "disabled for this run",
				CreatedAt:   time.Now().UTC(),
			})
			continue
		}
		results = append(results, report.StepResult{
			StepID:    id,
			Status:    report.StatusPlanned,
			CreatedAt: time.Now().UTC(),
		})
	}

	c.SetReport(report.New(
		runCfg.PipelineName,
		c.Connector().TechnicalName,
		runCfg.GitBranch,
		runCfg.GitRevision,
		runCfg.CIContext,
		results,
	))
	return nil
}
