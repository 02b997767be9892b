// Package pipeline holds the per-connector execution context of a CI run:
// the run configuration, the connector's derived metadata, run-scoped
// mutable state, and the teardown orchestration that closes a run out.
package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/convoy-ci/convoy/internal/connector"
	"github.com/convoy-ci/convoy/internal/github"
	"github.com/convoy-ci/convoy/internal/logger"
	"github.com/convoy-ci/convoy/internal/metadata"
	"github.com/convoy-ci/convoy/internal/report"
	"github.com/convoy-ci/convoy/internal/secrets"
	"github.com/convoy-ci/convoy/internal/steps"
)

// ErrSummaryNotImplemented is returned when no concrete pipeline type
// supplied a notification summary.
var ErrSummaryNotImplemented = errors.New("notification summary not implemented for this pipeline type")

// StatusUpdater updates the commit status check on the git hosting platform.
type StatusUpdater interface {
	Update(ctx context.Context, status github.CommitStatus) error
}

// ChatNotifier delivers a chat message to a webhook target.
type ChatNotifier interface {
	Send(ctx context.Context, message, channel, webhookURL string) error
}

// SummaryBuilder produces the product-specific notification text for a run.
// Concrete pipeline variants must supply one; the base context has none.
type SummaryBuilder interface {
	Summary(c *ConnectorContext) (string, error)
}

// SummaryFunc adapts a function to the SummaryBuilder interface.
type SummaryFunc func(c *ConnectorContext) (string, error)

// Summary implements SummaryBuilder.
func (f SummaryFunc) Summary(c *ConnectorContext) (string, error) {
	return f(c)
}

// ConnectorContext stores configuration and run-scoped state for one
// connector's pipeline run. One context serves one run; it is not safe for
// concurrent mutation.
type ConnectorContext struct {
	cfg       RunConfiguration
	connector connector.Connector
	meta      *metadata.Accessor
	logger    *logger.Logger

	phase      phase
	createdAt  time.Time
	stoppedAt  time.Time
	finalState report.RunState

	secretsDir        string
	updatedSecretsDir string
	secretStore       secrets.Store
	secretCache       *secrets.Cache

	report *report.Report

	statusUpdater  StatusUpdater
	notifier       ChatNotifier
	reportStorage  report.Storage
	summaryBuilder SummaryBuilder
	out            io.Writer
	localReportDir string
}

// Option customises a ConnectorContext at construction time.
type Option func(*ConnectorContext)

// WithSecretStore wires the secret store collaborator.
func WithSecretStore(store secrets.Store) Option {
	return func(c *ConnectorContext) { c.secretStore = store }
}

// WithStatusUpdater wires the commit status collaborator.
func WithStatusUpdater(updater StatusUpdater) Option {
	return func(c *ConnectorContext) { c.statusUpdater = updater }
}

// WithNotifier wires the chat notification collaborator.
func WithNotifier(notifier ChatNotifier) Option {
	return func(c *ConnectorContext) { c.notifier = notifier }
}

// WithReportStorage wires the remote report storage collaborator.
func WithReportStorage(storage report.Storage) Option {
	return func(c *ConnectorContext) { c.reportStorage = storage }
}

// WithSummaryBuilder supplies the notification summary for a concrete
// pipeline type.
func WithSummaryBuilder(builder SummaryBuilder) Option {
	return func(c *ConnectorContext) { c.summaryBuilder = builder }
}

// WithOutput redirects the report output sink, defaulting to stdout.
func WithOutput(w io.Writer) Option {
	return func(c *ConnectorContext) { c.out = w }
}

// WithLocalReportDir overrides where reports are written locally.
func WithLocalReportDir(dir string) Option {
	return func(c *ConnectorContext) { c.localReportDir = dir }
}

// NewConnectorContext validates the configuration, applies the
// metadata-driven step-skip policy and returns a context ready to run. The
// effective step options already exclude suites the connector descriptor
// left disabled.
func NewConnectorContext(cfg RunConfiguration, conn connector.Connector, log *logger.Logger, opts ...Option) (*ConnectorContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	meta := metadata.NewAccessor(conn.CodeDirectory)
	enabledSuites, err := meta.EnabledTestSuites()
	if err != nil {
		return nil, err
	}

	effective := cfg.clone()
	effective.RunStepOptions = steps.ApplyMetadataSkips(effective.RunStepOptions, enabledSuites)

	c := &ConnectorContext{
		cfg:       effective,
		connector: conn,
		meta:      meta,
		logger: log.WithFields(map[string]any{
			"pipeline":  effective.PipelineName,
			"connector": conn.TechnicalName,
		}),
		phase:          phaseRunning,
		createdAt:      time.Now().UTC(),
		secretCache:    secrets.NewCache(),
		out:            os.Stdout,
		localReportDir: "reports",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a detached copy of the effective run configuration.
func (c *ConnectorContext) Config() RunConfiguration {
	return c.cfg.clone()
}

// Connector returns the connector under test.
func (c *ConnectorContext) Connector() connector.Connector {
	return c.connector
}

// PipelineName returns the name of the running pipeline.
func (c *ConnectorContext) PipelineName() string {
	return c.cfg.PipelineName
}

// GitBranch returns the branch the run was triggered from.
func (c *ConnectorContext) GitBranch() string {
	return c.cfg.GitBranch
}

// GitRevision returns the commit hash under test.
func (c *ConnectorContext) GitRevision() string {
	return c.cfg.GitRevision
}

// IsCI reports whether the run executes in a CI environment.
func (c *ConnectorContext) IsCI() bool {
	return !c.cfg.IsLocal
}

// StepOptions returns the effective step-run options, with metadata-derived
// skips already applied.
func (c *ConnectorContext) StepOptions() steps.RunStepOptions {
	return c.cfg.RunStepOptions.Clone()
}

// TargetedPlatforms returns the platforms the connector image targets.
func (c *ConnectorContext) TargetedPlatforms() []Platform {
	return append([]Platform(nil), c.cfg.TargetedPlatforms...)
}

// Metadata exposes the connector descriptor accessor.
func (c *ConnectorContext) Metadata() *metadata.Accessor {
	return c.meta
}

// MetadataPath returns the descriptor location for the connector.
func (c *ConnectorContext) MetadataPath() string {
	return c.meta.Path()
}

// DockerImage returns the connector image reference declared in metadata.
func (c *ConnectorContext) DockerImage() (string, error) {
	return c.meta.DockerImage()
}

// HostImageExportDirPath is where built images are exported on the host.
func (c *ConnectorContext) HostImageExportDirPath() string {
	if c.IsCI() {
		return "."
	}
	return "/tmp"
}

// SecretsDir returns the input secrets directory, empty when unset.
func (c *ConnectorContext) SecretsDir() string {
	return c.secretsDir
}

// SetSecretsDir records the input secrets directory.
func (c *ConnectorContext) SetSecretsDir(dir string) {
	c.secretsDir = dir
}

// UpdatedSecretsDir returns the directory holding rotated secrets, empty
// when no step produced any.
func (c *ConnectorContext) UpdatedSecretsDir() string {
	return c.updatedSecretsDir
}

// SetUpdatedSecretsDir records the directory holding rotated secrets.
func (c *ConnectorContext) SetUpdatedSecretsDir(dir string) {
	c.updatedSecretsDir = dir
}

// ShouldSaveUpdatedSecrets reports whether teardown uploads rotated secrets
// back to the store.
func (c *ConnectorContext) ShouldSaveUpdatedSecrets() bool {
	return c.cfg.UseRemoteSecrets && c.updatedSecretsDir != ""
}

// Report returns the attached run report, nil before the pipeline attaches
// one.
func (c *ConnectorContext) Report() *report.Report {
	return c.report
}

// SetReport attaches the run report produced by pipeline execution.
func (c *ConnectorContext) SetReport(r *report.Report) {
	c.report = r
}

// CreatedAt returns when the context was constructed.
func (c *ConnectorContext) CreatedAt() time.Time {
	return c.createdAt
}

// StoppedAt returns the teardown timestamp, zero while the run is live.
func (c *ConnectorContext) StoppedAt() time.Time {
	return c.stoppedAt
}

// FinalState returns the terminal state computed during teardown.
func (c *ConnectorContext) FinalState() report.RunState {
	return c.finalState
}

// DockerHubUsernameSecret wraps the docker hub username into a secret
// handle, nil when the credential is unset.
func (c *ConnectorContext) DockerHubUsernameSecret() *secrets.Secret {
	if c.cfg.DockerHubUsername == "" {
		return nil
	}
	s := secrets.New("docker_hub_username", c.cfg.DockerHubUsername)
	return &s
}

// DockerHubPasswordSecret wraps the docker hub password into a secret
// handle, nil when the credential is unset.
func (c *ConnectorContext) DockerHubPasswordSecret() *secrets.Secret {
	if c.cfg.DockerHubPassword == "" {
		return nil
	}
	s := secrets.New("docker_hub_password", c.cfg.DockerHubPassword)
	return &s
}

// S3BuildCacheAccessKeyIDSecret wraps the build-cache access key, nil when
// unset.
func (c *ConnectorContext) S3BuildCacheAccessKeyIDSecret() *secrets.Secret {
	if c.cfg.S3BuildCacheAccessKeyID == "" {
		return nil
	}
	s := secrets.New("s3_build_cache_access_key_id", c.cfg.S3BuildCacheAccessKeyID)
	return &s
}

// S3BuildCacheSecretKeySecret wraps the build-cache secret key. Both cache
// credentials must be set for the pair to be usable, so this returns nil
// unless the access key id is present as well.
func (c *ConnectorContext) S3BuildCacheSecretKeySecret() *secrets.Secret {
	if c.cfg.S3BuildCacheAccessKeyID == "" || c.cfg.S3BuildCacheSecretKey == "" {
		return nil
	}
	s := secrets.New("s3_build_cache_secret_key", c.cfg.S3BuildCacheSecretKey)
	return &s
}

// GetConnectorSecrets returns the connector's secrets from the store,
// fetching at most once per context lifetime.
func (c *ConnectorContext) GetConnectorSecrets(ctx context.Context) (map[string]secrets.Secret, error) {
	if c.secretStore == nil {
		return map[string]secrets.Secret{}, nil
	}
	return c.secretCache.Get(ctx, c.secretStore, c.connector.TechnicalName)
}

func (c *ConnectorContext) githubCommitStatus() github.CommitStatus {
	targetURL := c.cfg.GhaWorkflowRunURL
	if targetURL == "" {
		targetURL = c.cfg.LogsURL
	}
	return github.CommitStatus{
		Sha:         c.cfg.GitRevision,
		State:       c.finalState.GithubState(),
		TargetURL:   targetURL,
		Description: c.cfg.PipelineName + " is " + string(c.finalState),
		Context:     c.cfg.CIContext,
	}
}

func (c *ConnectorContext) notificationMessage() (string, error) {
	if c.summaryBuilder == nil {
		return "", ErrSummaryNotImplemented
	}
	return c.summaryBuilder.Summary(c)
}
