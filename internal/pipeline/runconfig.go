package pipeline

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/convoy-ci/convoy/internal/steps"
	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

// DefaultAcceptanceTestImage is the image used to run connector acceptance
// tests unless a run overrides it.
const DefaultAcceptanceTestImage = "airbyte/connector-acceptance-test:dev"

// RunConfiguration bundles every parameter of a connector pipeline run.
// Build one with DefaultRunConfiguration, adjust fields, then hand it to
// NewConnectorContext; identity fields are frozen from that point on.
type RunConfiguration struct {
	PipelineName string `validate:"required"`
	IsLocal      bool

	GitBranch    string `validate:"required"`
	GitRevision  string `validate:"required"`
	DiffedBranch string
	GitRepoURL   string `validate:"required"`

	ReportOutputPrefix string `validate:"required"`
	ShouldSaveReport   bool
	CIReportBucket     string

	UseRemoteSecrets bool

	CIGitUser           string
	CIGitHubAccessToken string

	ConnectorAcceptanceTestImage string

	GhaWorkflowRunURL      string
	LogsURL                string
	PipelineStartTimestamp int64
	CIContext              string

	SlackWebhook          string
	ReportingSlackChannel string

	PullRequestNumber int

	CodeTestsOnly        bool
	UseLocalCDK          bool
	UseHostGradleDistTar bool
	EnableReportAutoOpen bool

	DockerHubUsername string
	DockerHubPassword string

	S3BuildCacheAccessKeyID string
	S3BuildCacheSecretKey   string

	ConcurrentCAT bool

	TargetedPlatforms []Platform `validate:"required,min=1"`

	RunStepOptions steps.RunStepOptions
}

// DefaultRunConfiguration returns a configuration carrying the documented
// defaults: remote secrets on, report saving on, the default acceptance-test
// image and the full platform set.
func DefaultRunConfiguration() RunConfiguration {
	return RunConfiguration{
		UseRemoteSecrets:             true,
		ShouldSaveReport:             true,
		EnableReportAutoOpen:         true,
		ConnectorAcceptanceTestImage: DefaultAcceptanceTestImage,
		TargetedPlatforms:            DefaultPlatforms(),
	}
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate checks required fields and field combinations.
func (c RunConfiguration) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			first := errs[0]
			return convoyerrors.NewValidationError(fieldName(first.Namespace()), "failed "+first.Tag()+" validation", err)
		}
		return convoyerrors.NewValidationError("", err.Error(), err)
	}

	for _, platform := range c.TargetedPlatforms {
		if strings.TrimSpace(string(platform)) == "" {
			return convoyerrors.NewValidationError("TargetedPlatforms", "platform must not be empty", nil)
		}
	}

	if c.SlackWebhook != "" && c.ReportingSlackChannel == "" {
		return convoyerrors.NewValidationError("ReportingSlackChannel", "required when a slack webhook is set", nil)
	}

	return nil
}

// ShouldNotify reports whether a notification target is fully configured.
func (c RunConfiguration) ShouldNotify() bool {
	return c.SlackWebhook != "" && c.ReportingSlackChannel != ""
}

// clone returns a deep copy, detaching slices and maps from the original.
func (c RunConfiguration) clone() RunConfiguration {
	copied := c
	copied.TargetedPlatforms = append([]Platform(nil), c.TargetedPlatforms...)
	copied.RunStepOptions = c.RunStepOptions.Clone()
	return copied
}

func fieldName(namespace string) string {
	if idx := strings.LastIndex(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
