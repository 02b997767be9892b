package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoy-ci/convoy/internal/connector"
	"github.com/convoy-ci/convoy/internal/logger"
	"github.com/convoy-ci/convoy/internal/metadata"
	"github.com/convoy-ci/convoy/internal/secrets"
	"github.com/convoy-ci/convoy/internal/steps"
	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

const defaultDescriptor = `data:
  dockerRepository: "airbyte/source-foo"
  dockerImageTag: "1.2.3"
  connectorTestSuitesOptions:
    - suite: unitTests
    - suite: integrationTests
    - suite: acceptanceTests
`

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Options{Level: "debug", Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	return log
}

func testConnector(t *testing.T, descriptor string) connector.Connector {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "source-foo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadata.FileName), []byte(descriptor), 0o644))
	conn, err := connector.FromDirectory(dir)
	require.NoError(t, err)
	return conn
}

func testRunConfiguration() RunConfiguration {
	cfg := DefaultRunConfiguration()
	cfg.PipelineName = "test"
	cfg.GitBranch = "feature/new-stream"
	cfg.GitRevision = "abc123def4567890abc123def4567890abc123de"
	cfg.GitRepoURL = "https://github.com/acme/connectors.git"
	cfg.ReportOutputPrefix = "ci/reports"
	return cfg
}

func newTestContext(t *testing.T, descriptor string, mutate func(*RunConfiguration), opts ...Option) *ConnectorContext {
	t.Helper()
	cfg := testRunConfiguration()
	if mutate != nil {
		mutate(&cfg)
	}
	ctx, err := NewConnectorContext(cfg, testConnector(t, descriptor), testLogger(t), opts...)
	require.NoError(t, err)
	return ctx
}

func TestNewConnectorContextAppliesMetadataSkips(t *testing.T) {
	t.Parallel()

	descriptor := `data:
  dockerRepository: "airbyte/source-foo"
  dockerImageTag: "1.2.3"
  connectorTestSuitesOptions:
    - suite: unitTests
`
	c := newTestContext(t, descriptor, nil)

	opts := c.StepOptions()
	assert.False(t, opts.ShouldSkip(steps.StepUnit))
	assert.True(t, opts.ShouldSkip(steps.StepIntegration))
	assert.True(t, opts.ShouldSkip(steps.StepAcceptance))
}

func TestNewConnectorContextSkipsAllSuitesWithoutOptions(t *testing.T) {
	t.Parallel()

	descriptor := `data:
  dockerRepository: "airbyte/source-foo"
  dockerImageTag: "1.2.3"
`
	c := newTestContext(t, descriptor, nil)

	opts := c.StepOptions()
	assert.True(t, opts.ShouldSkip(steps.StepUnit))
	assert.True(t, opts.ShouldSkip(steps.StepIntegration))
	assert.True(t, opts.ShouldSkip(steps.StepAcceptance))
}

func TestNewConnectorContextPreservesCallerSkips(t *testing.T) {
	t.Parallel()

	callerOpts := steps.RunStepOptions{SkipSteps: []steps.StepID{steps.StepQaChecks}}
	c := newTestContext(t, defaultDescriptor, func(cfg *RunConfiguration) {
		cfg.RunStepOptions = callerOpts
	})

	assert.True(t, c.StepOptions().ShouldSkip(steps.StepQaChecks))
	// The caller's options object was not mutated by the skip policy.
	assert.Equal(t, []steps.StepID{steps.StepQaChecks}, callerOpts.SkipSteps)
}

func TestNewConnectorContextFailsWithoutMetadata(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "source-foo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	conn, err := connector.FromDirectory(dir)
	require.NoError(t, err)

	_, err = NewConnectorContext(testRunConfiguration(), conn, testLogger(t))
	require.Error(t, err)

	var notFound *convoyerrors.MetadataNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestNewConnectorContextValidatesConfiguration(t *testing.T) {
	t.Parallel()

	cfg := testRunConfiguration()
	cfg.GitBranch = ""

	_, err := NewConnectorContext(cfg, testConnector(t, defaultDescriptor), testLogger(t))
	require.Error(t, err)

	var validationErr *convoyerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "GitBranch", validationErr.Field)
}

func TestBuildCacheSecretPairing(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		accessKeyID   string
		secretKey     string
		wantAccessKey bool
		wantSecretKey bool
	}{
		{"both unset", "", "", false, false},
		{"only access key set", "AKIA123", "", true, false},
		{"only secret key set", "", "shh", false, false},
		{"both set", "AKIA123", "shh", true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestContext(t, defaultDescriptor, func(cfg *RunConfiguration) {
				cfg.S3BuildCacheAccessKeyID = tc.accessKeyID
				cfg.S3BuildCacheSecretKey = tc.secretKey
			})

			assert.Equal(t, tc.wantAccessKey, c.S3BuildCacheAccessKeyIDSecret() != nil)
			assert.Equal(t, tc.wantSecretKey, c.S3BuildCacheSecretKeySecret() != nil)
		})
	}
}

func TestDockerHubSecretAccessors(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, defaultDescriptor, nil)
	assert.Nil(t, c.DockerHubUsernameSecret())
	assert.Nil(t, c.DockerHubPasswordSecret())

	c = newTestContext(t, defaultDescriptor, func(cfg *RunConfiguration) {
		cfg.DockerHubUsername = "ci-bot"
		cfg.DockerHubPassword = "hunter2"
	})

	username := c.DockerHubUsernameSecret()
	require.NotNil(t, username)
	assert.Equal(t, "docker_hub_username", username.Name())
	assert.Equal(t, "ci-bot", username.Value())
	require.NotNil(t, c.DockerHubPasswordSecret())
}

type fetchCountingStore struct {
	fetches atomic.Int64
}

func (s *fetchCountingStore) Fetch(ctx context.Context, conn string) (map[string]secrets.Secret, error) {
	s.fetches.Add(1)
	return map[string]secrets.Secret{"config": secrets.New("config", "{}")}, nil
}

func (s *fetchCountingStore) Upload(ctx context.Context, conn string, dir string) error {
	return nil
}

func TestGetConnectorSecretsIsMemoized(t *testing.T) {
	t.Parallel()

	store := &fetchCountingStore{}
	c := newTestContext(t, defaultDescriptor, nil, WithSecretStore(store))

	for i := 0; i < 3; i++ {
		got, err := c.GetConnectorSecrets(context.Background())
		require.NoError(t, err)
		require.Contains(t, got, "config")
	}
	require.Equal(t, int64(1), store.fetches.Load())
}

func TestGetConnectorSecretsWithoutStore(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, defaultDescriptor, nil)
	got, err := c.GetConnectorSecrets(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestConfigReturnsDetachedCopy(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, defaultDescriptor, nil)

	cfg := c.Config()
	cfg.TargetedPlatforms[0] = Platform("windows/amd64")
	cfg.RunStepOptions.SkipSteps = append(cfg.RunStepOptions.SkipSteps, steps.StepBuild)

	fresh := c.Config()
	assert.Equal(t, PlatformLinuxAMD64, fresh.TargetedPlatforms[0])
	assert.False(t, fresh.RunStepOptions.ShouldSkip(steps.StepBuild))
}

func TestHostImageExportDirPath(t *testing.T) {
	t.Parallel()

	ci := newTestContext(t, defaultDescriptor, nil)
	assert.Equal(t, ".", ci.HostImageExportDirPath())

	local := newTestContext(t, defaultDescriptor, func(cfg *RunConfiguration) {
		cfg.IsLocal = true
	})
	assert.Equal(t, "/tmp", local.HostImageExportDirPath())
}

func TestDockerImageFromMetadata(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, defaultDescriptor, nil)
	image, err := c.DockerImage()
	require.NoError(t, err)
	require.Equal(t, "airbyte/source-foo:1.2.3", image)
}

func TestShouldSaveUpdatedSecrets(t *testing.T) {
	t.Parallel()

	c := newTestContext(t, defaultDescriptor, nil)
	assert.False(t, c.ShouldSaveUpdatedSecrets())

	c.SetUpdatedSecretsDir(t.TempDir())
	assert.True(t, c.ShouldSaveUpdatedSecrets())

	noRemote := newTestContext(t, defaultDescriptor, func(cfg *RunConfiguration) {
		cfg.UseRemoteSecrets = false
	})
	noRemote.SetUpdatedSecretsDir(t.TempDir())
	assert.False(t, noRemote.ShouldSaveUpdatedSecrets())
}
