package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/convoy-ci/convoy/internal/connector"
	"github.com/convoy-ci/convoy/internal/logger"
	"github.com/convoy-ci/convoy/internal/pipeline"
	"github.com/convoy-ci/convoy/internal/report"
)

func TestBuildSummarySuccessfulRun(t *testing.T) {
	dir := writeConnectorDir(t, "unitTests")
	conn, err := connector.FromDirectory(dir)
	require.NoError(t, err)

	log, err := logger.New(logger.Options{Level: "error"})
	require.NoError(t, err)

	ctx, err := pipeline.NewConnectorContext(planConfig(t), conn, log, WithSummary(), pipeline.WithLocalReportDir(t.TempDir()))
	require.NoError(t, err)

	state := ctx.RunWithTeardown(context.Background(), executePlan)
	require.Equal(t, report.StateSuccessful, state)

	summary, err := buildSummary(ctx)
	require.NoError(t, err)
	require.Contains(t, summary, ":white_check_mark:")
	require.Contains(t, summary, "source-pokeapi")
	require.Contains(t, summary, "successful")
	require.Contains(t, summary, "feature/pokeapi")
	require.Contains(t, summary, "0123456789")
	require.NotContains(t, summary, "Failed steps")
}

func TestBuildSummaryErroredRun(t *testing.T) {
	dir := writeConnectorDir(t, "unitTests")
	conn, err := connector.FromDirectory(dir)
	require.NoError(t, err)

	log, err := logger.New(logger.Options{Level: "error"})
	require.NoError(t, err)

	ctx, err := pipeline.NewConnectorContext(planConfig(t), conn, log, WithSummary(), pipeline.WithLocalReportDir(t.TempDir()))
	require.NoError(t, err)

	state := ctx.RunWithTeardown(context.Background(), func(context.Context, *pipeline.ConnectorContext) error {
		return errors.New("docker daemon unreachable")
	})
	require.Equal(t, report.StateError, state)

	summary, err := buildSummary(ctx)
	require.NoError(t, err)
	require.Contains(t, summary, ":bangbang:")
	require.Contains(t, summary, "error")
}

func TestShortRevision(t *testing.T) {
	require.Equal(t, "0123456789", shortRevision("0123456789abcdef0123456789abcdef01234567"))
	require.Equal(t, "abc", shortRevision("abc"))
}
