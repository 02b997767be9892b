package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

func TestUpdatePostsStatus(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody statusPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	service := NewStatusService("acme/connectors", "gh-token", WithBaseURL(server.URL))
	err := service.Update(context.Background(), CommitStatus{
		Sha:         "abc123",
		State:       "success",
		TargetURL:   "https://ci.example.com/runs/42",
		Description: "test: successful",
		Context:     "convoy: test",
	})
	require.NoError(t, err)
	require.Equal(t, "/repos/acme/connectors/statuses/abc123", gotPath)
	require.Equal(t, "success", gotBody.State)
	require.Equal(t, "convoy: test", gotBody.Context)
}

func TestUpdateTruncatesLongDescriptions(t *testing.T) {
	t.Parallel()

	var gotBody statusPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	service := NewStatusService("acme/connectors", "", WithBaseURL(server.URL))
	err := service.Update(context.Background(), CommitStatus{
		Sha:         "abc123",
		State:       "failure",
		Description: strings.Repeat("x", 200),
	})
	require.NoError(t, err)
	require.Len(t, gotBody.Description, 140)
	require.True(t, strings.HasSuffix(gotBody.Description, "..."))
}

func TestUpdateErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	service := NewStatusService("acme/connectors", "", WithBaseURL(server.URL))
	err := service.Update(context.Background(), CommitStatus{Sha: "abc123", State: "success"})
	require.Error(t, err)

	var statusErr *convoyerrors.StatusCheckError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, "acme/connectors", statusErr.Repository)
	require.Equal(t, "abc123", statusErr.Sha)
}
