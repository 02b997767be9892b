package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

func TestSendPostsPayload(t *testing.T) {
	t.Parallel()

	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewNotifier()
	err := notifier.Send(context.Background(), ":x: source-foo test failed", "#connector-ci", server.URL)
	require.NoError(t, err)
	require.Equal(t, "#connector-ci", got.Channel)
	require.Equal(t, ":x: source-foo test failed", got.Text)
}

func TestSendSurfacesTypedError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	notifier := NewNotifier()
	err := notifier.Send(context.Background(), "hello", "#connector-ci", server.URL)
	require.Error(t, err)

	var notifErr *convoyerrors.NotificationError
	require.ErrorAs(t, err, &notifErr)
	require.Equal(t, "#connector-ci", notifErr.Channel)
}
