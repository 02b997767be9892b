package secrets

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"

	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

// Store retrieves and persists connector secrets.
type Store interface {
	// Fetch returns all secrets registered for the connector, keyed by name.
	Fetch(ctx context.Context, connector string) (map[string]Secret, error)
	// Upload pushes the contents of dir back to the store as the
	// connector's updated secrets.
	Upload(ctx context.Context, connector string, dir string) error
}

// HTTPStore talks to a remote secret-manager service over its REST API.
type HTTPStore struct {
	client  *resty.Client
	baseURL string
}

// NewHTTPStore creates an HTTPStore for the given service endpoint. The
// token, when non-empty, is sent as a bearer credential.
func NewHTTPStore(baseURL, token string) *HTTPStore {
	client := resty.New()
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HTTPStore{client: client, baseURL: baseURL}
}

type secretListResponse struct {
	Secrets map[string]string `json:"secrets"`
}

// Fetch implements Store.
func (s *HTTPStore) Fetch(ctx context.Context, connector string) (map[string]Secret, error) {
	var payload secretListResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(fmt.Sprintf("%s/v1/connectors/%s/secrets", s.baseURL, connector))
	if err != nil {
		return nil, convoyerrors.NewSecretFetchError(connector, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, convoyerrors.NewSecretFetchError(connector, fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}

	result := make(map[string]Secret, len(payload.Secrets))
	for name, value := range payload.Secrets {
		result[name] = New(name, value)
	}
	return result, nil
}

// Upload implements Store. Every regular file under dir is pushed as one
// secret named after its relative path.
func (s *HTTPStore) Upload(ctx context.Context, connector string, dir string) error {
	files, err := collectSecretFiles(dir)
	if err != nil {
		return err
	}

	for name, contents := range files {
		resp, err := s.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]string{"name": name, "value": contents}).
			Put(fmt.Sprintf("%s/v1/connectors/%s/secrets/%s", s.baseURL, connector, name))
		if err != nil {
			return fmt.Errorf("upload secret %s: %w", name, err)
		}
		if resp.StatusCode() >= http.StatusMultipleChoices {
			return fmt.Errorf("upload secret %s: unexpected status %d", name, resp.StatusCode())
		}
	}
	return nil
}

// LocalStore reads and writes secrets under a connector's local secrets
// directory. It backs runs configured with use_remote_secrets disabled.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at the given directory. Secrets
// for a connector live under <root>/<connector>/.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Fetch implements Store.
func (s *LocalStore) Fetch(ctx context.Context, connector string) (map[string]Secret, error) {
	dir := filepath.Join(s.root, connector)
	files, err := collectSecretFiles(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Secret{}, nil
		}
		return nil, convoyerrors.NewSecretFetchError(connector, err)
	}

	result := make(map[string]Secret, len(files))
	for name, value := range files {
		result[name] = New(name, value)
	}
	return result, nil
}

// Upload implements Store by copying dir into the connector's local secrets
// directory.
func (s *LocalStore) Upload(ctx context.Context, connector string, dir string) error {
	files, err := collectSecretFiles(dir)
	if err != nil {
		return err
	}

	target := filepath.Join(s.root, connector)
	if err := os.MkdirAll(target, 0o700); err != nil {
		return fmt.Errorf("create local secrets dir: %w", err)
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(target, name), []byte(contents), 0o600); err != nil {
			return fmt.Errorf("write secret %s: %w", name, err)
		}
	}
	return nil
}

func collectSecretFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files[entry.Name()] = string(raw)
	}
	return files, nil
}
