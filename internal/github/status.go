// Package github updates commit status checks through the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

const defaultBaseURL = "https://api.github.com"

// CommitStatus describes one status-check update for a commit.
type CommitStatus struct {
	Sha         string
	State       string
	TargetURL   string
	Description string
	Context     string
}

// StatusService posts commit statuses for a single repository.
type StatusService struct {
	client     *resty.Client
	baseURL    string
	repository string
}

// Option customises a StatusService.
type Option func(*StatusService)

// WithBaseURL overrides the GitHub API endpoint, for GitHub Enterprise or
// tests.
func WithBaseURL(url string) Option {
	return func(s *StatusService) {
		s.baseURL = url
	}
}

// NewStatusService creates a StatusService for repository (owner/name form)
// authenticating with the given access token.
func NewStatusService(repository, accessToken string, opts ...Option) *StatusService {
	client := resty.New()
	if accessToken != "" {
		client.SetAuthToken(accessToken)
	}
	client.SetHeader("Accept", "application/vnd.github+json")

	service := &StatusService{
		client:     client,
		baseURL:    defaultBaseURL,
		repository: repository,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type statusPayload struct {
	State       string `json:"state"`
	TargetURL   string `json:"target_url,omitempty"`
	Description string `json:"description,omitempty"`
	Context     string `json:"context,omitempty"`
}

// Update posts the status check for the commit.
func (s *StatusService) Update(ctx context.Context, status CommitStatus) error {
	// GitHub truncates descriptions above 140 characters; trim proactively
	// so the API does not reject the payload.
	description := status.Description
	if len(description) > 140 {
		description = description[:137] + "..."
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(statusPayload{
			State:       status.State,
			TargetURL:   status.TargetURL,
			Description: description,
			Context:     status.Context,
		}).
		Post(fmt.Sprintf("%s/repos/%s/statuses/%s", s.baseURL, s.repository, status.Sha))
	if err != nil {
		return convoyerrors.NewStatusCheckError(s.repository, status.Sha, err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return convoyerrors.NewStatusCheckError(s.repository, status.Sha,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()))
	}
	return nil
}
