// Package slack delivers run summaries to a chat webhook.
package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	convoyerrors "github.com/convoy-ci/convoy/pkg/errors"
)

// Notifier posts messages to a Slack-compatible incoming webhook.
type Notifier struct {
	client *resty.Client
}

// NewNotifier creates a Notifier.
func NewNotifier() *Notifier {
	return &Notifier{client: resty.New()}
}

type webhookPayload struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

// Send delivers message to the channel through webhookURL.
func (n *Notifier) Send(ctx context.Context, message, channel, webhookURL string) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{Channel: channel, Text: message}).
		Post(webhookURL)
	if err != nil {
		return convoyerrors.NewNotificationError(channel, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return convoyerrors.NewNotificationError(channel,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()))
	}
	return nil
}
