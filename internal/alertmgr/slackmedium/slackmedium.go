// Package slackmedium is the supplemented third built-in alert medium: a
// Slack incoming webhook, built from slack-go/slack value types but, like
// every other Medium, returning only an unsent request for the manager to
// send.
package slackmedium

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// Slack posts an attachment-formatted message to an incoming webhook.
type Slack struct {
	WebhookURL string
}

// ID identifies this medium in the registry.
func (s *Slack) ID() string { return "slack" }

// BuildRequest builds the unsent POST to the configured webhook URL.
func (s *Slack) BuildRequest(message string) (*http.Request, error) {
	payload := slack.WebhookMessage{
		Attachments: []slack.Attachment{
			{
				Color: "danger",
				Text:  message,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("slackmedium: marshal webhook message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("slackmedium: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
