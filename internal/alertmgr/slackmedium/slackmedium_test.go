package slackmedium

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/slack-go/slack"
)

func TestSlack_BuildRequest(t *testing.T) {
	t.Parallel()

	s := &Slack{WebhookURL: "https://hooks.slack.com/services/T/B/X"}
	req, err := s.BuildRequest("Network DOWN on region r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != http.MethodPost {
		t.Errorf("method = %s", req.Method)
	}
	if req.URL.String() != s.WebhookURL {
		t.Errorf("url = %s", req.URL.String())
	}

	raw, _ := io.ReadAll(req.Body)
	var payload slack.WebhookMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(payload.Attachments) != 1 || payload.Attachments[0].Text != "Network DOWN on region r1" {
		t.Errorf("attachments = %+v", payload.Attachments)
	}
}
