package alertmgr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

const spryngEndpoint = "https://rest.spryngsms.com/v1/messages"

// Spryng is the built-in SMS medium.
type Spryng struct {
	Token      string
	Recipients []string
}

// ID identifies this medium in the registry.
func (s *Spryng) ID() string { return "spryng" }

type spryngBody struct {
	Body       string   `json:"body"`
	Encoding   string   `json:"encoding"`
	Originator string   `json:"originator"`
	Recipients []string `json:"recipients"`
	Route      string   `json:"route"`
}

// BuildRequest builds the unsent POST to Spryng's messages endpoint.
func (s *Spryng) BuildRequest(message string) (*http.Request, error) {
	body, err := json.Marshal(spryngBody{
		Body:       message,
		Encoding:   "auto",
		Originator: "watchdog",
		Recipients: s.Recipients,
		Route:      "business",
	})
	if err != nil {
		return nil, fmt.Errorf("alertmgr: marshal spryng body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, spryngEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("alertmgr: build spryng request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
