package alertmgr

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Telegram is the built-in medium that posts to a bot's sendMessage
// endpoint. MarkdownV2 requires certain characters to be backslash-escaped;
// spec §4.7 only mandates escaping '-', which this medium does verbatim.
type Telegram struct {
	Token  string
	ChatID string
}

// ID identifies this medium in the registry.
func (t *Telegram) ID() string { return "telegram" }

// BuildRequest builds the unsent GET to Telegram's sendMessage endpoint.
func (t *Telegram) BuildRequest(message string) (*http.Request, error) {
	escaped := strings.ReplaceAll(message, "-", "\\-")
	u := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.Token)

	q := url.Values{}
	q.Set("chat_id", t.ChatID)
	q.Set("parse_mode", "MarkdownV2")
	q.Set("text", escaped)

	req, err := http.NewRequest(http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("alertmgr: build telegram request: %w", err)
	}
	return req, nil
}
