package alertmgr

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/brindlewatch/watchdog/internal/alertmgr/slackmedium"
)

// EntryKind selects which built-in Medium a config entry constructs.
type EntryKind string

const (
	KindTelegram EntryKind = "telegram"
	KindSpryng   EntryKind = "spryng"
	KindSlack    EntryKind = "slack"
)

// Entry is one named medium declaration: it references environment
// variables for secrets rather than carrying them directly, per spec §4.7.
type Entry struct {
	Kind          EntryKind
	ChatEnv       string // telegram
	TokenEnv      string // telegram, spryng
	RecipientsEnv string // spryng, comma-separated
	WebhookEnv    string // slack
}

// ErrMissingEnv is a fatal configuration error: an Entry referenced an
// environment variable that isn't set.
type ErrMissingEnv struct {
	Kind EntryKind
	Var  string
}

func (e *ErrMissingEnv) Error() string {
	return fmt.Sprintf("alertmgr: %s medium requires env var %q, not set", e.Kind, e.Var)
}

// Build resolves every entry's env vars and registers the resulting Medium
// on a fresh Manager. A missing env var fails the whole build immediately,
// matching spec §4.7's "missing env vars are a fatal configuration error
// at startup."
func Build(httpClient *http.Client, entries []Entry) (*Manager, error) {
	m := New(httpClient)
	for _, e := range entries {
		medium, err := e.build()
		if err != nil {
			return nil, err
		}
		m.Register(medium)
	}
	return m, nil
}

func (e Entry) build() (Medium, error) {
	switch e.Kind {
	case KindTelegram:
		chatID, err := lookupEnv(e.Kind, e.ChatEnv)
		if err != nil {
			return nil, err
		}
		token, err := lookupEnv(e.Kind, e.TokenEnv)
		if err != nil {
			return nil, err
		}
		return &Telegram{Token: token, ChatID: chatID}, nil

	case KindSpryng:
		token, err := lookupEnv(e.Kind, e.TokenEnv)
		if err != nil {
			return nil, err
		}
		recipients, err := lookupEnv(e.Kind, e.RecipientsEnv)
		if err != nil {
			return nil, err
		}
		return &Spryng{Token: token, Recipients: splitRecipients(recipients)}, nil

	case KindSlack:
		webhookURL, err := lookupEnv(e.Kind, e.WebhookEnv)
		if err != nil {
			return nil, err
		}
		return &slackmedium.Slack{WebhookURL: webhookURL}, nil

	default:
		return nil, fmt.Errorf("alertmgr: unknown medium kind %q", e.Kind)
	}
}

func lookupEnv(kind EntryKind, name string) (string, error) {
	if name == "" {
		return "", &ErrMissingEnv{Kind: kind, Var: name}
	}
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", &ErrMissingEnv{Kind: kind, Var: name}
	}
	return v, nil
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
