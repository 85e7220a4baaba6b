package alertmgr

import (
	"net/http"
	"testing"
)

func TestTelegram_BuildRequest_EscapesHyphenAndSetsParams(t *testing.T) {
	t.Parallel()

	tg := &Telegram{Token: "bot-token", ChatID: "123"}
	req, err := tg.BuildRequest("Network DOWN on region eu-west")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != http.MethodGet {
		t.Errorf("method = %s", req.Method)
	}
	q := req.URL.Query()
	if q.Get("chat_id") != "123" {
		t.Errorf("chat_id = %q", q.Get("chat_id"))
	}
	if q.Get("parse_mode") != "MarkdownV2" {
		t.Errorf("parse_mode = %q", q.Get("parse_mode"))
	}
	if want := `Network DOWN on region eu\-west`; q.Get("text") != want {
		t.Errorf("text not escaped: %q, want %q", q.Get("text"), want)
	}
}

func TestTelegram_BuildRequest_HyphenEscaping(t *testing.T) {
	t.Parallel()

	tg := &Telegram{Token: "t", ChatID: "c"}
	req, err := tg.BuildRequest("a-b-c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := req.URL.Query().Get("text")
	if got != `a\-b\-c` {
		t.Errorf("text = %q, want a\\-b\\-c", got)
	}
}
