package alertmgr

import "testing"

func TestBuild_TelegramEntry(t *testing.T) {
	t.Setenv("TEST_TG_CHAT", "42")
	t.Setenv("TEST_TG_TOKEN", "bot:tok")

	m, err := Build(nil, []Entry{
		{Kind: KindTelegram, ChatEnv: "TEST_TG_CHAT", TokenEnv: "TEST_TG_TOKEN"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestBuild_MissingEnvIsFatal(t *testing.T) {
	_, err := Build(nil, []Entry{
		{Kind: KindTelegram, ChatEnv: "UNSET_CHAT_VAR_XYZ", TokenEnv: "UNSET_TOKEN_VAR_XYZ"},
	})
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	if _, ok := err.(*ErrMissingEnv); !ok {
		t.Fatalf("err type = %T, want *ErrMissingEnv", err)
	}
}

func TestBuild_SpryngEntrySplitsRecipients(t *testing.T) {
	t.Setenv("TEST_SPRYNG_TOKEN", "tok")
	t.Setenv("TEST_SPRYNG_RECIPIENTS", "+311, +312 , +313")

	m, err := Build(nil, []Entry{
		{Kind: KindSpryng, TokenEnv: "TEST_SPRYNG_TOKEN", RecipientsEnv: "TEST_SPRYNG_RECIPIENTS"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestBuild_SlackEntry(t *testing.T) {
	t.Setenv("TEST_SLACK_WEBHOOK", "https://hooks.slack.com/services/x")

	m, err := Build(nil, []Entry{
		{Kind: KindSlack, WebhookEnv: "TEST_SLACK_WEBHOOK"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestBuild_UnknownKind(t *testing.T) {
	_, err := Build(nil, []Entry{{Kind: "bogus"}})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
