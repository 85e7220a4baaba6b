package probe

import (
	"context"
	"testing"
)

func TestTestRunner_UnknownCommand(t *testing.T) {
	t.Parallel()

	tr := NewTestRunner()
	_, err := tr.Run(context.Background(), "unknown")
	if err == nil {
		t.Fatal("expected error for unknown descriptor")
	}
	want := "Test 'unknown' failed, command not found"
	if err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
}

func TestTestRunner_EmptyDescriptor(t *testing.T) {
	t.Parallel()

	tr := NewTestRunner()
	_, err := tr.Run(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty descriptor")
	}
	want := "Test '' failed, command not found"
	if err.Error() != want {
		t.Errorf("err = %q, want %q", err.Error(), want)
	}
}

func TestTestRunner_DNSMatchesButErrors(t *testing.T) {
	t.Parallel()

	tr := NewTestRunner()
	_, err := tr.Run(context.Background(), "dns example.org")
	if err == nil {
		t.Fatal("expected dns probe to error")
	}
	if err.Error() == "Test 'dns example.org' failed, command not found" {
		t.Fatal("dns descriptor should match the dns runner, not fall through")
	}
}

func TestTestRunner_DispatchOrder(t *testing.T) {
	t.Parallel()

	tr := NewTestRunner()
	if !tr.runners[0].Matches("ping 1.1.1.1") {
		t.Error("ping runner should be first in dispatch order")
	}
	if !tr.runners[1].Matches("dns example.org") {
		t.Error("dns runner should be second in dispatch order")
	}
	if !tr.runners[2].Matches("http example.org") {
		t.Error("http runner should be third in dispatch order")
	}
}
