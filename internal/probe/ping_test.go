package probe

import (
	"context"
	"testing"

	"github.com/brindlewatch/watchdog/internal/model"
)

func TestPingRunner_Matches(t *testing.T) {
	t.Parallel()
	p := NewPingRunner()
	if !p.Matches("ping 1.1.1.1") {
		t.Error("expected match")
	}
	if p.Matches("http example.org") {
		t.Error("expected no match")
	}
}

func TestPingRunner_MissingTarget(t *testing.T) {
	t.Parallel()
	p := NewPingRunner()
	_, err := p.Execute(context.Background(), "ping")
	if err == nil {
		t.Fatal("expected error for missing target")
	}
}

func TestRTTLineRe_ParsesLinuxAndBSDFormats(t *testing.T) {
	t.Parallel()

	linux := "rtt min/avg/max/mdev = 13.827/13.827/13.827/0.000 ms"
	bsd := "round-trip min/avg/max/stddev = 24.456/24.456/24.456/0.000 ms"

	for _, line := range []string{linux, bsd} {
		m := rttLineRe.FindStringSubmatch(line)
		if m == nil {
			t.Fatalf("no match for %q", line)
		}
	}
}

func TestPingRunner_UnreachableHostFails(t *testing.T) {
	if testing.Short() {
		t.Skip("requires network/ping availability")
	}
	t.Parallel()

	p := NewPingRunner()
	result, err := p.Execute(context.Background(), "ping 10.99.99.99")
	if err != nil {
		t.Skipf("ping unavailable in this environment: %v", err)
	}
	if result.Category != model.TestFail {
		t.Errorf("category = %v, want fail for unreachable host", result.Category)
	}
}
