package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brindlewatch/watchdog/internal/model"
)

const pingWait = 2 * time.Second

// PingRunner invokes the system ping utility once per target and classifies
// the result from its rtt summary line.
type PingRunner struct{}

// NewPingRunner returns a ready PingRunner.
func NewPingRunner() *PingRunner {
	return &PingRunner{}
}

// Matches accepts descriptors of the form "ping <target>".
func (p *PingRunner) Matches(descriptor string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(descriptor), " ")
	return first == "ping"
}

// rttLineRe matches both the iputils (Linux) and BSD/macOS rtt summary
// lines; group 1 is the min rtt in milliseconds.
var rttLineRe = regexp.MustCompile(`(?:rtt|round-trip) min/avg/max(?:/mdev|/stddev)? = ([\d.]+)/`)

// Execute runs `ping -c 1 -W 2 <target>` and reports Success when rtt is
// under 100ms, Warning otherwise, Fail on non-zero exit, or Error if the
// output could not be parsed.
func (p *PingRunner) Execute(ctx context.Context, descriptor string) (model.TestResult, error) {
	fields := strings.Fields(descriptor)
	if len(fields) < 2 || fields[1] == "" {
		return model.TestResult{}, fmt.Errorf("ping: missing target")
	}
	target := fields[1]

	ctx, cancel := context.WithTimeout(ctx, pingWait)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ping", "-c", "1", "-W", "2", target)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return model.TestResult{Target: target, Category: model.TestFail}, nil
	}

	match := rttLineRe.FindStringSubmatch(out.String())
	if match == nil {
		return model.TestResult{}, fmt.Errorf("ping: could not parse rtt summary for %s", target)
	}
	rtt, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return model.TestResult{}, fmt.Errorf("ping: parse rtt value: %w", err)
	}

	category := model.TestSuccess
	if rtt >= 100 {
		category = model.TestWarning
	}
	return model.TestResult{
		Target:   target,
		Category: category,
		Metrics:  map[string]float64{"ping_rtt": rtt},
	}, nil
}
