// Package probe implements the probe runners (ping, http, dns) and the test
// runner that dispatches a descriptor string to the matching one.
package probe

import (
	"context"
	"fmt"

	"github.com/brindlewatch/watchdog/internal/model"
)

// Runner executes one kind of probe. A descriptor is a whitespace-separated
// string whose first token selects the runner.
type Runner interface {
	Matches(descriptor string) bool
	Execute(ctx context.Context, descriptor string) (model.TestResult, error)
}

// TestRunner dispatches a descriptor to the first matching Runner, in a
// fixed order: ping, dns, http. Order matters because descriptors are
// matched by prefix, and a more-specific runner must precede a less-specific
// one to avoid being shadowed.
type TestRunner struct {
	runners []Runner
}

// NewTestRunner builds the default dispatch chain: ping, dns, http.
func NewTestRunner() *TestRunner {
	return &TestRunner{runners: []Runner{
		NewPingRunner(),
		NewDNSRunner(),
		NewHTTPRunner(),
	}}
}

// Run dispatches descriptor to the first matching runner. An unmatched (or
// empty) descriptor surfaces the "command not found" error spec §4.1/§8
// require.
func (t *TestRunner) Run(ctx context.Context, descriptor string) (model.TestResult, error) {
	for _, r := range t.runners {
		if r.Matches(descriptor) {
			return r.Execute(ctx, descriptor)
		}
	}
	return model.TestResult{}, fmt.Errorf("Test '%s' failed, command not found", descriptor)
}
