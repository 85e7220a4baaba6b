package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/brindlewatch/watchdog/internal/model"
)

// DNSRunner reserves the "dns" descriptor prefix. It must match so dns
// descriptors never fall through to the "command not found" error, even
// though execution itself is not yet implemented.
type DNSRunner struct{}

// NewDNSRunner returns a ready DNSRunner.
func NewDNSRunner() *DNSRunner {
	return &DNSRunner{}
}

// Matches accepts descriptors of the form "dns ...".
func (d *DNSRunner) Matches(descriptor string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(descriptor), " ")
	return first == "dns"
}

// Execute always errors; DNS resolution checks are reserved for a future
// release.
func (d *DNSRunner) Execute(_ context.Context, descriptor string) (model.TestResult, error) {
	return model.TestResult{}, fmt.Errorf("dns probe %q: not supported", descriptor)
}
