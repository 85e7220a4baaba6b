package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/brindlewatch/watchdog/internal/model"
)

const httpRunnerTimeout = 10 * time.Second

// HTTPRunner checks reachability of a domain (or domain/path) over plain
// HTTP, never inferring a scheme.
type HTTPRunner struct {
	client *http.Client
}

// NewHTTPRunner builds an HTTPRunner with a single shared client, so the
// relay never opens a fresh connection pool per probe tick.
func NewHTTPRunner() *HTTPRunner {
	return &HTTPRunner{client: &http.Client{Timeout: httpRunnerTimeout}}
}

// Matches accepts descriptors of the form "http <domain[/path]>".
func (h *HTTPRunner) Matches(descriptor string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(descriptor), " ")
	return first == "http"
}

// Execute sends a GET to http://<domain> and classifies the response:
// 2xx/3xx -> Success, 4xx/5xx -> Warning, transport failure -> Fail.
func (h *HTTPRunner) Execute(ctx context.Context, descriptor string) (model.TestResult, error) {
	fields := strings.Fields(descriptor)
	if len(fields) < 2 || fields[1] == "" {
		return model.TestResult{}, fmt.Errorf("http: missing target")
	}
	target := fields[1]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+target, nil)
	if err != nil {
		return model.TestResult{}, fmt.Errorf("http: build request for %s: %w", target, err)
	}
	req.Header.Set("user-agent", "watchdog-relay")
	req.Header.Set("cache-control", "no-store")

	start := time.Now()
	resp, err := h.client.Do(req)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		return model.TestResult{
			Target:   target,
			Category: model.TestFail,
			Metrics:  map[string]float64{"http_latency": latencyMs},
		}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	category := model.TestSuccess
	if resp.StatusCode >= 400 {
		category = model.TestWarning
	}
	return model.TestResult{
		Target:   target,
		Category: category,
		Metrics:  map[string]float64{"http_latency": latencyMs},
	}, nil
}
