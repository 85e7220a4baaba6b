// Package relay implements the relay's tick loop: run every configured
// probe, aggregate per group, heartbeat to the controller, optionally ping
// Kuma, and wait for the next interval or a shutdown signal.
package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/brindlewatch/watchdog/internal/model"
	"github.com/brindlewatch/watchdog/internal/platform/log"
	"github.com/brindlewatch/watchdog/internal/probe"
)

// ControllerClient is the subset of relayclient.Client the loop depends on,
// narrowed for testability.
type ControllerClient interface {
	FetchRegionConfig(ctx context.Context) (*model.RegionConfig, error)
	UpdateRegionState(ctx context.Context, results []model.GroupResult, lastVersion string) (version string, changed bool, err error)
	TriggerKuma(ctx context.Context, kumaURL, msg string, pingMs *float64) error
}

// Loop runs the relay's probe/heartbeat cycle against one region.
type Loop struct {
	client  ControllerClient
	runner  interface {
		Run(ctx context.Context, descriptor string) (model.TestResult, error)
	}
	log log.Logger

	cfg         *model.RegionConfig
	lastVersion string
}

// New builds a Loop. Use probe.NewTestRunner() for runner in production.
func New(client ControllerClient, runner *probe.TestRunner, l log.Logger) *Loop {
	return &Loop{client: client, runner: runner, log: l}
}

// Run fetches the initial region configuration (a failure here is fatal per
// spec §4.3) and then ticks until ctx is canceled.
func (lp *Loop) Run(ctx context.Context) error {
	cfg, err := lp.client.FetchRegionConfig(ctx)
	if err != nil {
		return fmt.Errorf("relay: initial region config fetch failed (check token/region name): %w", err)
	}
	lp.cfg = cfg

	for {
		if ctx.Err() != nil {
			return nil
		}
		lp.tick(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(lp.cfg.IntervalMs) * time.Millisecond):
		}
	}
}

// tick runs one full iteration: probes, aggregation, heartbeat, hot reload,
// and the optional Kuma ping. Errors within a tick are logged, never fatal.
func (lp *Loop) tick(ctx context.Context) {
	results := make([]model.GroupResult, 0, len(lp.cfg.Groups))
	var lastPingMs *float64

	for _, g := range lp.cfg.Groups {
		result, ping := lp.runGroup(ctx, g)
		results = append(results, result)
		if ping != nil {
			lastPingMs = ping
		}
	}

	lp.heartbeat(ctx, results)

	if lp.cfg.KumaURL != "" {
		lp.pingKuma(ctx, results, lastPingMs)
	}
}

// runGroup executes every probe descriptor in g, aggregates working/
// has_warnings per spec §4.3.2, and returns the most recent ping_rtt metric
// observed (if any) as the Kuma ping candidate.
func (lp *Loop) runGroup(ctx context.Context, g model.GroupConfig) (model.GroupResult, *float64) {
	result := model.GroupResult{Name: g.Name, Working: true, Metrics: []model.WireMetric{}}
	var pingMs *float64

	for _, descriptor := range g.Tests {
		tr, err := lp.runner.Run(ctx, descriptor)
		if err != nil {
			result.Working = false
			result.ErrorMessage = err.Error()
			result.ErrorDetail = descriptor
			continue
		}

		switch tr.Category {
		case model.TestFail:
			result.Working = false
		case model.TestWarning:
			result.HasWarnings = true
		}

		result.Metrics = append(result.Metrics, model.ToWireMetrics(tr.Target, tr.Metrics)...)
		if v, ok := tr.Metrics["ping_rtt"]; ok {
			vv := v
			pingMs = &vv
		}
	}

	if !result.Working && result.ErrorMessage == "" {
		result.ErrorMessage = "one or more probes failed"
	}
	return result, pingMs
}

// heartbeat pushes results to the controller and adopts a hot-reloaded
// configuration when the controller's response signals a config change
// past the relay's first tick (spec §4.3.4).
func (lp *Loop) heartbeat(ctx context.Context, results []model.GroupResult) {
	version, changed, err := lp.client.UpdateRegionState(ctx, results, lp.lastVersion)
	if err != nil {
		lp.log.Error(ctx, err, "relay heartbeat failed")
		return
	}
	if !changed {
		return
	}

	wasFirstTick := lp.lastVersion == ""
	lp.lastVersion = version
	if wasFirstTick {
		return
	}

	newCfg, err := lp.client.FetchRegionConfig(ctx)
	if err != nil {
		lp.log.Error(ctx, err, "relay config hot reload failed", "new_version", version)
		return
	}
	lp.log.Info(ctx, "relay adopted new region configuration", "new_version", version)
	lp.cfg = newCfg
}

// pingKuma sends the aggregate health summary to the configured Kuma push
// URL. Failures are logged but never fail the tick (spec §4.3.5).
func (lp *Loop) pingKuma(ctx context.Context, results []model.GroupResult, pingMs *float64) {
	unstable := 0
	for _, r := range results {
		if !r.Working || r.HasWarnings {
			unstable++
		}
	}

	var msg string
	if unstable == 0 {
		msg = fmt.Sprintf("OK %d healthy", len(results))
	} else {
		msg = fmt.Sprintf("WARN %d unstable", unstable)
	}

	if err := lp.client.TriggerKuma(ctx, lp.cfg.KumaURL, msg, pingMs); err != nil {
		lp.log.Warn(ctx, "kuma ping failed", "error", err.Error())
	}
}
