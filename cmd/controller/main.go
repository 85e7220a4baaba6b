// Command controller runs the watchdog controller: the public HTTP API,
// the in-memory state store, the watchdog sweep scheduler, and the alert
// manager.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/brindlewatch/watchdog/internal/alertmgr"
	"github.com/brindlewatch/watchdog/internal/cfg/controllercfg"
	"github.com/brindlewatch/watchdog/internal/httpapi"
	"github.com/brindlewatch/watchdog/internal/model"
	"github.com/brindlewatch/watchdog/internal/platform/health"
	"github.com/brindlewatch/watchdog/internal/platform/httpserver"
	"github.com/brindlewatch/watchdog/internal/platform/log"
	"github.com/brindlewatch/watchdog/internal/platform/opsmetrics"
	"github.com/brindlewatch/watchdog/internal/platform/otelx"
	"github.com/brindlewatch/watchdog/internal/regioncfg"
	"github.com/brindlewatch/watchdog/internal/store"
	"github.com/brindlewatch/watchdog/internal/watchdog"
)

const envPrefix = "WATCHDOG_"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cc controllercfg.Config
	cc.RegisterFlags(flag.CommandLine)
	flag.Parse()
	fillFromEnv(flag.CommandLine, envPrefix)
	if cc.AuthToken == "" {
		if v, ok := os.LookupEnv("WATCHDOG_TOKEN"); ok {
			cc.AuthToken = v
		}
	}

	if err := cc.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	l := log.New(log.Config{Level: cc.LogLevel, JSON: cc.LogJSON})
	ctx = log.WithContext(ctx, l)

	shutdownOtel, err := otelx.Init("watchdog-controller")
	if err != nil {
		return fmt.Errorf("otel init: %w", err)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			l.Error(context.Background(), err, "otel shutdown failed")
		}
	}()

	raw, err := os.ReadFile(cc.RegionsConfigPath)
	if err != nil {
		return fmt.Errorf("reading regions config %s: %w", cc.RegionsConfigPath, err)
	}
	regions, err := regioncfg.Load(raw)
	if err != nil {
		return fmt.Errorf("loading regions config: %w", err)
	}
	version := configVersion(raw)

	st := store.New()
	thresholds := watchdog.Thresholds{
		Region: make(map[string]uint64, len(regions)),
		Group:  make(map[string]uint64),
	}
	for _, r := range regions {
		st.InitRegion(r.Name, r.LinkedGroupNames())
		thresholds.Region[r.Name] = r.ThresholdMs
		for _, g := range r.Groups {
			st.InitGroup(r.Name, g.Name)
			thresholds.Group[model.GroupKey(r.Name, g.Name)] = g.ThresholdMs
		}
	}

	mediumEntries, err := loadAlertEntries(raw)
	if err != nil {
		return fmt.Errorf("loading alert medium configuration: %w", err)
	}
	var alerter *alertmgr.BreakingManager
	if len(mediumEntries) > 0 {
		mgr, err := alertmgr.Build(&http.Client{Timeout: 10 * time.Second}, mediumEntries)
		if err != nil {
			return fmt.Errorf("building alert manager: %w", err)
		}
		alerter = alertmgr.NewBreaking(mgr)
	}

	tick := time.Second
	var sched *watchdog.Scheduler
	if alerter != nil {
		sched = watchdog.New(st, thresholds, alerter, l.With("component", "watchdog"), tick)
	} else {
		sched = watchdog.New(st, thresholds, noopAlerter{}, l.With("component", "watchdog"), tick)
	}
	go sched.Run(ctx)

	metrics := opsmetrics.New()

	configs := httpapi.NewConfigRegistry(regions, version)
	var testAlerter httpapi.TestAlerter
	if alerter != nil {
		testAlerter = alerter
	}
	api := httpapi.New(st, configs, testAlerter, l.With("component", "httpapi"))
	router := httpapi.NewRouter(api, cc.AuthToken, l)

	apiStop, err := httpserver.Start(ctx, fmt.Sprintf(":%d", cc.APIPort), metrics.Middleware(router), l, httpserver.Config{})
	if err != nil {
		return fmt.Errorf("starting public API listener: %w", err)
	}
	defer func() {
		if err := apiStop(context.Background()); err != nil {
			l.Error(context.Background(), err, "public API shutdown failed")
		}
	}()

	var shutdownGate health.ShutdownGate
	opsRouter := chi.NewRouter()
	opsRouter.Get("/healthz", health.HealthzHandler(health.Fixed(true, "")))
	opsRouter.Get("/readyz", health.ReadyzHandler(shutdownGate.Probe()))
	opsRouter.Handle("/metrics", metrics.Handler())
	opsStop, err := httpserver.Start(ctx, ":9090", opsRouter, l, httpserver.Config{})
	if err != nil {
		return fmt.Errorf("starting admin listener: %w", err)
	}
	defer func() {
		if err := opsStop(context.Background()); err != nil {
			l.Error(context.Background(), err, "admin listener shutdown failed")
		}
	}()

	l.Info(ctx, "controller started", "api_port", cc.APIPort, "regions", len(regions), "config_version", version)

	<-ctx.Done()
	l.Info(context.Background(), "shutdown signal received")
	shutdownGate.Set("draining")

	drainDuration := time.Duration(cc.DrainSeconds) * time.Second
	forceCh := make(chan os.Signal, 1)
	signal.Notify(forceCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-time.After(drainDuration):
		l.Info(context.Background(), "drain period complete")
	case <-forceCh:
		l.Warn(context.Background(), "second signal received, skipping drain")
	}
	signal.Stop(forceCh)

	budget := time.Duration(cc.ShutdownBudgetSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	var errs []error
	if err := apiStop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("public API: %w", err))
	}
	if err := opsStop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("admin listener: %w", err))
	}
	return errors.Join(errs...)
}

// configVersion derives the X-Watchdog-Update token from the region
// declaration file's content: the token changes exactly when the declared
// configuration changes, and is stable across restarts on unchanged input.
func configVersion(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:12]
}

// mediumsFile is the alert_mediums section of the regions declaration file:
// a flat list of named medium entries referencing env vars for secrets, per
// spec §4.7.
type mediumsFile struct {
	AlertMediums []mediumDecl `yaml:"alert_mediums"`
}

type mediumDecl struct {
	Kind          string `yaml:"kind"`
	ChatEnv       string `yaml:"chat_env"`
	TokenEnv      string `yaml:"token_env"`
	RecipientsEnv string `yaml:"recipients_env"`
	WebhookEnv    string `yaml:"webhook_env"`
}

func loadAlertEntries(raw []byte) ([]alertmgr.Entry, error) {
	var f mediumsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing alert_mediums: %w", err)
	}
	entries := make([]alertmgr.Entry, 0, len(f.AlertMediums))
	for _, d := range f.AlertMediums {
		entries = append(entries, alertmgr.Entry{
			Kind:          alertmgr.EntryKind(d.Kind),
			ChatEnv:       d.ChatEnv,
			TokenEnv:      d.TokenEnv,
			RecipientsEnv: d.RecipientsEnv,
			WebhookEnv:    d.WebhookEnv,
		})
	}
	return entries, nil
}

type noopAlerter struct{}

func (noopAlerter) Alert(context.Context, string, string) error { return nil }

// fillFromEnv overrides any flag not explicitly set on the command line with
// the value of its PREFIX+FLAG_NAME environment variable, dashes mapped to
// underscores and upper-cased.
func fillFromEnv(fs *flag.FlagSet, prefix string) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	fs.VisitAll(func(f *flag.Flag) {
		if set[f.Name] {
			return
		}
		name := prefix + envName(f.Name)
		if v, ok := os.LookupEnv(name); ok {
			_ = f.Value.Set(v)
		}
	})
}

func envName(flagName string) string {
	out := make([]byte, 0, len(flagName))
	for _, c := range []byte(flagName) {
		if c == '-' {
			out = append(out, '_')
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
