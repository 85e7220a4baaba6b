// Command relay runs a single region's probe/heartbeat loop against a
// controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brindlewatch/watchdog/internal/cfg/relaycfg"
	"github.com/brindlewatch/watchdog/internal/platform/log"
	"github.com/brindlewatch/watchdog/internal/platform/otelx"
	"github.com/brindlewatch/watchdog/internal/probe"
	"github.com/brindlewatch/watchdog/internal/relay"
	"github.com/brindlewatch/watchdog/internal/relayclient"
)

const envPrefix = "WATCHDOG_RELAY_"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rc relaycfg.Config
	rc.RegisterFlags(flag.CommandLine)
	flag.Parse()
	fillFromEnv(flag.CommandLine, envPrefix)

	if err := rc.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	l := log.New(log.Config{Level: rc.LogLevel, JSON: rc.LogJSON})
	ctx = log.WithContext(ctx, l)

	shutdownOtel, err := otelx.Init("watchdog-relay")
	if err != nil {
		return fmt.Errorf("otel init: %w", err)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			l.Error(context.Background(), err, "otel shutdown failed")
		}
	}()

	client := relayclient.New(rc.ControllerURL, rc.AuthToken, rc.Region)
	runner := probe.NewTestRunner()
	loop := relay.New(client, runner, l.With("component", "relay", "region", rc.Region))

	l.Info(ctx, "relay started", "controller_url", rc.ControllerURL, "region", rc.Region)

	if err := loop.Run(ctx); err != nil {
		return fmt.Errorf("relay loop: %w", err)
	}
	l.Info(context.Background(), "relay stopped")
	return nil
}

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
