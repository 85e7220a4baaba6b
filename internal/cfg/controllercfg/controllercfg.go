// Package controllercfg is the controller binary's flag-registered,
// env-overridable configuration.
package controllercfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config holds every setting the controller needs at startup.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	AuthToken             string
	RegionsConfigPath     string
	LogLevel              string
	LogJSON               bool
}

// RegisterFlags binds Config fields to fs with defaults inline.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.AuthToken, "auth-token", "", "bearer token required on every /api/v1 request")
	fs.StringVar(&c.RegionsConfigPath, "regions-config", "regions.yaml", "path to the region/group declaration file")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.BoolVar(&c.LogJSON, "log-json", true, "emit JSON-structured logs")
}

// Validate checks every field for correctness, joining all failures.
func (c *Config) Validate() error {
	var errs []error

	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}
	if c.AuthToken == "" {
		errs = append(errs, errors.New("AUTH_TOKEN is required"))
	}
	if c.RegionsConfigPath == "" {
		errs = append(errs, errors.New("REGIONS_CONFIG is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
