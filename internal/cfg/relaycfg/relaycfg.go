// Package relaycfg is the relay binary's flag-registered, env-overridable
// configuration.
package relaycfg

import (
	"errors"
	"flag"
)

// Config holds every setting the relay needs at startup.
type Config struct {
	ControllerURL string
	AuthToken     string
	Region        string
	LogLevel      string
	LogJSON       bool
}

// RegisterFlags binds Config fields to fs with defaults inline.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ControllerURL, "controller-url", "", "base URL of the controller API")
	fs.StringVar(&c.AuthToken, "auth-token", "", "bearer token presented to the controller")
	fs.StringVar(&c.Region, "region", "", "region name this relay reports as")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.BoolVar(&c.LogJSON, "log-json", true, "emit JSON-structured logs")
}

// Validate checks every field for correctness, joining all failures.
func (c *Config) Validate() error {
	var errs []error

	if c.ControllerURL == "" {
		errs = append(errs, errors.New("CONTROLLER_URL is required"))
	}
	if c.AuthToken == "" {
		errs = append(errs, errors.New("AUTH_TOKEN is required"))
	}
	if c.Region == "" {
		errs = append(errs, errors.New("REGION is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
