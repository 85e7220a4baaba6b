// Package httpserver starts an http.Server and returns a context-aware
// shutdown function, the same shape the teacher's cmd/server/main.go expects
// from each long-lived listener it owns.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brindlewatch/watchdog/internal/platform/log"
)

// Config controls listener timeouts. Zero values fall back to sane defaults.
type Config struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
}

func (c Config) withDefaults() Config {
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 5 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 120 * time.Second
	}
	return c
}

// Start binds addr and serves h in the background. The returned func blocks
// until graceful shutdown completes or ctx is done.
func Start(ctx context.Context, addr string, h http.Handler, l log.Logger, cfg Config) (func(context.Context) error, error) {
	cfg = cfg.withDefaults()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	l.Info(ctx, "http listener started", "addr", addr)

	return func(shutdownCtx context.Context) error {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown %s: %w", addr, err)
		}
		select {
		case err := <-errCh:
			return err
		case <-shutdownCtx.Done():
			return shutdownCtx.Err()
		}
	}, nil
}
