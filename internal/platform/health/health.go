// Package health provides liveness/readiness probes and a shutdown gate,
// used by the controller's admin listener.
package health

import (
	"net/http"
	"sync/atomic"
)

// Probe reports whether a subsystem is healthy, with an optional reason.
type Probe func() (ok bool, reason string)

// Fixed returns a Probe with a constant result, for liveness checks that are
// true as long as the process can respond at all.
func Fixed(ok bool, reason string) Probe {
	return func() (bool, string) { return ok, reason }
}

// All combines probes; it reports unhealthy if any sub-probe does.
func All(probes ...Probe) Probe {
	return func() (bool, string) {
		for _, p := range probes {
			if ok, reason := p(); !ok {
				return false, reason
			}
		}
		return true, ""
	}
}

// ShutdownGate flips readiness to false during graceful drain so a load
// balancer stops sending new traffic before the process actually exits.
type ShutdownGate struct {
	draining atomic.Bool
	reason   atomic.Value
}

// Set marks the gate as closed (draining) with the given reason.
func (g *ShutdownGate) Set(reason string) {
	g.reason.Store(reason)
	g.draining.Store(true)
}

// Probe returns a health.Probe reflecting the gate's current state.
func (g *ShutdownGate) Probe() Probe {
	return func() (bool, string) {
		if g.draining.Load() {
			r, _ := g.reason.Load().(string)
			return false, r
		}
		return true, ""
	}
}

// HealthzHandler serves 200 when p reports healthy, 503 otherwise.
func HealthzHandler(p Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if ok, _ := p(); ok {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unhealthy"))
	}
}

// ReadyzHandler serves 200 when p reports ready, 503 otherwise.
func ReadyzHandler(p Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ok, reason := p()
		if ok {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready: " + reason))
	}
}
