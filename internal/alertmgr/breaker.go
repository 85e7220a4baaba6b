package alertmgr

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
)

// BreakingManager wraps a Manager so each medium dispatch goes through its
// own circuit breaker: a medium stuck failing trips open instead of eating
// the full per-request timeout on every alert, and stops blocking the
// other mediums' sends within TriggerAllTestAlerts.
type BreakingManager struct {
	*Manager
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreaking wraps m, building one breaker per medium already registered
// on it. A medium registered on m afterward gets its breaker created lazily
// on its first Alert.
func NewBreaking(m *Manager) *BreakingManager {
	bm := &BreakingManager{Manager: m, breakers: make(map[string]*gobreaker.CircuitBreaker)}
	for _, id := range m.order {
		bm.breakers[id] = newMediumBreaker(id)
	}
	return bm
}

func newMediumBreaker(mediumID string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "alertmgr:" + mediumID,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// Alert dispatches through the resolved medium's breaker.
func (bm *BreakingManager) Alert(ctx context.Context, mediumID, message string) error {
	med, err := bm.resolve(mediumID)
	if err != nil {
		return err
	}
	breaker, ok := bm.breakers[med.ID()]
	if !ok {
		breaker = newMediumBreaker(med.ID())
		bm.breakers[med.ID()] = breaker
	}
	_, err = breaker.Execute(func() (any, error) {
		return nil, bm.send(ctx, med, message)
	})
	return err
}

// TriggerAllTestAlerts sends a canned test message to every registered
// medium through its own breaker, overriding the embedded Manager's version
// so a tripped breaker short-circuits test-alert dispatch the same way it
// does for Alert, instead of hitting the medium directly.
func (bm *BreakingManager) TriggerAllTestAlerts(ctx context.Context) error {
	var firstErr error
	for _, id := range bm.order {
		if err := bm.Alert(ctx, id, "watchdog test alert"); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
