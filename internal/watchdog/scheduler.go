// Package watchdog implements the controller's background scheduler: a
// 1-second sweep that turns heartbeat silence into incidents and alerts.
package watchdog

import (
	"context"
	"fmt"
	"time"

	"github.com/brindlewatch/watchdog/internal/model"
	"github.com/brindlewatch/watchdog/internal/platform/log"
	"github.com/brindlewatch/watchdog/internal/store"
)

// Store is the subset of *store.Store the scheduler depends on.
type Store interface {
	SnapshotRegions() []store.RegionSnapshot
	SnapshotGroups() []store.GroupSnapshot
	TriggerRegionIncident(name string, thresholdMs uint64) error
	TriggerGroupIncident(region, name string) error
}

// Alerter dispatches an alert message to a medium. mediumID empty selects
// any configured medium, per spec §4.7's alert(medium_id?, message).
type Alerter interface {
	Alert(ctx context.Context, mediumID, message string) error
}

// Thresholds resolves the silence thresholds declared for a region and its
// groups, derived once at config-load time (see internal/regioncfg) and
// handed to the scheduler unchanged for the life of the process.
type Thresholds struct {
	Region map[string]uint64            // region name -> threshold_ms
	Group  map[string]uint64            // model.GroupKey(region, group) -> threshold_ms
}

// RegionThreshold returns the region's threshold, or false if unknown.
func (t Thresholds) RegionThreshold(name string) (uint64, bool) {
	v, ok := t.Region[name]
	return v, ok
}

// GroupThreshold returns the group's threshold, or false if unknown.
func (t Thresholds) GroupThreshold(region, name string) (uint64, bool) {
	v, ok := t.Group[model.GroupKey(region, name)]
	return v, ok
}

// Scheduler runs the 1-second sweep loop.
type Scheduler struct {
	store      Store
	thresholds Thresholds
	alerter    Alerter
	log        log.Logger
	tick       time.Duration
}

// New builds a Scheduler. tick defaults to one second when zero.
func New(s Store, thresholds Thresholds, alerter Alerter, l log.Logger, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Second
	}
	return &Scheduler{store: s, thresholds: thresholds, alerter: alerter, log: l, tick: tick}
}

// Run sweeps every tick until ctx is canceled.
func (sc *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(sc.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sc.sweep(ctx)
		}
	}
}

// sweep performs one region sweep and one group sweep, per spec §4.6.
func (sc *Scheduler) sweep(ctx context.Context) {
	now := time.Now().UTC()

	for _, r := range sc.store.SnapshotRegions() {
		if r.Status != model.RegionUp && r.Status != model.RegionWarn {
			continue
		}
		threshold, ok := sc.thresholds.RegionThreshold(r.Name)
		if !ok {
			continue
		}
		if now.Sub(r.UpdatedAt) <= time.Duration(threshold)*time.Millisecond {
			continue
		}

		if err := sc.store.TriggerRegionIncident(r.Name, threshold); err != nil {
			sc.log.Error(ctx, err, "watchdog: trigger region incident failed", "region", r.Name)
			continue
		}
		sc.dispatchAlert(ctx, fmt.Sprintf("Network DOWN on region %s", r.Name))
	}

	for _, g := range sc.store.SnapshotGroups() {
		if g.Status != model.GroupDown {
			continue
		}
		threshold, ok := sc.thresholds.GroupThreshold(g.Region, g.Name)
		if !ok {
			continue
		}
		if now.Sub(g.UpdatedAt) <= time.Duration(threshold)*time.Millisecond {
			continue
		}

		if err := sc.store.TriggerGroupIncident(g.Region, g.Name); err != nil {
			sc.log.Error(ctx, err, "watchdog: trigger group incident failed", "region", g.Region, "group", g.Name)
			continue
		}
		sc.dispatchAlert(ctx, fmt.Sprintf("Network DOWN on group %s.%s", g.Region, g.Name))
	}
}

func (sc *Scheduler) dispatchAlert(ctx context.Context, message string) {
	if sc.alerter == nil {
		return
	}
	if err := sc.alerter.Alert(ctx, "", message); err != nil {
		sc.log.Error(ctx, err, "watchdog: alert dispatch failed", "message", message)
	}
}
