package watchdog

import (
	"context"
	"testing"
	"time"

	"github.com/brindlewatch/watchdog/internal/model"
	"github.com/brindlewatch/watchdog/internal/platform/log"
	"github.com/brindlewatch/watchdog/internal/store"
)

type fakeStore struct {
	regions []store.RegionSnapshot
	groups  []store.GroupSnapshot

	regionTriggers []string
	groupTriggers  []string
	triggerErr     error
}

func (f *fakeStore) SnapshotRegions() []store.RegionSnapshot { return f.regions }
func (f *fakeStore) SnapshotGroups() []store.GroupSnapshot   { return f.groups }

func (f *fakeStore) TriggerRegionIncident(name string, _ uint64) error {
	f.regionTriggers = append(f.regionTriggers, name)
	return f.triggerErr
}

func (f *fakeStore) TriggerGroupIncident(region, name string) error {
	f.groupTriggers = append(f.groupTriggers, model.GroupKey(region, name))
	return f.triggerErr
}

type fakeAlerter struct {
	messages []string
}

func (f *fakeAlerter) Alert(_ context.Context, _ string, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

func TestSweep_RegionSilenceTriggersIncidentAndAlert(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{regions: []store.RegionSnapshot{
		{Name: "r1", Status: model.RegionUp, UpdatedAt: time.Now().UTC().Add(-10 * time.Second)},
	}}
	fa := &fakeAlerter{}
	sc := New(fs, Thresholds{Region: map[string]uint64{"r1": 5000}}, fa, log.Nop(), time.Second)

	sc.sweep(t.Context())

	if len(fs.regionTriggers) != 1 || fs.regionTriggers[0] != "r1" {
		t.Fatalf("regionTriggers = %v", fs.regionTriggers)
	}
	if len(fa.messages) != 1 || fa.messages[0] != "Network DOWN on region r1" {
		t.Errorf("messages = %v", fa.messages)
	}
}

func TestSweep_RegionWithinThresholdIsIgnored(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{regions: []store.RegionSnapshot{
		{Name: "r1", Status: model.RegionUp, UpdatedAt: time.Now().UTC()},
	}}
	fa := &fakeAlerter{}
	sc := New(fs, Thresholds{Region: map[string]uint64{"r1": 5000}}, fa, log.Nop(), time.Second)

	sc.sweep(t.Context())

	if len(fs.regionTriggers) != 0 {
		t.Errorf("regionTriggers = %v, want none", fs.regionTriggers)
	}
}

func TestSweep_InitialAndDownRegionsAreIgnored(t *testing.T) {
	t.Parallel()

	old := time.Now().UTC().Add(-time.Hour)
	fs := &fakeStore{regions: []store.RegionSnapshot{
		{Name: "r1", Status: model.RegionInitial, UpdatedAt: old},
		{Name: "r2", Status: model.RegionDown, UpdatedAt: old},
	}}
	fa := &fakeAlerter{}
	sc := New(fs, Thresholds{Region: map[string]uint64{"r1": 5000, "r2": 5000}}, fa, log.Nop(), time.Second)

	sc.sweep(t.Context())

	if len(fs.regionTriggers) != 0 {
		t.Errorf("regionTriggers = %v, want none", fs.regionTriggers)
	}
}

func TestSweep_GroupSilenceTriggersIncidentAndAlert(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{groups: []store.GroupSnapshot{
		{Region: "r1", Name: "g1", Status: model.GroupDown, UpdatedAt: time.Now().UTC().Add(-10 * time.Second)},
	}}
	fa := &fakeAlerter{}
	sc := New(fs, Thresholds{Group: map[string]uint64{"r1.g1": 5000}}, fa, log.Nop(), time.Second)

	sc.sweep(t.Context())

	if len(fs.groupTriggers) != 1 || fs.groupTriggers[0] != "r1.g1" {
		t.Fatalf("groupTriggers = %v", fs.groupTriggers)
	}
	if len(fa.messages) != 1 || fa.messages[0] != "Network DOWN on group r1.g1" {
		t.Errorf("messages = %v", fa.messages)
	}
}

func TestSweep_NonDownGroupsAreIgnored(t *testing.T) {
	t.Parallel()

	old := time.Now().UTC().Add(-time.Hour)
	fs := &fakeStore{groups: []store.GroupSnapshot{
		{Region: "r1", Name: "g1", Status: model.GroupUp, UpdatedAt: old},
		{Region: "r1", Name: "g2", Status: model.GroupWarn, UpdatedAt: old},
		{Region: "r1", Name: "g3", Status: model.GroupInitial, UpdatedAt: old},
		{Region: "r1", Name: "g4", Status: model.GroupIncident, UpdatedAt: old},
	}}
	fa := &fakeAlerter{}
	sc := New(fs, Thresholds{Group: map[string]uint64{
		"r1.g1": 5000, "r1.g2": 5000, "r1.g3": 5000, "r1.g4": 5000,
	}}, fa, log.Nop(), time.Second)

	sc.sweep(t.Context())

	if len(fs.groupTriggers) != 0 {
		t.Errorf("groupTriggers = %v, want none", fs.groupTriggers)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{}
	sc := New(fs, Thresholds{}, nil, log.Nop(), 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sc.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
