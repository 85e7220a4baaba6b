// Package store implements the controller's single in-memory State Store:
// regions, groups, and the append-only incident log, protected by one
// readers-writer lock with narrow critical sections.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/brindlewatch/watchdog/internal/model"
)

// Store is the controller's sole shared mutable state. The zero value is not
// usable; construct with New.
type Store struct {
	mu sync.RWMutex

	regions map[string]*model.Region
	groups  map[string]*model.Group // keyed by model.GroupKey(region, group)

	incidents      []model.Incident
	nextIncidentID uint32 // next id to assign; starts at 0 per the Incidents policy
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		regions: make(map[string]*model.Region),
		groups:  make(map[string]*model.Group),
	}
}

// ErrNotFound is returned when a region or group key was never initialized.
type ErrNotFound struct {
	Kind string
	Key  string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("store: %s %q not found", e.Kind, e.Key)
}

// InitRegion creates a region in Initial status. linkedGroups is fixed for
// the region's lifetime.
func (s *Store) InitRegion(name string, linkedGroups []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions[name] = &model.Region{
		Name:         name,
		Status:       model.RegionInitial,
		UpdatedAt:    time.Now().UTC(),
		LinkedGroups: append([]string(nil), linkedGroups...),
	}
}

// InitGroup creates a group in Initial status with no metrics or error.
func (s *Store) InitGroup(region, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[model.GroupKey(region, name)] = &model.Group{
		Region:    region,
		Name:      name,
		Status:    model.GroupInitial,
		UpdatedAt: time.Now().UTC(),
	}
}

// GetRegionStatus reads a region's current status.
func (s *Store) GetRegionStatus(name string) (model.RegionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regions[name]
	if !ok {
		return "", &ErrNotFound{Kind: "region", Key: name}
	}
	return r.Status, nil
}

// GetGroupStatus reads a group's current status.
func (s *Store) GetGroupStatus(region, name string) (model.GroupStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[model.GroupKey(region, name)]
	if !ok {
		return "", &ErrNotFound{Kind: "group", Key: model.GroupKey(region, name)}
	}
	return g.Status, nil
}

// RefreshRegion sets status to Warn if hasWarnings else Up, and bumps
// updated_at to now. Shared by the HTTP heartbeat path and the scheduler.
func (s *Store) RefreshRegion(name string, hasWarnings bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regions[name]
	if !ok {
		return &ErrNotFound{Kind: "region", Key: name}
	}
	if hasWarnings {
		r.Status = model.RegionWarn
	} else {
		r.Status = model.RegionUp
	}
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// RefreshGroup applies a heartbeat's observed status to a group. Down status
// preserves the existing updated_at so the silence-age keeps advancing
// toward the group's threshold; any other status bumps it to now. Metrics
// and last error are always replaced with the latest observation.
func (s *Store) RefreshGroup(region, name string, newStatus model.GroupStatus, metrics []model.Metric, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := model.GroupKey(region, name)
	g, ok := s.groups[key]
	if !ok {
		return &ErrNotFound{Kind: "group", Key: key}
	}

	g.Status = newStatus
	if newStatus != model.GroupDown {
		g.UpdatedAt = time.Now().UTC()
	}
	g.LastMetrics = metrics
	g.LastError = lastError
	return nil
}

// TriggerRegionIncident marks a region Down (preserving updated_at),
// cascades every linked group to Incident, and appends an Incident record.
func (s *Store) TriggerRegionIncident(name string, thresholdMs uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.regions[name]
	if !ok {
		return &ErrNotFound{Kind: "region", Key: name}
	}

	r.Status = model.RegionDown
	now := time.Now().UTC()

	for _, gname := range r.LinkedGroups {
		key := model.GroupKey(name, gname)
		g, ok := s.groups[key]
		if !ok {
			return &ErrNotFound{Kind: "group", Key: key}
		}
		g.Status = model.GroupIncident
		g.UpdatedAt = now
		g.LastMetrics = nil
		g.LastError = ""
	}

	s.appendIncidentLocked(model.Incident{
		Message:   fmt.Sprintf("Region %s is DOWN", name),
		Timestamp: now,
		Error:     fmt.Sprintf("no heartbeat received within %dms silence threshold", thresholdMs),
	})
	return nil
}

// TriggerGroupIncident marks a group Incident (preserving updated_at),
// carrying forward its last metrics/error, and appends an Incident record.
func (s *Store) TriggerGroupIncident(region, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.GroupKey(region, name)
	g, ok := s.groups[key]
	if !ok {
		return &ErrNotFound{Kind: "group", Key: key}
	}

	g.Status = model.GroupIncident

	s.appendIncidentLocked(model.Incident{
		Message:   fmt.Sprintf("Group %s is DOWN", key),
		Timestamp: time.Now().UTC(),
		Error:     g.LastError,
	})
	return nil
}

// appendIncidentLocked assigns the next monotonic id and appends. Callers
// must hold s.mu for writing.
func (s *Store) appendIncidentLocked(inc model.Incident) {
	inc.ID = s.nextIncidentID
	s.nextIncidentID++
	s.incidents = append(s.incidents, inc)
}

// FindIncidents returns a snapshot of every incident recorded so far.
func (s *Store) FindIncidents() []model.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Incident, len(s.incidents))
	copy(out, s.incidents)
	return out
}

// GetIncident fetches one incident by id.
func (s *Store) GetIncident(id uint32) (model.Incident, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inc := range s.incidents {
		if inc.ID == id {
			return inc, true
		}
	}
	return model.Incident{}, false
}

// ComputeAnalytics snapshots regions, groups, and incidents for GET /analytics.
func (s *Store) ComputeAnalytics() model.AnalyticsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.AnalyticsSnapshot{
		Regions:   make([]model.RegionSnapshot, 0, len(s.regions)),
		Groups:    make([]model.GroupSnapshot, 0, len(s.groups)),
		Incidents: make([]model.Incident, len(s.incidents)),
	}
	copy(snap.Incidents, s.incidents)

	for _, r := range s.regions {
		snap.Regions = append(snap.Regions, model.RegionSnapshot{
			Name:      r.Name,
			Status:    r.Status,
			UpdatedAt: r.UpdatedAt,
		})
	}
	for _, g := range s.groups {
		snap.Groups = append(snap.Groups, model.GroupSnapshot{
			Region:      g.Region,
			Name:        g.Name,
			Status:      g.Status,
			UpdatedAt:   g.UpdatedAt,
			LastMetrics: append([]model.Metric(nil), g.LastMetrics...),
			LastError:   g.LastError,
		})
	}
	return snap
}

// CollectRegionMetrics emits one "region" metric per region, labeled with
// region_name and encoded per model.RegionStatusValue.
func (s *Store) CollectRegionMetrics() []model.FullMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.FullMetric, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, model.FullMetric{
			Name:   "region",
			Labels: map[string]string{"region_name": r.Name},
			Value:  model.RegionStatusValue(r.Status),
		})
	}
	return out
}

// CollectTestMetrics emits every group's last-observed metrics, enriched
// with region/group labels taken from the group's Region and Name fields.
func (s *Store) CollectTestMetrics() []model.FullMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.FullMetric
	for _, g := range s.groups {
		for _, m := range g.LastMetrics {
			labels := make(map[string]string, len(m.Labels)+2)
			for k, v := range m.Labels {
				labels[k] = v
			}
			labels["region"] = g.Region
			labels["group"] = g.Name
			out = append(out, model.FullMetric{
				Name:   m.Name,
				Labels: labels,
				Value:  m.Value,
			})
		}
	}
	return out
}

// RegionSnapshot is a narrow read of a region used by the watchdog scheduler
// to decide whether to sweep it, without holding the lock during the sweep
// body's own mutating calls.
type RegionSnapshot struct {
	Name      string
	Status    model.RegionStatus
	UpdatedAt time.Time
}

// GroupSnapshot mirrors RegionSnapshot for groups.
type GroupSnapshot struct {
	Region    string
	Name      string
	Status    model.GroupStatus
	UpdatedAt time.Time
}

// SnapshotRegions copies out every region's sweep-relevant fields.
func (s *Store) SnapshotRegions() []RegionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RegionSnapshot, 0, len(s.regions))
	for _, r := range s.regions {
		out = append(out, RegionSnapshot{Name: r.Name, Status: r.Status, UpdatedAt: r.UpdatedAt})
	}
	return out
}

// SnapshotGroups copies out every group's sweep-relevant fields.
func (s *Store) SnapshotGroups() []GroupSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]GroupSnapshot, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, GroupSnapshot{Region: g.Region, Name: g.Name, Status: g.Status, UpdatedAt: g.UpdatedAt})
	}
	return out
}
