// Package alertmgr holds the unordered medium_id -> Medium registry and
// dispatch logic described by spec §4.7: a Medium only builds an unsent
// HTTP request; the manager sends it and interprets the status.
package alertmgr

import (
	"context"
	"net/http"
)

// Medium builds an unsent outbound request for one alert message. The
// manager owns sending and status interpretation so every medium is tested
// without touching the network.
type Medium interface {
	ID() string
	BuildRequest(message string) (*http.Request, error)
}

// Manager holds every configured Medium and dispatches alerts to them.
type Manager struct {
	mediums map[string]Medium
	order   []string // preserves registration order for trigger_all_test_alerts
	client  *http.Client
}

// New builds an empty Manager. Register mediums with Register before use.
func New(client *http.Client) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	return &Manager{mediums: make(map[string]Medium), client: client}
}

// Register adds m to the registry, keyed by its own ID.
func (m *Manager) Register(medium Medium) {
	id := medium.ID()
	if _, exists := m.mediums[id]; !exists {
		m.order = append(m.order, id)
	}
	m.mediums[id] = medium
}

// Len reports how many mediums are registered.
func (m *Manager) Len() int {
	return len(m.mediums)
}

func (m *Manager) resolve(mediumID string) (Medium, error) {
	if mediumID != "" {
		med, ok := m.mediums[mediumID]
		if !ok {
			return nil, &ErrUnknownMedium{ID: mediumID}
		}
		return med, nil
	}
	for _, id := range m.order {
		return m.mediums[id], nil
	}
	return nil, &ErrNoMediumsConfigured{}
}

// Alert selects mediumID (or any one medium if empty) and sends message to
// it, returning an error on transport failure or a non-2xx response.
func (m *Manager) Alert(ctx context.Context, mediumID, message string) error {
	med, err := m.resolve(mediumID)
	if err != nil {
		return err
	}
	return m.send(ctx, med, message)
}

func (m *Manager) send(ctx context.Context, med Medium, message string) error {
	req, err := med.BuildRequest(message)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)

	resp, err := m.client.Do(req)
	if err != nil {
		return &ErrMediumDispatch{MediumID: med.ID(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ErrMediumDispatch{MediumID: med.ID(), StatusCode: resp.StatusCode}
	}
	return nil
}

// TriggerAllTestAlerts sends a canned test message to every registered
// medium and returns the first error encountered, continuing through the
// rest so one wedged medium doesn't block the others' test alert.
func (m *Manager) TriggerAllTestAlerts(ctx context.Context) error {
	var firstErr error
	for _, id := range m.order {
		if err := m.send(ctx, m.mediums[id], "watchdog test alert"); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
