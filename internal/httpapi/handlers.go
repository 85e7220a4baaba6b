package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/brindlewatch/watchdog/internal/httpapi/apierr"
	"github.com/brindlewatch/watchdog/internal/model"
)

func (a *API) handleGetRelay(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	cfg, ok := a.configs.Get(region)
	if !ok {
		apierr.NotFound(w, "unknown region")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cfg)
}

// handlePutRelay implements the PUT handler state logic of spec §4.8: map
// each reported group to a status, apply the Incident sticky-skip guard,
// refresh group state, detect region recovery from Down, then refresh the
// region's aggregate status.
func (a *API) handlePutRelay(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	if _, ok := a.configs.Get(region); !ok {
		apierr.NotFound(w, "unknown region")
		return
	}

	var results []model.GroupResult
	if err := json.NewDecoder(r.Body).Decode(&results); err != nil {
		apierr.BadRequest(w, "invalid request body", err.Error())
		return
	}

	hasWarning := false
	for _, gr := range results {
		if !gr.Working || gr.HasWarnings {
			hasWarning = true
		}

		current, err := a.store.GetGroupStatus(region, gr.Name)
		if err == nil && current == model.GroupIncident && !gr.Working {
			continue // sticky: an Incident group stays Incident until it reports working again
		}

		if err := a.store.RefreshGroup(region, gr.Name, deriveGroupStatus(gr), wireToMetrics(gr.Metrics), gr.ErrorMessage); err != nil {
			a.log.Error(r.Context(), err, "refresh group failed", "region", region, "group", gr.Name)
		}
	}

	if status, err := a.store.GetRegionStatus(region); err == nil && status == model.RegionDown {
		a.log.Info(r.Context(), "INCIDENT RESOLVED ON REGION "+region)
	}
	if err := a.store.RefreshRegion(region, hasWarning); err != nil {
		a.log.Error(r.Context(), err, "refresh region failed", "region", region)
		apierr.Internal(w, "failed to refresh region state")
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "close")
	w.Header().Set("X-Watchdog-Update", a.configs.Version())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"result": true})
}

func deriveGroupStatus(gr model.GroupResult) model.GroupStatus {
	switch {
	case !gr.Working:
		return model.GroupDown
	case gr.HasWarnings:
		return model.GroupWarn
	default:
		return model.GroupUp
	}
}

func wireToMetrics(wire []model.WireMetric) []model.Metric {
	out := make([]model.Metric, 0, len(wire))
	for _, m := range wire {
		out = append(out, model.Metric{Name: m.Name, Labels: m.Labels, Value: m.Metric})
	}
	return out
}

func (a *API) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.store.ComputeAnalytics())
}

func (a *API) handleListIncidents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(a.store.FindIncidents())
}

func (a *API) handleGetIncident(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		apierr.BadRequest(w, "invalid incident id")
		return
	}
	inc, ok := a.store.GetIncident(uint32(id))
	if !ok {
		apierr.NotFound(w, "incident not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(inc)
}

func (a *API) handleTestAlert(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		AlertsSent bool   `json:"alerts_sent"`
		Error      string `json:"error,omitempty"`
	}{}

	if a.alerter == nil {
		resp.Error = "no alert mediums configured"
	} else if err := a.alerter.TriggerAllTestAlerts(r.Context()); err != nil {
		resp.Error = err.Error()
	} else {
		resp.AlertsSent = true
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

