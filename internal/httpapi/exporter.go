package httpapi

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/brindlewatch/watchdog/internal/model"
)

// handleExporter serves a hand-rolled Prometheus text exposition: region
// metrics first, then test metrics, separated by a blank line, per spec
// §4.8. This intentionally bypasses prometheus/client_golang's registry —
// these are derived snapshots of State Store data, not process counters.
func (a *API) handleExporter(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var sb strings.Builder
	for _, m := range a.store.CollectRegionMetrics() {
		sb.WriteString(formatMetric(m))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	for _, m := range a.store.CollectTestMetrics() {
		sb.WriteString(formatMetric(m))
		sb.WriteByte('\n')
	}

	_, _ = w.Write([]byte(sb.String()))
}

func formatMetric(m model.FullMetric) string {
	return fmt.Sprintf("watchdog_%s%s %s", m.Name, formatLabels(m.Labels), strconv.FormatFloat(m.Value, 'g', -1, 64))
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(labels[k])
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
	return sb.String()
}
