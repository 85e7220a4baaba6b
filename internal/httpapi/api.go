// Package httpapi is the controller's public HTTP surface under /api/v1:
// relay config serving and heartbeat ingestion, analytics, incidents, the
// Prometheus-text exporter, and test-alert dispatch.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brindlewatch/watchdog/internal/model"
	"github.com/brindlewatch/watchdog/internal/platform/httpmw"
	"github.com/brindlewatch/watchdog/internal/platform/log"
	"github.com/brindlewatch/watchdog/internal/store"
)

const httpTimeout = 10 * time.Second

// Store is the subset of *store.Store the HTTP handlers depend on.
type Store interface {
	GetRegionStatus(name string) (model.RegionStatus, error)
	GetGroupStatus(region, name string) (model.GroupStatus, error)
	RefreshRegion(name string, hasWarnings bool) error
	RefreshGroup(region, name string, newStatus model.GroupStatus, metrics []model.Metric, lastError string) error
	ComputeAnalytics() model.AnalyticsSnapshot
	FindIncidents() []model.Incident
	GetIncident(id uint32) (model.Incident, bool)
	CollectRegionMetrics() []model.FullMetric
	CollectTestMetrics() []model.FullMetric
}

var _ Store = (*store.Store)(nil)

// TestAlerter is the subset of *alertmgr.Manager the test-alert endpoint
// depends on.
type TestAlerter interface {
	TriggerAllTestAlerts(ctx context.Context) error
}

// ConfigRegistry resolves a region's declared configuration and the
// current config version advertised via X-Watchdog-Update.
type ConfigRegistry struct {
	byRegion map[string]model.RegionConfig
	version  string
}

// NewConfigRegistry builds a registry from the controller's derived region
// configs (see internal/regioncfg), stamped with version.
func NewConfigRegistry(configs []model.RegionConfig, version string) *ConfigRegistry {
	byRegion := make(map[string]model.RegionConfig, len(configs))
	for _, c := range configs {
		byRegion[c.Name] = c
	}
	return &ConfigRegistry{byRegion: byRegion, version: version}
}

// Get returns the named region's config, or false if undeclared.
func (c *ConfigRegistry) Get(region string) (model.RegionConfig, bool) {
	cfg, ok := c.byRegion[region]
	return cfg, ok
}

// Version returns the config version stamped on this registry.
func (c *ConfigRegistry) Version() string {
	return c.version
}

// API holds the dependencies every handler needs.
type API struct {
	store   Store
	configs *ConfigRegistry
	alerter TestAlerter
	log     log.Logger
}

// New builds an API. alerter may be nil, in which case /alerting/test
// always reports alerts_sent=false.
func New(s Store, configs *ConfigRegistry, alerter TestAlerter, l log.Logger) *API {
	if l == nil {
		l = log.Nop()
	}
	return &API{store: s, configs: configs, alerter: alerter, log: l}
}

// RegisterRoutes attaches every /api/v1 route to r.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/relay/{region}", a.handleGetRelay)
		r.Put("/relay/{region}", a.handlePutRelay)
		r.Get("/analytics", a.handleGetAnalytics)
		r.Get("/incidents", a.handleListIncidents)
		r.Get("/incidents/{id}", a.handleGetIncident)
		r.Get("/exporter", a.handleExporter)
		r.Post("/alerting/test", a.handleTestAlert)
	})
}

// NewRouter builds the full chi router, including the middleware stack
// mandated by spec §4.8: bearer auth on every route but the default 404,
// a 10-second per-request timeout, and access logging.
func NewRouter(a *API, token string, l log.Logger) http.Handler {
	if l == nil {
		l = log.Nop()
	}
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "PUT", "POST"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(httpmw.RequestID("X-Request-Id"))
	r.Use(httpmw.WithLogger(l))
	r.Use(httpmw.AccessLog(l))
	r.Use(httpmw.Recover(l, nil))
	r.Use(httpmw.SecurityHeaders)

	r.Group(func(r chi.Router) {
		r.Use(httpmw.BearerToken(token))
		r.Use(httpmw.Timeout(httpTimeout))
		a.RegisterRoutes(r)
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method + " " + req.URL.Path
		}),
		otelhttp.WithPublicEndpointFn(func(_ *http.Request) bool { return true }),
	)
}
