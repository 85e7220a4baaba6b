// Package relayclient is the relay-side HTTP client for talking to the
// controller: fetching region config, pushing heartbeats, and triggering an
// optional Kuma uptime ping.
package relayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sony/gobreaker"

	"github.com/brindlewatch/watchdog/internal/model"
)

var tracer = otel.Tracer("github.com/brindlewatch/watchdog/internal/relayclient")

const clientTimeout = 15 * time.Second

// StatusError carries the remote HTTP status code of a failed call, per
// spec §4.4's "fails with an error carrying the status code".
type StatusError struct {
	StatusCode int
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relayclient: %s returned status %d", e.Path, e.StatusCode)
}

// Client is the relay's handle to the controller API and to an optional
// Kuma uptime endpoint. It holds one shared *http.Client and is safe for
// concurrent use, though the relay loop only ever calls it sequentially.
type Client struct {
	baseURL string
	token   string
	region  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// New builds a Client for the given controller base URL, bearer token, and
// region name. A gobreaker.CircuitBreaker wraps the two controller calls
// (FetchRegionConfig, UpdateRegionState) so a controller outage trips open
// after a run of failures instead of being hammered every tick. TriggerKuma
// does not go through the breaker.
func New(baseURL, token, region string) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "relayclient:" + region,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Client{
		baseURL: baseURL,
		token:   token,
		region:  region,
		http:    &http.Client{Timeout: clientTimeout},
		breaker: breaker,
	}
}

func (c *Client) regionPath() string {
	return "/api/v1/relay/" + c.region
}

// FetchRegionConfig performs GET /api/v1/relay/{region}. A non-200 response
// returns a *StatusError. The relay loop treats a failure of its initial
// fetch as fatal; a failed hot-reload fetch is only logged.
func (c *Client) FetchRegionConfig(ctx context.Context) (*model.RegionConfig, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		ctx, span := tracer.Start(ctx, "relayclient.FetchRegionConfig")
		defer span.End()
		span.SetAttributes(attribute.String("watchdog.region", c.region))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.regionPath(), nil)
		if err != nil {
			return nil, fmt.Errorf("relayclient: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("relayclient: fetch region config: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			err := &StatusError{StatusCode: resp.StatusCode, Path: c.regionPath()}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		var cfg model.RegionConfig
		if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("relayclient: decode region config: %w", err)
		}
		return &cfg, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*model.RegionConfig), nil
}

// updateResult is the breaker's return payload for UpdateRegionState.
type updateResult struct {
	version string
	changed bool
}

// UpdateRegionState performs PUT /api/v1/relay/{region} with the heartbeat
// body and reads the X-Watchdog-Update response header. It reports changed
// whenever the header is present and differs from lastVersion; whether that
// change should trigger a config reload (vs. simply being recorded, on a
// relay's very first tick) is the relay loop's decision per spec §4.3, not
// this client's — see internal/relay.
func (c *Client) UpdateRegionState(ctx context.Context, results []model.GroupResult, lastVersion string) (version string, changed bool, err error) {
	result, err := c.breaker.Execute(func() (any, error) {
		ctx, span := tracer.Start(ctx, "relayclient.UpdateRegionState")
		defer span.End()
		span.SetAttributes(attribute.String("watchdog.region", c.region))

		body, err := json.Marshal(results)
		if err != nil {
			return nil, fmt.Errorf("relayclient: marshal results: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+c.regionPath(), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("relayclient: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("relayclient: update region state: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			err := &StatusError{StatusCode: resp.StatusCode, Path: c.regionPath()}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		newVersion := resp.Header.Get("X-Watchdog-Update")
		return updateResult{version: newVersion, changed: newVersion != "" && newVersion != lastVersion}, nil
	})
	if err != nil {
		return "", false, err
	}
	ur := result.(updateResult)
	return ur.version, ur.changed, nil
}

// TriggerKuma issues a GET to the configured Kuma push URL with status/msg
// (and ping, if present, rounded with %.0f) query parameters. It returns an
// error on transport failure and a *StatusError on a non-200 response; the
// relay loop logs either one and the tick carries on. This call is not
// wrapped by the client's circuit breaker and opens no trace span.
func (c *Client) TriggerKuma(ctx context.Context, kumaURL, msg string, pingMs *float64) error {
	u, err := url.Parse(kumaURL)
	if err != nil {
		return fmt.Errorf("relayclient: invalid kuma url: %w", err)
	}
	q := u.Query()
	q.Set("status", "up")
	q.Set("msg", msg)
	if pingMs != nil {
		q.Set("ping", fmt.Sprintf("%.0f", *pingMs))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("relayclient: build kuma request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relayclient: kuma ping: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, Path: kumaURL}
	}
	return nil
}
