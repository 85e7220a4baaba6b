// Package httpmw provides the HTTP middleware chain used by the controller's
// public API: request IDs, access logging, panic recovery, security headers,
// bearer-token auth, and request timeouts.
package httpmw

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/brindlewatch/watchdog/internal/platform/log"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID stamps every request with a ULID-based request id, stored in the
// response header and in the request context for downstream logging.
func RequestID(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ulid.Make().String()
			w.Header().Set(header, id)
			ctx := context.WithValue(r.Context(), requestIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFromContext returns the id set by RequestID, or "" if absent.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithLogger injects a request-scoped Logger (annotated with the request id)
// into the request context for handlers to pick up via log.FromContext.
func WithLogger(l log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scoped := l.With("request_id", RequestIDFromContext(r.Context()))
			next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context(), scoped)))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// AccessLog logs method, path, status and latency for every request.
func AccessLog(l log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			l.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Recover catches panics in downstream handlers, logs them, and serves a 500
// instead of letting the connection die.
func Recover(l log.Logger, onPanic func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if onPanic != nil {
						onPanic()
					}
					l.Error(r.Context(), errFromRecover(rec), "panic recovered", "path", r.URL.Path)
					http.Error(w, `{"statusCode":500,"message":"internal error","details":[]}`, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func errFromRecover(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return &panicError{v: rec}
}

type panicError struct{ v any }

func (p *panicError) Error() string { return "panic: " + toString(p.v) }

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "non-string panic value"
}

// SecurityHeaders sets a minimal set of defensive response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// MaxBody caps the request body size. Reading past limit returns a
// *http.MaxBytesError to the wrapped handler, which chooses the response
// (for example 413); MaxBody writes no status itself.
func MaxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, limit)
	}
}

// Timeout bounds request handling to d, returning 408 on expiry.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, `{"statusCode":408,"message":"request timeout","details":[]}`)
	}
}

// BearerToken validates the Authorization header against expected using a
// constant-time comparison, to deny timing side channels on the token check.
func BearerToken(expected string) func(http.Handler) http.Handler {
	expBytes := []byte(expected)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeAuthError(w)
				return
			}
			got := []byte(strings.TrimPrefix(auth, "Bearer "))
			if subtle.ConstantTimeCompare(got, expBytes) != 1 {
				writeAuthError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"statusCode":401,"message":"missing or invalid bearer token","details":[]}`))
}
