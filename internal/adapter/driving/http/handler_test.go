package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/dropvault/internal/adapter/driving/http"
	"github.com/ericfisherdev/dropvault/internal/domain/model"
)

// --- Test doubles ---

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type recordingEdgeMetrics struct {
	rateLimited  int
	authRejected []string
}

func (m *recordingEdgeMetrics) RateLimited() { m.rateLimited++ }
func (m *recordingEdgeMetrics) AuthRejected(method string) {
	m.authRejected = append(m.authRejected, method)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

// --- Health ---

func TestHealth_OK(t *testing.T) {
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(stubPinger{}, discardLogger()), nil, "")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.NotEmpty(t, body.Time)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestHealth_DatabaseDown(t *testing.T) {
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(stubPinger{err: errors.New("closed")}, discardLogger()), nil, "")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, "unavailable", body.Checks["database"])
}

func TestHealth_NoDatabase(t *testing.T) {
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(nil, discardLogger()), nil, "")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Checks)
}

func metricsMux(token string) *http.ServeMux {
	mux := http.NewServeMux()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("dropvault_up 1"))
	})
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(nil, discardLogger()), metrics, token)
	return mux
}

func TestMetricsRoute_RequiresBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "wrong token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "missing scheme", header: "scrape-me", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer scrape-me", want: http.StatusOK},
	}

	mux := metricsMux("scrape-me")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			// The upload token header alone must not open the endpoint.
			req.Header.Set(model.AuthHeader, "scrape-me")

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "dropvault_up 1", rec.Body.String())
			} else {
				assert.NotContains(t, rec.Body.String(), "dropvault_up")
				assert.Equal(t, `Bearer realm="metrics"`, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestMetricsRoute_NotMountedWithoutToken(t *testing.T) {
	mux := metricsMux("")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireBearer_EmptyTokenRejects(t *testing.T) {
	h := httphandler.RequireBearer("", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- Upload token ---

func TestRequireUploadToken(t *testing.T) {
	tests := []struct {
		name   string
		method string
		token  string
		want   int
	}{
		{"post without token", http.MethodPost, "", http.StatusUnauthorized},
		{"post wrong token", http.MethodPost, "nope", http.StatusUnauthorized},
		{"post right token", http.MethodPost, "s3cret", http.StatusNoContent},
		{"patch without token", http.MethodPatch, "", http.StatusUnauthorized},
		{"patch right token", http.MethodPatch, "s3cret", http.StatusNoContent},
		{"delete without token", http.MethodDelete, "", http.StatusUnauthorized},
		{"head without token", http.MethodHead, "", http.StatusNoContent},
		{"get without token", http.MethodGet, "", http.StatusNoContent},
		{"options without token", http.MethodOptions, "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := &recordingEdgeMetrics{}
			h := httphandler.RequireUploadToken("s3cret", metrics, okHandler)

			req := httptest.NewRequest(tt.method, "/files/abc", nil)
			if tt.token != "" {
				req.Header.Set("X-Auth-Token", tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, []string{tt.method}, metrics.authRejected)
			}
		})
	}
}

func TestRequireUploadToken_EmptySecretRejectsWrites(t *testing.T) {
	h := httphandler.RequireUploadToken("", nil, okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/files/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterUploadRoutes(t *testing.T) {
	mux := http.NewServeMux()
	httphandler.RegisterUploadRoutes(mux, "/files/", okHandler, "s3cret", nil)

	req := httptest.NewRequest(http.MethodPatch, "/files/xyz", nil)
	req.Header.Set("X-Auth-Token", "s3cret")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/files/xyz", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- Middleware ---

func TestApplyMiddleware_SecurityHeaders(t *testing.T) {
	h := httphandler.ApplyMiddleware(okHandler, discardLogger(), httphandler.MiddlewareOptions{UploadBasePath: "/files/"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://releases.transloadit.com")
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestApplyMiddleware_DownloadsAreAttachments(t *testing.T) {
	h := httphandler.ApplyMiddleware(okHandler, discardLogger(), httphandler.MiddlewareOptions{UploadBasePath: "/files/"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/abc123", nil))
	assert.Equal(t, "attachment", rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/files/abc123", nil))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestApplyMiddleware_RecoversPanics(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := httphandler.ApplyMiddleware(panicky, discardLogger(), httphandler.MiddlewareOptions{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

// --- Rate limiting ---

func TestVisitorLimiter_RejectsAfterBurst(t *testing.T) {
	metrics := &recordingEdgeMetrics{}
	limiter := httphandler.NewVisitorLimiter(2, 5, 10*time.Minute, false, metrics)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return now })

	h := httphandler.ApplyMiddleware(okHandler, discardLogger(), httphandler.MiddlewareOptions{Limiter: limiter})

	for i := range 5 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5001"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, metrics.rateLimited)

	// Another visitor has its own bucket.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Tokens refill over time.
	now = now.Add(time.Second)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestVisitorLimiter_ProxyHeader(t *testing.T) {
	trusted := httphandler.NewVisitorLimiter(1, 1, time.Minute, true, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	trusted.SetClock(func() time.Time { return now })
	h := trusted.Middleware(okHandler)

	send := func(cfIP string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("CF-Connecting-IP", cfIP)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("203.0.113.1"))
	assert.Equal(t, http.StatusNoContent, send("203.0.113.2"), "distinct client IPs behind one proxy")
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
}

func TestVisitorLimiter_IgnoresProxyHeaderWhenUntrusted(t *testing.T) {
	limiter := httphandler.NewVisitorLimiter(1, 1, time.Minute, false, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return now })
	h := limiter.Middleware(okHandler)

	send := func(cfIP string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:443"
		req.Header.Set("CF-Connecting-IP", cfIP)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
}

func TestVisitorLimiter_Cleanup(t *testing.T) {
	limiter := httphandler.NewVisitorLimiter(2, 5, 10*time.Minute, false, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.SetClock(func() time.Time { return now })

	limiter.Allow("a")
	now = now.Add(6 * time.Minute)
	limiter.Allow("b")
	now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, limiter.Cleanup())
	assert.Equal(t, 0, limiter.Cleanup())
}
