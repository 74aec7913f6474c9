package httphandler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// contentSecurityPolicy allows the upload widget bundle from its CDN and
// nothing else off-origin.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://releases.transloadit.com; " +
	"style-src 'self' https://releases.transloadit.com 'unsafe-inline'; " +
	"img-src 'self' data: blob:; object-src 'none'; base-uri 'none';"

// MiddlewareOptions configures ApplyMiddleware.
type MiddlewareOptions struct {
	// UploadBasePath is the tus endpoint prefix; downloads under it are
	// forced to save as attachments.
	UploadBasePath string
	// Limiter is applied to every request when non-nil.
	Limiter *VisitorLimiter
}

// ApplyMiddleware wraps h with the edge middleware chain. From the outside
// in: request logging, panic recovery, per-visitor rate limiting, security
// headers.
func ApplyMiddleware(h http.Handler, logger *slog.Logger, opts MiddlewareOptions) http.Handler {
	wrapped := securityHeaders(opts.UploadBasePath, h)
	if opts.Limiter != nil {
		wrapped = opts.Limiter.Middleware(wrapped)
	}
	wrapped = recoveryMiddleware(logger, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)
	return wrapped
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer; the tus
// handler extends read deadlines through it while a chunk streams in.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// securityHeaders sets the response headers every page and upload shares.
func securityHeaders(uploadBasePath string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", contentSecurityPolicy)

		// Uploaded files are never rendered inline.
		if r.Method == http.MethodGet && uploadBasePath != "" &&
			strings.HasPrefix(r.URL.Path, uploadBasePath) && len(r.URL.Path) > len(uploadBasePath) {
			h.Set("Content-Disposition", "attachment")
		}

		next.ServeHTTP(w, r)
	})
}
