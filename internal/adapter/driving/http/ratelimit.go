package httphandler

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// EdgeMetrics receives counters from the edge middleware.
type EdgeMetrics interface {
	RateLimited()
	AuthRejected(method string)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// VisitorLimiter applies a token bucket per client address.
type VisitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	trustProxy bool
	metrics    EdgeMetrics
	now        func() time.Time
}

// NewVisitorLimiter creates a limiter allowing rps requests per second with
// the given burst per visitor. Visitors idle for longer than idleTTL are
// forgotten by Cleanup. When trustProxy is true the CF-Connecting-IP header
// identifies the visitor.
func NewVisitorLimiter(rps float64, burst int, idleTTL time.Duration, trustProxy bool, metrics EdgeMetrics) *VisitorLimiter {
	return &VisitorLimiter{
		visitors:   make(map[string]*visitor),
		limit:      rate.Limit(rps),
		burst:      burst,
		idleTTL:    idleTTL,
		trustProxy: trustProxy,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Allow reports whether the visitor identified by key may make a request now.
func (l *VisitorLimiter) Allow(key string) bool {
	l.mu.Lock()
	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Cleanup forgets visitors idle for longer than the idle TTL and returns how
// many were removed.
func (l *VisitorLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, key)
			removed++
		}
	}
	return removed
}

// Start runs Cleanup every interval until ctx is cancelled.
func (l *VisitorLimiter) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// Middleware rejects requests over the visitor's budget with 429.
func (l *VisitorLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(l.visitorKey(r)) {
			if l.metrics != nil {
				l.metrics.RateLimited()
			}
			http.Error(w, "too many requests, slow down", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *VisitorLimiter) visitorKey(r *http.Request) string {
	if l.trustProxy {
		if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
