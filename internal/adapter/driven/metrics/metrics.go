// Package metrics exposes service counters through Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dropvault"

// Collector holds every counter the service reports.
type Collector struct {
	registry *prometheus.Registry

	uploadsCompleted prometheus.Counter
	bytesCompleted   prometheus.Counter
	uploadsExpired   prometheus.Counter
	resultsRendered  prometheus.Counter
	resultsFailed    prometheus.Counter
	rateLimited      prometheus.Counter
	authRejected     *prometheus.CounterVec
}

// New creates a Collector on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		uploadsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_completed_total",
			Help:      "Total number of uploads that received all of their data",
		}),
		bytesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_completed_total",
			Help:      "Total size in bytes of completed uploads",
		}),
		uploadsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_expired_total",
			Help:      "Total number of uploads deleted by the expiry sweeper",
		}),
		resultsRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_rendered_total",
			Help:      "Total number of result blocks rendered for successful uploads",
		}),
		resultsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_failed_total",
			Help:      "Total number of failed files reported by upload batches",
		}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Total number of requests rejected by the per-visitor limiter",
		}),
		authRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_auth_rejected_total",
			Help:      "Total number of upload requests rejected for a bad token",
		}, []string{"method"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) UploadCompleted(bytes int64) {
	c.uploadsCompleted.Inc()
	if bytes > 0 {
		c.bytesCompleted.Add(float64(bytes))
	}
}

func (c *Collector) UploadExpired() { c.uploadsExpired.Inc() }

func (c *Collector) ResultsRendered(n int) { c.resultsRendered.Add(float64(n)) }

func (c *Collector) ResultsFailed(n int) { c.resultsFailed.Add(float64(n)) }

func (c *Collector) RateLimited() { c.rateLimited.Inc() }

func (c *Collector) AuthRejected(method string) { c.authRejected.WithLabelValues(method).Inc() }
