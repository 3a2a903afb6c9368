// Package metrics holds the Prometheus collectors for the HTTP layer and the
// file operations. A nil *Metrics is valid and records nothing, so
// components can be constructed without metrics in tests.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orgdrive"

type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	filesCreated     prometheus.Counter
	filesDeleted     prometheus.Counter
	uploadURLs       prometheus.Counter
	favoritesToggled *prometheus.CounterVec
	rateLimited      *prometheus.CounterVec
	urlCache         *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
}

// New registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		filesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_created_total",
			Help:      "File records created",
		}),
		filesDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_deleted_total",
			Help:      "File records deleted",
		}),
		uploadURLs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_urls_issued_total",
			Help:      "Presigned upload URLs handed out",
		}),
		favoritesToggled: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "favorites_toggled_total",
				Help:      "Favorite toggles by resulting action",
			},
			[]string{"action"},
		),
		rateLimited: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by a rate limiter",
			},
			[]string{"scope"},
		),
		urlCache: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "url_cache_lookups_total",
				Help:      "Retrieval URL cache lookups by result",
			},
			[]string{"result"},
		),
		breakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) FileCreated() {
	if m == nil {
		return
	}
	m.filesCreated.Inc()
}

func (m *Metrics) FileDeleted() {
	if m == nil {
		return
	}
	m.filesDeleted.Inc()
}

func (m *Metrics) UploadURLIssued() {
	if m == nil {
		return
	}
	m.uploadURLs.Inc()
}

func (m *Metrics) FavoriteToggled(favorited bool) {
	if m == nil {
		return
	}
	action := "removed"
	if favorited {
		action = "added"
	}
	m.favoritesToggled.WithLabelValues(action).Inc()
}

// RateLimited counts a rejection; scope is "ip" or "upload".
func (m *Metrics) RateLimited(scope string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(scope).Inc()
}

func (m *Metrics) URLCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.urlCache.WithLabelValues(result).Inc()
}

// BreakerState records a breaker transition. state follows gobreaker's
// numbering.
func (m *Metrics) BreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(float64(state))
}
