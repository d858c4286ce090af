package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry          *prometheus.Registry
	PagesScrapedTotal prometheus.Counter
	ItemsScrapedTotal prometheus.Counter
	ItemsSkippedTotal *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
	ErrorsTotal       *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_pages_scraped_total",
			Help: "Total listing pages successfully scraped.",
		},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_items_scraped_total",
			Help: "Total catalog items merged from listing and detail pages.",
		},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_items_skipped_total",
			Help: "Total catalog items skipped, by reason.",
		},
		[]string{"reason"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "HTTP request latency for catalog fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_errors_total",
			Help: "Total fetch errors by classification.",
		},
		[]string{"kind"},
	)

	registry.MustRegister(pages, items, skipped, requestDuration, errorsTotal)

	return &Metrics{
		Registry:          registry,
		PagesScrapedTotal: pages,
		ItemsScrapedTotal: items,
		ItemsSkippedTotal: skipped,
		RequestDuration:   requestDuration,
		ErrorsTotal:       errorsTotal,
	}
}

// IncPages increments the scraped pages counter.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesScrapedTotal.Inc()
}

// IncItems increments the scraped items counter.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsScrapedTotal.Inc()
}

// IncSkipped increments the skipped items counter for a reason label.
func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.ItemsSkippedTotal.WithLabelValues(reason).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncError increments the fetch errors counter for a kind label.
func (m *Metrics) IncError(kind ErrorKind) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind.String()).Inc()
}
