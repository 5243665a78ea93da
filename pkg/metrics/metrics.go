package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry. A nil *Collector is valid and records nothing.
type Collector struct {
	reg *prometheus.Registry

	FetchTotal    *prometheus.CounterVec // result label: ok|transport|timeout|status|decode
	FetchDuration *prometheus.HistogramVec
	FetchBytes    *prometheus.CounterVec
	DecodeErrors  *prometheus.CounterVec
	TicksSkipped  *prometheus.CounterVec
	TickOverruns  prometheus.Counter
	QueueDepth    prometheus.Gauge

	Duplicates prometheus.Counter

	UpcomingEntries   prometheus.Gauge
	ComplexesOutage   prometheus.Gauge
	RefdataRefreshErr *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subpar_fetch_total",
			Help: "Feed fetches by outcome.",
		}, []string{"feed", "result"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subpar_fetch_duration_seconds",
			Help:    "Time to fetch and decode a feed.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"feed"}),
		FetchBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subpar_fetch_bytes_total",
			Help: "Bytes received per feed.",
		}, []string{"feed"}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subpar_decode_errors_total",
			Help: "Feed entities that failed to decode.",
		}, []string{"feed"}),
		TicksSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subpar_ticks_skipped_total",
			Help: "Ticks skipped because the previous fetch of the feed was still running.",
		}, []string{"feed"}),
		TickOverruns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subpar_tick_overruns_total",
			Help: "Ticks whose fan-out outlived the poll period.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "subpar_queue_depth",
			Help: "Snapshots waiting to be ingested.",
		}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subpar_duplicate_responses_total",
			Help: "Snapshots whose content hash had already been recorded.",
		}),
		UpcomingEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "subpar_upcoming_entries",
			Help: "Upcoming arrivals held across all complexes.",
		}),
		ComplexesOutage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "subpar_complexes_with_outage",
			Help: "Complexes with at least one elevator outage.",
		}),
		RefdataRefreshErr: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subpar_refdata_errors_total",
			Help: "Failed reference data loads.",
		}, []string{"source"}),
	}

	reg.MustRegister(
		c.FetchTotal, c.FetchDuration, c.FetchBytes, c.DecodeErrors,
		c.TicksSkipped, c.TickOverruns, c.QueueDepth,
		c.Duplicates,
		c.UpcomingEntries, c.ComplexesOutage, c.RefdataRefreshErr,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveFetch(feed string, result string, took time.Duration, size int) {
	if c == nil {
		return
	}
	c.FetchTotal.WithLabelValues(feed, result).Inc()
	c.FetchDuration.WithLabelValues(feed).Observe(took.Seconds())
	if size > 0 {
		c.FetchBytes.WithLabelValues(feed).Add(float64(size))
	}
}

func (c *Collector) ObserveDecodeErrors(feed string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.DecodeErrors.WithLabelValues(feed).Add(float64(n))
}

func (c *Collector) TickSkipped(feed string) {
	if c == nil {
		return
	}
	c.TicksSkipped.WithLabelValues(feed).Inc()
}

func (c *Collector) TickOverrun() {
	if c == nil {
		return
	}
	c.TickOverruns.Inc()
}

func (c *Collector) SetQueueDepth(n int) {
	if c == nil {
		return
	}
	c.QueueDepth.Set(float64(n))
}

func (c *Collector) Duplicate() {
	if c == nil {
		return
	}
	c.Duplicates.Inc()
}

func (c *Collector) SetUpcoming(n int) {
	if c == nil {
		return
	}
	c.UpcomingEntries.Set(float64(n))
}

func (c *Collector) SetOutageComplexes(n int) {
	if c == nil {
		return
	}
	c.ComplexesOutage.Set(float64(n))
}

func (c *Collector) RefdataError(source string) {
	if c == nil {
		return
	}
	c.RefdataRefreshErr.WithLabelValues(source).Inc()
}
