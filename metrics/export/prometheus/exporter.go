package prometheus

import (
	"net/http"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/MrEthical07/goVerify/cache"
	"github.com/MrEthical07/goVerify/metrics/export/internaldefs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Source is satisfied by *goVerify.Pipeline.
type Source interface {
	MetricsSnapshot() goVerify.MetricsSnapshot
	NotificationsDropped() uint64
}

// CacheStatsSource is satisfied by *cache.Interceptor.
type CacheStatsSource interface {
	Stats() cache.Stats
}

// Option configures the exporter.
type Option func(*Exporter)

// WithCacheStats also exports hit, miss and store-error counts of src.
func WithCacheStats(src CacheStatsSource) Option {
	return func(e *Exporter) {
		e.cache = src
	}
}

// Exporter is a prometheus.Collector reading a snapshot on every scrape.
type Exporter struct {
	source   Source
	cache    CacheStatsSource
	registry *prometheus.Registry

	counters   map[goVerify.MetricID]*prometheus.Desc
	histograms map[goVerify.MetricID]*prometheus.Desc
	dropped    *prometheus.Desc

	cacheHits        *prometheus.Desc
	cacheMisses      *prometheus.Desc
	cacheStoreErrors *prometheus.Desc

	bounds []float64
}

var _ prometheus.Collector = (*Exporter)(nil)

// NewExporter builds an exporter and registers it on its own registry.
func NewExporter(source Source, opts ...Option) *Exporter {
	e := &Exporter{
		source:     source,
		counters:   make(map[goVerify.MetricID]*prometheus.Desc, len(internaldefs.CounterDefs)),
		histograms: make(map[goVerify.MetricID]*prometheus.Desc, len(internaldefs.HistogramDefs)),
		dropped:    prometheus.NewDesc(internaldefs.NotificationsDroppedName, internaldefs.NotificationsDroppedHelp, nil, nil),
		bounds:     internaldefs.HistogramBounds(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, def := range internaldefs.CounterDefs {
		e.counters[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	for _, def := range internaldefs.HistogramDefs {
		e.histograms[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	if e.cache != nil {
		e.cacheHits = prometheus.NewDesc(internaldefs.CacheHitsName, internaldefs.CacheHitsHelp, nil, nil)
		e.cacheMisses = prometheus.NewDesc(internaldefs.CacheMissesName, internaldefs.CacheMissesHelp, nil, nil)
		e.cacheStoreErrors = prometheus.NewDesc(internaldefs.CacheStoreErrorsName, internaldefs.CacheStoreErrorsHelp, nil, nil)
	}

	e.registry = prometheus.NewRegistry()
	e.registry.MustRegister(e)
	return e
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range e.counters {
		ch <- d
	}
	for _, d := range e.histograms {
		ch <- d
	}
	ch <- e.dropped
	if e.cache != nil {
		ch <- e.cacheHits
		ch <- e.cacheMisses
		ch <- e.cacheStoreErrors
	}
}

// Collect implements prometheus.Collector. Counters missing from the
// snapshot (metrics disabled) are not emitted.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	snapshot := e.source.MetricsSnapshot()

	for _, def := range internaldefs.CounterDefs {
		v, ok := snapshot.Counters[def.ID]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(e.counters[def.ID], prometheus.CounterValue, float64(v))
	}

	for _, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(e.bounds))
		for i, ub := range e.bounds {
			buckets[ub] = cumulative[i]
		}
		// sum is not tracked by the in-process histogram.
		ch <- prometheus.MustNewConstHistogram(e.histograms[def.ID], cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(e.dropped, prometheus.CounterValue, float64(e.source.NotificationsDropped()))

	if e.cache != nil {
		st := e.cache.Stats()
		ch <- prometheus.MustNewConstMetric(e.cacheHits, prometheus.CounterValue, float64(st.Hits))
		ch <- prometheus.MustNewConstMetric(e.cacheMisses, prometheus.CounterValue, float64(st.Misses))
		ch <- prometheus.MustNewConstMetric(e.cacheStoreErrors, prometheus.CounterValue, float64(st.StoreErrors))
	}
}

// Registry returns the private registry the exporter is registered on, so
// callers can add process or Go runtime collectors.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
