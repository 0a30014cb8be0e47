package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	quotesIngested *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastSellPrice  *prometheus.GaugeVec
	goldPrice      prometheus.Gauge
	latency        *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	scanResults    prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		quotesIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "albionpulse_quotes_ingested_total",
				Help: "Total number of price quotes ingested per backend",
			},
			[]string{"backend", "city"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "albionpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastSellPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "albionpulse_last_sell_price",
				Help: "Last observed minimum sell price for an item in a city",
			},
			[]string{"item", "city"},
		),
		goldPrice: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "albionpulse_gold_price",
				Help: "Last observed gold price",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "albionpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "albionpulse_cache_lookups_total",
				Help: "Cache lookups by tier and result",
			},
			[]string{"tier", "result"},
		),
		scanResults: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "albionpulse_scan_opportunities",
				Help: "Number of opportunities found by the last arbitrage scan",
			},
		),
	}
}

// RecordQuoteIngested records a quote forwarded to a backend.
func (r *Recorder) RecordQuoteIngested(backend, city string) {
	r.quotesIngested.WithLabelValues(backend, city).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastSellPrice records the last sell price for an item in a city.
func (r *Recorder) RecordLastSellPrice(item, city string, price float64) {
	r.lastSellPrice.WithLabelValues(item, city).Set(price)
}

// RecordGoldPrice records the last observed gold price.
func (r *Recorder) RecordGoldPrice(price float64) {
	r.goldPrice.Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordCacheLookup records a cache lookup outcome for a tier.
func (r *Recorder) RecordCacheLookup(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(tier, result).Inc()
}

// RecordScanResults records how many opportunities the last scan produced.
func (r *Recorder) RecordScanResults(n int) {
	r.scanResults.Set(float64(n))
}
