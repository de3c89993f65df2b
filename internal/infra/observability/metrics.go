package observability

import (
	"time"

	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	intents         *prometheus.CounterVec
	dispatches      *prometheus.CounterVec
	events          *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bfa_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		intents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_assistant_intents_total",
				Help: "Utterances classified, by intent.",
			},
			[]string{"intent"},
		),
		dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_assistant_dispatches_total",
				Help: "Dispatched intents by source (cached, live) and outcome.",
			},
			[]string{"source", "status"},
		),
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_console_events_total",
				Help: "Navigation and notification side effects emitted to the console.",
			},
			[]string{"kind"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrIntent counts one classified utterance.
func (m *Metrics) IncrIntent(tag domain.IntentTag) {
	m.intents.WithLabelValues(string(tag)).Inc()
}

// IncrDispatch counts one dispatch. live tells whether it fetched fresh data.
func (m *Metrics) IncrDispatch(live, failed bool) {
	source, status := "cached", "success"
	if live {
		source = "live"
	}
	if failed {
		status = "error"
	}
	m.dispatches.WithLabelValues(source, status).Inc()
}

// IncrEvent counts a console side effect (navigate, notify_success, ...).
func (m *Metrics) IncrEvent(kind string) {
	m.events.WithLabelValues(kind).Inc()
}

// GetAssistantSnapshot returns the counters behind GET /v1/metrics/assistant.
func (m *Metrics) GetAssistantSnapshot() *domain.AssistantMetrics {
	intents := make(map[string]int64)
	for _, mf := range m.gather("bfa_assistant_intents_total") {
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "intent" {
					intents[lp.GetValue()] = int64(metric.GetCounter().GetValue())
				}
			}
		}
	}

	cachedOK := getCounterValue(m.dispatches, "cached", "success")
	cachedErr := getCounterValue(m.dispatches, "cached", "error")
	liveOK := getCounterValue(m.dispatches, "live", "success")
	liveErr := getCounterValue(m.dispatches, "live", "error")

	total := cachedOK + cachedErr + liveOK + liveErr
	errors := cachedErr + liveErr
	errorRate := float64(0)
	if total > 0 {
		errorRate = errors / total
	}

	return &domain.AssistantMetrics{
		Messages:       int64(total),
		DispatchErrors: int64(errors),
		ErrorRate:      errorRate,
		LiveFetches:    int64(liveOK + liveErr),
		Intents:        intents,
	}
}

func (m *Metrics) gather(name string) []*dto.MetricFamily {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil
	}
	var out []*dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == name {
			out = append(out, mf)
		}
	}
	return out
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
