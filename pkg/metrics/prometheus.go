package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder backed by Prometheus. Collectors
// are created and registered on first use.
type PrometheusRecorder struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	planRuns        *prometheus.CounterVec
	planDuration    prometheus.Histogram
	planRigs        prometheus.Histogram
	roundWarnings   *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	droppedRows     prometheus.Counter
	duplicateRows   prometheus.Counter
	sessionEvents   *prometheus.CounterVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheus creates a Prometheus-backed recorder. A nil registerer uses
// prometheus.DefaultRegisterer and an empty namespace uses "cronopu".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "cronopu"
	}

	return &PrometheusRecorder{reg: reg, namespace: namespace}
}

func (p *PrometheusRecorder) ensureRegistered() {
	p.once.Do(func() {
		p.planRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "planner",
			Name:      "runs_total",
			Help:      "Total planning runs by result (success,failure).",
		}, []string{"result"})

		p.planDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "planner",
			Name:      "run_duration_seconds",
			Help:      "Duration of planning runs in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms .. ~1s
		})

		p.planRigs = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "planner",
			Name:      "rigs_per_run",
			Help:      "Number of pulling units per planning run.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50},
		})

		p.roundWarnings = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "planner",
			Name:      "round_warnings_total",
			Help:      "Rig/round slots left without an eligible well, by round.",
		}, []string{"round"})

		p.recommendations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "planner",
			Name:      "recommendations_total",
			Help:      "Recommendations issued by kind (stay,move).",
		}, []string{"kind"})

		p.uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Wells files ingested by result (success,failure).",
		}, []string{"result"})

		p.droppedRows = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ingest",
			Name:      "dropped_rows_total",
			Help:      "Rows discarded because a value could not be parsed.",
		})

		p.duplicateRows = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "ingest",
			Name:      "duplicate_rows_total",
			Help:      "Rows discarded because the well name was already present.",
		})

		p.sessionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "web",
			Name:      "session_events_total",
			Help:      "Workflow session lifecycle events (created,expired,completed,reset).",
		}, []string{"event"})

		p.reg.MustRegister(p.planRuns)
		p.reg.MustRegister(p.planDuration)
		p.reg.MustRegister(p.planRigs)
		p.reg.MustRegister(p.roundWarnings)
		p.reg.MustRegister(p.recommendations)
		p.reg.MustRegister(p.uploads)
		p.reg.MustRegister(p.droppedRows)
		p.reg.MustRegister(p.duplicateRows)
		p.reg.MustRegister(p.sessionEvents)
	})
}

// RecordPlan observes a planning run
func (p *PrometheusRecorder) RecordPlan(rigs int, seconds float64, result string) {
	p.ensureRegistered()
	p.planRuns.WithLabelValues(result).Inc()
	p.planDuration.Observe(seconds)
	p.planRigs.Observe(float64(rigs))
}

// IncrementRoundWarning counts an unfilled slot
func (p *PrometheusRecorder) IncrementRoundWarning(round string) {
	p.ensureRegistered()
	p.roundWarnings.WithLabelValues(round).Inc()
}

// IncrementRecommendation counts a recommendation
func (p *PrometheusRecorder) IncrementRecommendation(kind string) {
	p.ensureRegistered()
	p.recommendations.WithLabelValues(kind).Inc()
}

// RecordUpload observes an ingested file
func (p *PrometheusRecorder) RecordUpload(result string, droppedRows, duplicateRows int) {
	p.ensureRegistered()
	p.uploads.WithLabelValues(result).Inc()
	if droppedRows > 0 {
		p.droppedRows.Add(float64(droppedRows))
	}
	if duplicateRows > 0 {
		p.duplicateRows.Add(float64(duplicateRows))
	}
}

// IncrementSessionEvent counts a session lifecycle event
func (p *PrometheusRecorder) IncrementSessionEvent(event string) {
	p.ensureRegistered()
	p.sessionEvents.WithLabelValues(event).Inc()
}
