package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopRecorder(t *testing.T) {
	recorder := NewNop()

	require.NotPanics(t, func() {
		recorder.RecordPlan(3, 0.01, ResultSuccess)
		recorder.IncrementRoundWarning("N+1")
		recorder.IncrementRecommendation("move")
		recorder.RecordUpload(ResultFailure, 0, 0)
		recorder.IncrementSessionEvent("created")
	})
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := NewPrometheus(reg, "test")

	recorder.RecordPlan(2, 0.002, ResultSuccess)
	recorder.RecordPlan(1, 0.001, ResultFailure)
	recorder.IncrementRoundWarning("N+3")
	recorder.IncrementRoundWarning("N+3")
	recorder.IncrementRecommendation("stay")
	recorder.RecordUpload(ResultSuccess, 4, 1)
	recorder.IncrementSessionEvent("created")

	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.planRuns.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.planRuns.WithLabelValues(ResultFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.roundWarnings.WithLabelValues("N+3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.recommendations.WithLabelValues("stay")))
	assert.Equal(t, 4.0, testutil.ToFloat64(recorder.droppedRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.duplicateRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.sessionEvents.WithLabelValues("created")))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_planner_runs_total")
	assert.Contains(t, names, "test_ingest_uploads_total")
}

func TestNewPrometheus_Defaults(t *testing.T) {
	recorder := NewPrometheus(prometheus.NewRegistry(), "")
	assert.Equal(t, "cronopu", recorder.namespace)
}
