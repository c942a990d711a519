package metrics

// Recorder receives planner instrumentation events
type Recorder interface {
	// RecordPlan observes a completed (or failed) planning run
	RecordPlan(rigs int, seconds float64, result string)

	// IncrementRoundWarning counts a rig/round left without a candidate
	IncrementRoundWarning(round string)

	// IncrementRecommendation counts a stay/move recommendation
	IncrementRecommendation(kind string)

	// RecordUpload observes an ingested wells file
	RecordUpload(result string, droppedRows, duplicateRows int)

	// IncrementSessionEvent counts session lifecycle events (created, expired, completed)
	IncrementSessionEvent(event string)
}

// Result labels
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// NopRecorder discards every metric
type NopRecorder struct{}

var _ Recorder = (*NopRecorder)(nil)

// NewNop creates a recorder that discards everything
func NewNop() *NopRecorder {
	return &NopRecorder{}
}

func (n *NopRecorder) RecordPlan(_ int, _ float64, _ string) {}

func (n *NopRecorder) IncrementRoundWarning(_ string) {}

func (n *NopRecorder) IncrementRecommendation(_ string) {}

func (n *NopRecorder) RecordUpload(_ string, _, _ int) {}

func (n *NopRecorder) IncrementSessionEvent(_ string) {}
