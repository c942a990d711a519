package services

import (
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/metrics"
)

type mockWellsReader struct {
	ReadTabFunc func(spreadsheetID, tab string) ([][]interface{}, error)
}

func (m *mockWellsReader) ReadTab(spreadsheetID, tab string) ([][]interface{}, error) {
	return m.ReadTabFunc(spreadsheetID, tab)
}

type publishCall struct {
	SpreadsheetID string
	Tab           string
	Header        []interface{}
	Rows          [][]interface{}
}

type mockPublisher struct {
	Calls []publishCall
	Err   error
}

func (m *mockPublisher) PublishMatrix(spreadsheetID, tab string, header []interface{}, rows [][]interface{}) error {
	m.Calls = append(m.Calls, publishCall{spreadsheetID, tab, header, rows})
	return m.Err
}

type uploadCall struct {
	Result     string
	Dropped    int
	Duplicates int
}

// mockRecorder keeps every event it receives
type mockRecorder struct {
	metrics.NopRecorder

	Plans           []string
	RoundWarnings   []string
	Recommendations []string
	Uploads         []uploadCall
}

func (m *mockRecorder) RecordPlan(_ int, _ float64, result string) {
	m.Plans = append(m.Plans, result)
}

func (m *mockRecorder) IncrementRoundWarning(round string) {
	m.RoundWarnings = append(m.RoundWarnings, round)
}

func (m *mockRecorder) IncrementRecommendation(kind string) {
	m.Recommendations = append(m.Recommendations, kind)
}

func (m *mockRecorder) RecordUpload(result string, dropped, duplicates int) {
	m.Uploads = append(m.Uploads, uploadCall{result, dropped, duplicates})
}
