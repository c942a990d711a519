package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/internal/config"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/dispatch"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/workflow"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/ingest"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/metrics"
)

const wellsCSV = `ZONA;POZO;NETA [M3/D];GEO_LATITUDE;GEO_LONGITUDE;TIEMPO PLANIFICADO
Norte;W1;100;0;0;10
Norte;W2;50;0;1;5
Norte;W3;200;0;2;8
Sur;S1;80;-1;0;4
`

func defaultDispatch() config.DispatchConfig {
	return config.Default().Dispatch
}

func completedState(t *testing.T) workflow.State {
	t.Helper()
	result, err := ingest.ReadCSV(strings.NewReader(wellsCSV))
	require.NoError(t, err)

	s, err := workflow.New().Upload(result.Table)
	require.NoError(t, err)
	s, err = s.SelectZones([]string{"Norte"}, 1, 3)
	require.NoError(t, err)
	s, err = s.AssignRigs([]workflow.RigInput{{Well: "W1", Hours: "4"}})
	require.NoError(t, err)
	s, err = s.SetAvailability(map[string]string{})
	require.NoError(t, err)
	return s
}

func TestParseSheetSource(t *testing.T) {
	tests := []struct {
		raw     string
		sheetID string
		tab     string
		ok      bool
	}{
		{"sheet:abc123/Pozos", "abc123", "Pozos", true},
		{"sheet:abc123/Pozos/2024", "abc123", "Pozos/2024", true},
		{"sheet:abc123", "", "", false},
		{"sheet:/Pozos", "", "", false},
		{"wells.xlsx", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			sheetID, tab, ok := ParseSheetSource(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.sheetID, sheetID)
			assert.Equal(t, tt.tab, tab)
		})
	}
}

func TestLoadWells_File(t *testing.T) {
	recorder := &mockRecorder{}
	result, err := LoadWells(context.Background(), WellSource{
		FileName: "pozos.csv",
		Body:     strings.NewReader(wellsCSV + "Norte;W1;1;0;0;1\n"),
	}, nil, recorder, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 4, result.Table.Len())
	assert.Equal(t, []uploadCall{{metrics.ResultSuccess, 0, 1}}, recorder.Uploads)
}

func TestLoadWells_UnplannableRowsDoNotBlockPlanning(t *testing.T) {
	recorder := &mockRecorder{}
	result, err := LoadWells(context.Background(), WellSource{
		FileName: "pozos.csv",
		Body: strings.NewReader("ZONA;POZO;NETA [M3/D];GEO_LATITUDE;GEO_LONGITUDE;TIEMPO PLANIFICADO\n" +
			"Norte;W1;100;0;0;10\nNorte;W2;50;0;1;0\nNorte;W3;200;0;2;8\nNorte;W4;70;0;3;NaN\n"),
	}, nil, recorder, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"W1", "W3"}, result.Table.Names())
	assert.Equal(t, []uploadCall{{metrics.ResultSuccess, 2, 0}}, recorder.Uploads)

	s, err := workflow.New().Upload(result.Table)
	require.NoError(t, err)
	s, err = s.SelectZones([]string{"Norte"}, 1, 3)
	require.NoError(t, err)
	s, err = s.AssignRigs([]workflow.RigInput{{Well: "W1", Hours: "4"}})
	require.NoError(t, err)
	s, err = s.SetAvailability(map[string]string{})
	require.NoError(t, err)

	report, err := PlanDispatch(context.Background(), s, defaultDispatch(), metrics.NewNop(), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "W3", report.Rows[0].Candidates[dispatch.RoundN1].Well)
	assert.True(t, report.Rows[0].Candidates[dispatch.RoundN2].Empty)
}

func TestLoadWells_Sheet(t *testing.T) {
	reader := &mockWellsReader{
		ReadTabFunc: func(spreadsheetID, tab string) ([][]interface{}, error) {
			assert.Equal(t, "sheet-1", spreadsheetID)
			assert.Equal(t, "Pozos", tab)
			return [][]interface{}{
				{"ZONA", "POZO", "NETA [M3/D]", "GEO_LATITUDE", "GEO_LONGITUDE", "TIEMPO PLANIFICADO"},
				{"Norte", "W1", "100", "0", "0", "10"},
			}, nil
		},
	}

	result, err := LoadWells(context.Background(), WellSource{SheetID: "sheet-1", Tab: "Pozos"},
		reader, metrics.NewNop(), zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, []string{"W1"}, result.Table.Names())
}

func TestLoadWells_Errors(t *testing.T) {
	t.Run("no source", func(t *testing.T) {
		recorder := &mockRecorder{}
		_, err := LoadWells(context.Background(), WellSource{}, nil, recorder, zap.NewNop())
		assert.ErrorIs(t, err, ErrNoWellsSource)
		assert.Equal(t, []uploadCall{{metrics.ResultFailure, 0, 0}}, recorder.Uploads)
	})

	t.Run("sheet without client", func(t *testing.T) {
		_, err := LoadWells(context.Background(), WellSource{SheetID: "id", Tab: "tab"}, nil, metrics.NewNop(), zap.NewNop())
		assert.ErrorIs(t, err, ErrNoWellsSource)
	})

	t.Run("sheet read failure", func(t *testing.T) {
		reader := &mockWellsReader{
			ReadTabFunc: func(string, string) ([][]interface{}, error) { return nil, errors.New("quota exceeded") },
		}
		_, err := LoadWells(context.Background(), WellSource{SheetID: "id", Tab: "tab"}, reader, metrics.NewNop(), zap.NewNop())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := LoadWells(context.Background(), WellSource{
			FileName: "pozos.csv",
			Body:     strings.NewReader("ZONA;POZO\nNorte;W1\n"),
		}, nil, metrics.NewNop(), zap.NewNop())
		assert.ErrorIs(t, err, ingest.ErrMissingColumns)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := LoadWells(ctx, WellSource{FileName: "a.csv", Body: strings.NewReader(wellsCSV)}, nil, metrics.NewNop(), zap.NewNop())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestPlanDispatch(t *testing.T) {
	recorder := &mockRecorder{}
	state := completedState(t)

	report, err := PlanDispatch(context.Background(), state, defaultDispatch(), recorder, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.Equal(t, "W3", row.Candidates[dispatch.RoundN1].Well)
	assert.Equal(t, "W2", row.Candidates[dispatch.RoundN2].Well)
	assert.True(t, row.Candidates[dispatch.RoundN3].Empty)
	assert.Equal(t, dispatch.RecommendContinue, row.Recommendation)

	assert.Equal(t, state.Fingerprint(), report.Fingerprint)
	assert.False(t, report.GeneratedAt.IsZero())

	assert.Equal(t, []string{metrics.ResultSuccess}, recorder.Plans)
	assert.Equal(t, []string{"N+3"}, recorder.RoundWarnings)
	assert.Equal(t, []string{ClassStay}, recorder.Recommendations)
}

func TestPlanDispatch_IncompleteState(t *testing.T) {
	recorder := &mockRecorder{}

	_, err := PlanDispatch(context.Background(), workflow.New(), defaultDispatch(), recorder, zap.NewNop())
	assert.ErrorIs(t, err, workflow.ErrStepMissing)
	assert.Equal(t, []string{metrics.ResultFailure}, recorder.Plans)
}

func TestPlanDispatch_RejectZeroHours(t *testing.T) {
	result, err := ingest.ReadCSV(strings.NewReader(wellsCSV))
	require.NoError(t, err)
	s, err := workflow.New().Upload(result.Table)
	require.NoError(t, err)
	s, err = s.SelectZones([]string{"Norte"}, 1, 3)
	require.NoError(t, err)
	s, err = s.AssignRigs([]workflow.RigInput{{Well: "W1", Hours: "0"}})
	require.NoError(t, err)
	s, err = s.SetAvailability(nil)
	require.NoError(t, err)

	cfg := defaultDispatch()
	cfg.ZeroHoursPolicy = string(dispatch.ZeroHoursReject)

	_, err = PlanDispatch(context.Background(), s, cfg, metrics.NewNop(), zap.NewNop())
	assert.ErrorIs(t, err, dispatch.ErrInvalidInput)
}

func TestReport_Records(t *testing.T) {
	report, err := PlanDispatch(context.Background(), completedState(t), defaultDispatch(), metrics.NewNop(), zap.NewNop())
	require.NoError(t, err)

	records := report.Records()
	require.Len(t, records, 1)
	record := records[0]
	require.Len(t, record, len(MatrixHeader))

	assert.Equal(t, "Pulling 1", record[0])
	assert.Equal(t, "W1", record[1])
	assert.Equal(t, "100", record[2])
	assert.Equal(t, "4", record[3])
	assert.Equal(t, "W3", record[4])
	assert.Equal(t, "W2", record[7])
	assert.Equal(t, dispatch.NoCandidateLabel, record[10])
	assert.Equal(t, "1", record[11])
	assert.Equal(t, "1", record[12])
	assert.Equal(t, "Continuar en pozo actual", record[13])

	assert.Equal(t, []string{"⚠️ No hay pozos disponibles para asignar como N+3 en Pulling 1."}, report.WarningMessages())
}

func TestRecommendationText(t *testing.T) {
	assert.Equal(t, "Abandonar pozo actual y moverse al N+1", RecommendationLabel(dispatch.RecommendMove))
	assert.Equal(t, "Continuar en pozo actual", RecommendationLabel(dispatch.RecommendContinue))
	assert.Equal(t, ClassMove, RecommendationClass(dispatch.RecommendMove))
	assert.Equal(t, ClassStay, RecommendationClass(dispatch.RecommendContinue))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "1.5", FormatNumber(1.5))
	assert.Equal(t, "0.3333", FormatNumber(1.0/3))
	assert.Equal(t, "2.7183", FormatNumber(2.71828))
}

func TestPublishMatrix(t *testing.T) {
	publisher := &mockPublisher{}
	report := &Report{
		GeneratedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Rows: []dispatch.PriorityRow{{
			RigID:          "Pulling 1",
			CurrentWell:    "W1",
			CurrentNet:     100,
			RemainingHours: 4,
			Candidates: [dispatch.RoundCount]dispatch.Assignment{
				{Well: "W3", Score: 1.5, DistanceKm: 10},
				dispatch.NoCandidate(),
				dispatch.NoCandidate(),
			},
			Recommendation: dispatch.RecommendMove,
		}},
	}

	err := PublishMatrix(context.Background(), publisher, "sheet-1", "Matriz", report, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, publisher.Calls, 1)
	call := publisher.Calls[0]
	assert.Equal(t, "sheet-1", call.SpreadsheetID)
	assert.Equal(t, "Matriz", call.Tab)
	require.Len(t, call.Header, len(MatrixHeader)+1)
	assert.Equal(t, PublishedAtColumn, call.Header[0])
	assert.Equal(t, "Recomendación", call.Header[len(call.Header)-1])

	require.Len(t, call.Rows, 1)
	row := call.Rows[0]
	assert.Equal(t, "2024-03-01 09:30:00", row[0])
	assert.Equal(t, "Pulling 1", row[1])
	assert.Equal(t, 100.0, row[3])
	assert.Equal(t, "W3", row[5])
	assert.Equal(t, dispatch.NoCandidateLabel, row[8])
	assert.Equal(t, "Abandonar pozo actual y moverse al N+1", row[14])
}

func TestPublishMatrix_Errors(t *testing.T) {
	report := &Report{}

	err := PublishMatrix(context.Background(), &mockPublisher{}, "", "Matriz", report, zap.NewNop())
	assert.Error(t, err)

	publisher := &mockPublisher{Err: errors.New("permission denied")}
	err = PublishMatrix(context.Background(), publisher, "sheet-1", "Matriz", report, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish matrix")
	assert.Contains(t, err.Error(), "permission denied")
}
