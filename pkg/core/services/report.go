package services

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/dispatch"
)

// MatrixHeader names the columns of the priority matrix, in display order
var MatrixHeader = []string{
	"Pulling", "Pozo Actual", "Neta Actual", "Tiempo Restante (h)",
	"N+1", "Coeficiente N+1", "Distancia N+1 (km)",
	"N+2", "Coeficiente N+2", "Distancia N+2 (km)",
	"N+3", "Coeficiente N+3", "Distancia N+3 (km)",
	"Recomendación",
}

// PublishedAtColumn is prepended to the matrix when it is published to a sheet
const PublishedAtColumn = "Fecha"

// Recommendation classes, used as CSS classes and metric labels
const (
	ClassMove = "move"
	ClassStay = "stay"
)

// Report is a completed planning run, ready to be shown or published
type Report struct {
	Fingerprint string                  `json:"fingerprint"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Rows        []dispatch.PriorityRow  `json:"rows"`
	Warnings    []dispatch.RoundWarning `json:"warnings,omitempty"`
}

// NewReport wraps an engine outcome
func NewReport(outcome *dispatch.Outcome, fingerprint string, generatedAt time.Time) *Report {
	return &Report{
		Fingerprint: fingerprint,
		GeneratedAt: generatedAt,
		Rows:        outcome.Rows,
		Warnings:    outcome.Warnings,
	}
}

// RecommendationLabel returns the user-facing text for a recommendation
func RecommendationLabel(r dispatch.Recommendation) string {
	if r == dispatch.RecommendMove {
		return "Abandonar pozo actual y moverse al N+1"
	}
	return "Continuar en pozo actual"
}

// RecommendationClass returns "move" or "stay"
func RecommendationClass(r dispatch.Recommendation) string {
	if r == dispatch.RecommendMove {
		return ClassMove
	}
	return ClassStay
}

// WarningMessage returns the user-facing text for an unfilled round
func WarningMessage(w dispatch.RoundWarning) string {
	return fmt.Sprintf("⚠️ No hay pozos disponibles para asignar como %s en %s.", w.Round, w.RigID)
}

// WarningMessages returns the user-facing text for every warning in the report
func (r *Report) WarningMessages() []string {
	messages := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		messages[i] = WarningMessage(w)
	}
	return messages
}

// Records returns the matrix as text cells, one slice per rig, aligned with MatrixHeader
func (r *Report) Records() [][]string {
	records := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		record := []string{
			row.RigID,
			row.CurrentWell,
			FormatNumber(row.CurrentNet),
			FormatNumber(row.RemainingHours),
		}
		for _, c := range row.Candidates {
			record = append(record, c.Label(), FormatNumber(c.Score), FormatNumber(c.DistanceKm))
		}
		records[i] = append(record, RecommendationLabel(row.Recommendation))
	}
	return records
}

// Values returns the matrix as spreadsheet cells, keeping numbers numeric
func (r *Report) Values() [][]interface{} {
	values := make([][]interface{}, len(r.Rows))
	for i, row := range r.Rows {
		value := []interface{}{
			row.RigID,
			row.CurrentWell,
			row.CurrentNet,
			row.RemainingHours,
		}
		for _, c := range row.Candidates {
			value = append(value, c.Label(), round(c.Score), round(c.DistanceKm))
		}
		values[i] = append(value, RecommendationLabel(row.Recommendation))
	}
	return values
}

// FormatNumber renders a value with at most four decimals
func FormatNumber(v float64) string {
	return strconv.FormatFloat(round(v), 'f', -1, 64)
}

func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
