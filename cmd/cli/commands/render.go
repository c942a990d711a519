package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/dispatch"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/services"
)

var (
	moveColor    = color.New(color.FgRed, color.Bold)
	stayColor    = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow)
	titleColor   = color.New(color.FgCyan, color.Bold)
)

func recommendationText(r dispatch.Recommendation) string {
	label := services.RecommendationLabel(r)
	if r == dispatch.RecommendMove {
		return moveColor.Sprint(label)
	}
	return stayColor.Sprint(label)
}

// renderMatrix prints the priority matrix followed by any unfilled rounds
func renderMatrix(w io.Writer, report *services.Report) error {
	titleColor.Fprintf(w, "\nMatriz de prioridad (%d pulling)\n\n", len(report.Rows))

	table := tablewriter.NewTable(w, tablewriter.WithHeader(services.MatrixHeader))
	for i, record := range report.Records() {
		record[len(record)-1] = recommendationText(report.Rows[i].Recommendation)
		if err := table.Append(record); err != nil {
			return fmt.Errorf("failed to render matrix: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render matrix: %w", err)
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, message := range report.WarningMessages() {
			warningColor.Fprintln(w, message)
		}
	}
	fmt.Fprintln(w)
	return nil
}

// renderZones prints each zone with its well count
func renderZones(w io.Writer, table *dispatch.WellTable) error {
	counts := make(map[string]int)
	for _, well := range table.Wells() {
		counts[well.Zone]++
	}

	out := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"Zona", "Pozos"}))
	for _, zone := range table.Zones() {
		if err := out.Append([]string{zone, fmt.Sprint(counts[zone])}); err != nil {
			return fmt.Errorf("failed to render zones: %w", err)
		}
	}
	return out.Render()
}
