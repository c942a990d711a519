package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/services"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/workflow"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/ingest"
)

// loadWells reads a wells file path or a "sheet:ID/TAB" reference. An empty
// reference falls back to the configured wells sheet.
func loadWells(app *AppContext, ref string) (*ingest.ParseResult, error) {
	source := services.WellSource{}

	switch {
	case ref == "":
		if app.Cfg.Sheets.WellsSheetID == "" {
			return nil, fmt.Errorf("--wells is required when no wells sheet is configured")
		}
		source.SheetID = app.Cfg.Sheets.WellsSheetID
		source.Tab = app.Cfg.Sheets.WellsTab

	case strings.HasPrefix(ref, "sheet:"):
		sheetID, tab, ok := services.ParseSheetSource(ref)
		if !ok {
			return nil, fmt.Errorf("invalid sheet reference %q (expected sheet:ID/TAB)", ref)
		}
		source.SheetID = sheetID
		source.Tab = tab

	default:
		file, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to open wells file: %w", err)
		}
		defer file.Close()

		source.FileName = filepath.Base(ref)
		source.Body = file
	}

	var sheets services.WellsReader
	if source.SheetID != "" {
		client, err := app.SheetsClient()
		if err != nil {
			return nil, err
		}
		sheets = client
	}

	return services.LoadWells(app.Ctx, source, sheets, app.Recorder, app.Logger)
}

// parseRigs turns "WELL:HOURS" flags into rig inputs. The hours part is
// optional and the last colon separates it, so well names may contain colons.
func parseRigs(values []string) ([]workflow.RigInput, error) {
	inputs := make([]workflow.RigInput, 0, len(values))
	for _, v := range values {
		well, hours := v, ""
		if i := strings.LastIndex(v, ":"); i >= 0 {
			well, hours = v[:i], v[i+1:]
		}
		well = strings.TrimSpace(well)
		if well == "" {
			return nil, fmt.Errorf("invalid --rig %q (expected WELL:HOURS)", v)
		}
		inputs = append(inputs, workflow.RigInput{Well: well, Hours: strings.TrimSpace(hours)})
	}
	return inputs, nil
}

// loadAvailabilityFile reads a YAML mapping of well name to hours
func loadAvailabilityFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read availability file: %w", err)
	}

	var hours map[string]float64
	if err := yaml.Unmarshal(data, &hours); err != nil {
		return nil, fmt.Errorf("failed to parse availability file: %w", err)
	}

	result := make(map[string]string, len(hours))
	for well, h := range hours {
		result[well] = services.FormatNumber(h)
	}
	return result, nil
}

// buildState runs the workflow steps for a one-shot plan. No zones means
// every zone in the table.
func buildState(
	app *AppContext,
	result *ingest.ParseResult,
	zones []string,
	rigs []workflow.RigInput,
	availability map[string]string,
) (workflow.State, error) {
	state, err := workflow.New().Upload(result.Table)
	if err != nil {
		return state, err
	}

	if len(zones) == 0 {
		zones = result.Table.Zones()
	}
	state, err = state.SelectZones(zones, len(rigs), app.Cfg.Dispatch.DefaultRigCount)
	if err != nil {
		return state, err
	}

	state, err = state.AssignRigs(rigs)
	if err != nil {
		return state, err
	}

	app.Logger.Debug("Rigs placed",
		zap.Strings("zones", state.Zones),
		zap.Strings("remaining", state.RemainingWells()))

	for well := range availability {
		if !slices.Contains(state.RemainingWells(), well) {
			app.Logger.Warn("Ignoring availability for a well that is not a candidate", zap.String("well", well))
		}
	}

	return state.SetAvailability(availability)
}
