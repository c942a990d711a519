package commands

import (
	"errors"
	"fmt"
	"maps"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/services"
)

type planFlags struct {
	wells            string
	zones            []string
	rigs             []string
	hours            map[string]string
	availabilityFile string
	publish          bool
	publishTab       string
	comparison       string
	zeroHours        string
}

func (f *planFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.wells, "wells", "w", "", "Wells file (.xlsx/.csv) or sheet:ID/TAB (defaults to the configured sheet)")
	fs.StringSliceVarP(&f.zones, "zone", "z", nil, "Zone to plan in (repeatable, defaults to all zones)")
	fs.StringArrayVarP(&f.rigs, "rig", "r", nil, "Pulling unit as WELL:HOURS (repeatable, in planning order)")
	fs.StringToStringVar(&f.hours, "hs", nil, "Hours until a well's equipment is ready, as WELL=HOURS")
	fs.StringVar(&f.availabilityFile, "availability", "", "YAML file mapping well names to availability hours")
	fs.BoolVar(&f.publish, "publish", false, "Append the matrix to the configured publish sheet")
	fs.StringVar(&f.publishTab, "publish-tab", "", "Override the tab the matrix is published to")
	fs.StringVar(&f.comparison, "comparison", "", "Override the comparison policy (move_if_better, move_if_worse)")
	fs.StringVar(&f.zeroHours, "zero-hours", "", "Override the zero-hours policy (always_move, reject)")
}

// PlanCmd creates the plan command
func PlanCmd(app *AppContext) *cobra.Command {
	f := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the next wells for each pulling unit and print the priority matrix",
		Long: `Plan the next three wells for each pulling unit.

Wells come from a .xlsx/.csv file or a Google Sheet (sheet:ID/TAB). Each
--rig places a pulling unit on its current well with the hours it still
needs there, in the order the units should be planned.`,
		Example: `  cronopu plan --wells pozos.xlsx --zone Norte --rig W1:4.5 --rig W7:0 --hs W2=3
  cronopu plan --wells sheet:1AbC/Pozos --rig W1:2 --availability hs.yaml --publish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(f.rigs) == 0 {
				return errors.New("at least one --rig is required")
			}

			app.Logger.Debug("plan command",
				zap.String("wells", f.wells),
				zap.Strings("zones", f.zones),
				zap.Strings("rigs", f.rigs))

			rigInputs, err := parseRigs(f.rigs)
			if err != nil {
				return err
			}

			availability := map[string]string{}
			if f.availabilityFile != "" {
				availability, err = loadAvailabilityFile(f.availabilityFile)
				if err != nil {
					return err
				}
			}
			maps.Copy(availability, f.hours)

			result, err := loadWells(app, f.wells)
			if err != nil {
				return err
			}

			state, err := buildState(app, result, f.zones, rigInputs, availability)
			if err != nil {
				return err
			}

			dispatchCfg := app.Cfg.Dispatch
			if f.comparison != "" {
				dispatchCfg.ComparisonPolicy = f.comparison
			}
			if f.zeroHours != "" {
				dispatchCfg.ZeroHoursPolicy = f.zeroHours
			}

			report, err := services.PlanDispatch(app.Ctx, state, dispatchCfg, app.Recorder, app.Logger)
			if err != nil {
				return err
			}

			if err := renderMatrix(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			if !f.publish {
				return nil
			}

			sheetID := app.Cfg.Sheets.PublishSheetID
			tab := app.Cfg.Sheets.PublishTab
			if f.publishTab != "" {
				tab = f.publishTab
			}
			if sheetID == "" {
				return errors.New("--publish requires sheets.publishSheetID in the config")
			}

			client, err := app.SheetsClient()
			if err != nil {
				return err
			}
			if err := services.PublishMatrix(app.Ctx, client, sheetID, tab, report, app.Logger); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Matriz publicada en la pestaña %q\n\n", tab)
			return nil
		},
	}

	f.bind(cmd.Flags())

	return cmd
}
