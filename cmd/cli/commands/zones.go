package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ZonesCmd creates the zones command
func ZonesCmd(app *AppContext) *cobra.Command {
	var wells string

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List the zones in a wells file and how many wells each has",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadWells(app, wells)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n%d pozos cargados", result.Table.Len())
			if result.DroppedRows > 0 || result.DuplicateRows > 0 {
				fmt.Fprintf(out, " (%d filas descartadas, %d repetidas)", result.DroppedRows, result.DuplicateRows)
			}
			fmt.Fprint(out, "\n\n")

			return renderZones(out, result.Table)
		},
	}

	cmd.Flags().StringVarP(&wells, "wells", "w", "", "Wells file (.xlsx/.csv) or sheet:ID/TAB (defaults to the configured sheet)")

	return cmd
}
