package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/cmd/cli/commands"
	"github.com/Lucianogalizia/CronoPUHEROKE/internal/config"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/clients/sheetsclient"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/metrics"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/utils/logging"
)

var env string

func main() {
	app := &commands.AppContext{Ctx: context.Background()}

	rootCmd := &cobra.Command{
		Use:   "cronopu",
		Short: "CronoPU - next-well dispatch planner for pulling units",
		Long: `Plans the next three wells for each pulling unit from a wells table,
the hours each unit still needs on its current well and the hours until
each candidate well is ready, and recommends whether to stay or move.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(app, cmd.Name() == "serve")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment used to pick the config file and token (e.g. test, prod)")

	factories := []commands.CommandFactory{
		commands.PlanCmd,
		commands.ZonesCmd,
	}
	for _, factory := range factories {
		rootCmd.AddCommand(factory(app))
	}
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app, factories...))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger, config, metrics and the lazy sheets client
func initApp(app *commands.AppContext, server bool) error {
	var err error
	app.Env = env

	if server {
		app.Logger, err = logging.InitServerLogger(env)
	} else {
		app.Logger, err = logging.InitLogger(env)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("session_store", app.Cfg.Server.SessionStore),
		zap.String("comparison_policy", app.Cfg.Dispatch.ComparisonPolicy))

	app.Recorder = metrics.NewPrometheus(prometheus.DefaultRegisterer, app.Cfg.Metrics.Namespace)

	app.NewSheets = func(ctx context.Context) (commands.SheetsAPI, error) {
		app.Logger.Info("Loading OAuth client configuration")
		oauthCfg, err := config.LoadOAuthClientWithEnv(env)
		if err != nil {
			return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
		}
		return sheetsclient.NewClient(ctx, oauthCfg, env, app.Logger)
	}

	return nil
}
