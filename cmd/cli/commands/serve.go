package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/internal/config"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/services"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/db"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/postgres"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/web"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				app.Cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openSessionStore(ctx, app.Cfg, app.Logger)
			if err != nil {
				return err
			}
			defer closeStore()

			var sheets services.WellsReader
			if app.Cfg.Sheets.WellsSheetID != "" {
				client, err := app.SheetsClient()
				if err != nil {
					return err
				}
				sheets = client
			}

			server, err := web.NewServer(web.Options{
				Config:   app.Cfg,
				Store:    store,
				Sheets:   sheets,
				Recorder: app.Recorder,
				Logger:   app.Logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create web server: %w", err)
			}

			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.DatabaseURL == "" {
				return errors.New("databaseURL is not configured")
			}

			database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := database.RunMigrations(app.Ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Database is up to date.")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "  ✓ %s\n", name)
			}
			return nil
		},
	}
}

// openSessionStore returns the configured session store and a function releasing it
func openSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.SessionStore, func(), error) {
	if cfg.Server.SessionStore != config.SessionStorePostgres {
		logger.Info("Using in-memory session store")
		return db.NewMemoryStore(), func() {}, nil
	}

	logger.Info("Connecting to database")
	database, err := postgres.NewDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}

	applied, err := database.RunMigrations(ctx)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	if len(applied) > 0 {
		logger.Info("Migrations applied", zap.Strings("files", applied))
	}

	return database, database.Close, nil
}
