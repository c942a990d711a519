package commands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/internal/config"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/services"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/metrics"
)

// SheetsAPI is the part of the Google Sheets client the commands use
type SheetsAPI interface {
	services.WellsReader
	services.MatrixPublisher
}

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Env      string
	Recorder metrics.Recorder
	Logger   *zap.Logger
	Ctx      context.Context

	// Sheets is created on first use by NewSheets, since authorizing may
	// require a browser round trip
	Sheets    SheetsAPI
	NewSheets func(ctx context.Context) (SheetsAPI, error)
}

// SheetsClient returns the Sheets client, creating it if needed
func (a *AppContext) SheetsClient() (SheetsAPI, error) {
	if a.Sheets != nil {
		return a.Sheets, nil
	}
	if a.NewSheets == nil {
		return nil, errors.New("google sheets access is not configured")
	}

	a.Logger.Info("Initializing sheets client")
	client, err := a.NewSheets(a.Ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	a.Sheets = client
	return client, nil
}
