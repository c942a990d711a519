package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/ingest"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/metrics"
)

// ErrNoWellsSource is returned when neither a file nor a sheet was given
var ErrNoWellsSource = errors.New("no wells source given")

const sheetSourcePrefix = "sheet:"

// WellsReader reads raw cell values from a spreadsheet tab
type WellsReader interface {
	ReadTab(spreadsheetID, tab string) ([][]interface{}, error)
}

// WellSource says where the wells table comes from. Body takes precedence
// over SheetID when both are set.
type WellSource struct {
	FileName string
	Body     io.Reader

	SheetID string
	Tab     string
}

// ParseSheetSource splits a "sheet:ID/TAB" reference
func ParseSheetSource(raw string) (sheetID, tab string, ok bool) {
	ref, found := strings.CutPrefix(raw, sheetSourcePrefix)
	if !found {
		return "", "", false
	}
	sheetID, tab, found = strings.Cut(ref, "/")
	if !found || sheetID == "" || tab == "" {
		return "", "", false
	}
	return sheetID, tab, true
}

// LoadWells parses the wells table from an uploaded file or a Google Sheet
func LoadWells(
	ctx context.Context,
	source WellSource,
	sheets WellsReader,
	recorder metrics.Recorder,
	logger *zap.Logger,
) (*ingest.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := loadWells(source, sheets, logger)
	if err != nil {
		recorder.RecordUpload(metrics.ResultFailure, 0, 0)
		return nil, err
	}

	recorder.RecordUpload(metrics.ResultSuccess, result.DroppedRows, result.DuplicateRows)
	logger.Info("Wells loaded",
		zap.Int("wells", result.Table.Len()),
		zap.Int("dropped_rows", result.DroppedRows),
		zap.Int("duplicate_rows", result.DuplicateRows))

	return result, nil
}

func loadWells(source WellSource, sheets WellsReader, logger *zap.Logger) (*ingest.ParseResult, error) {
	switch {
	case source.Body != nil:
		logger.Debug("Parsing wells file", zap.String("file", source.FileName))
		return ingest.ReadFile(source.FileName, source.Body)

	case source.SheetID != "":
		if sheets == nil {
			return nil, fmt.Errorf("%w: sheets client not configured", ErrNoWellsSource)
		}
		logger.Debug("Reading wells sheet", zap.String("sheet_id", source.SheetID), zap.String("tab", source.Tab))
		values, err := sheets.ReadTab(source.SheetID, source.Tab)
		if err != nil {
			return nil, fmt.Errorf("failed to read wells sheet: %w", err)
		}
		return ingest.ParseValues(values)

	default:
		return nil, ErrNoWellsSource
	}
}
