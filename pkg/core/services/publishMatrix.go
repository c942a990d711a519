package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MatrixPublisher appends rows to a spreadsheet tab, writing the header
// first when the tab is new
type MatrixPublisher interface {
	PublishMatrix(spreadsheetID, tab string, header []interface{}, rows [][]interface{}) error
}

// PublishMatrix appends the report to a sheet. Each row is stamped with the
// time the report was generated so successive runs can be told apart.
func PublishMatrix(
	ctx context.Context,
	publisher MatrixPublisher,
	sheetID, tab string,
	report *Report,
	logger *zap.Logger,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sheetID == "" || tab == "" {
		return fmt.Errorf("failed to publish matrix: sheet id and tab are required")
	}

	header := make([]interface{}, 0, len(MatrixHeader)+1)
	header = append(header, PublishedAtColumn)
	for _, h := range MatrixHeader {
		header = append(header, h)
	}

	stamp := report.GeneratedAt.Format(time.DateTime)
	rows := make([][]interface{}, 0, len(report.Rows))
	for _, values := range report.Values() {
		rows = append(rows, append([]interface{}{stamp}, values...))
	}

	logger.Debug("Publishing priority matrix",
		zap.String("sheet_id", sheetID),
		zap.String("tab", tab),
		zap.Int("rows", len(rows)))

	if err := publisher.PublishMatrix(sheetID, tab, header, rows); err != nil {
		return fmt.Errorf("failed to publish matrix: %w", err)
	}

	logger.Info("Priority matrix published", zap.String("tab", tab), zap.Int("rows", len(rows)))
	return nil
}
