package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/dispatch"
)

var (
	// ErrEmptyTable is returned when the input has no data rows
	ErrEmptyTable = errors.New("the file is empty")

	// ErrMissingColumns is returned when a numeric column is absent
	ErrMissingColumns = errors.New("missing required columns")

	// ErrMissingIdentity is returned when the zone or well column is absent
	ErrMissingIdentity = errors.New("the file must contain the 'ZONA' and 'POZO' columns")

	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// PreviewSize is the number of rows echoed back after a successful upload
const PreviewSize = 5

// ParseResult is the validated well table plus what was discarded on the way
type ParseResult struct {
	Table *dispatch.WellTable

	// DroppedRows counts rows with an unparsable or out-of-range value
	DroppedRows int

	// DuplicateRows counts rows whose well name was already seen
	DuplicateRows int

	// Preview holds the first few accepted wells
	Preview []dispatch.Well
}

var validate = validator.New()

// ParseRows converts raw rows (first row = headers) into a well table.
// Numeric cells accept a comma as the decimal separator. Rows that fail to
// parse are dropped, and later rows repeating a well name are ignored.
func ParseRows(rows [][]string) (*ParseResult, error) {
	if len(rows) < 2 {
		return nil, ErrEmptyTable
	}

	index := columnIndex(rows[0])
	if absent := missing(index, numericColumns); len(absent) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(absent, ", "))
	}
	if absent := missing(index, identityColumns); len(absent) > 0 {
		return nil, ErrMissingIdentity
	}

	result := &ParseResult{}
	wells := make([]dispatch.Well, 0, len(rows)-1)
	seen := make(map[string]bool)

	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		well, ok := parseWell(row, index)
		if !ok {
			result.DroppedRows++
			continue
		}

		if seen[well.Name] {
			result.DuplicateRows++
			continue
		}
		seen[well.Name] = true
		wells = append(wells, well)
	}

	if len(wells) == 0 {
		return nil, fmt.Errorf("%w: no valid rows after cleaning (%d dropped)", ErrEmptyTable, result.DroppedRows)
	}

	table, err := dispatch.NewWellTable(wells)
	if err != nil {
		return nil, fmt.Errorf("failed to build well table: %w", err)
	}

	result.Table = table
	result.Preview = wells[:min(PreviewSize, len(wells))]
	return result, nil
}

// ParseValues converts spreadsheet API values into rows and parses them
func ParseValues(values [][]interface{}) (*ParseResult, error) {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			if cell != nil {
				rows[i][j] = fmt.Sprint(cell)
			}
		}
	}
	return ParseRows(rows)
}

func parseWell(row []string, index map[string]int) (dispatch.Well, bool) {
	var numbers [4]float64
	for i, col := range numericColumns {
		value, ok := parseNumber(cell(row, index[col]))
		if !ok {
			return dispatch.Well{}, false
		}
		numbers[i] = value
	}

	well := dispatch.Well{
		Name:          normalizeText(cell(row, index[ColumnWell])),
		Zone:          normalizeText(cell(row, index[ColumnZone])),
		NetProduction: numbers[0],
		Latitude:      numbers[1],
		Longitude:     numbers[2],
		PlannedHours:  numbers[3],
	}

	if err := validate.Struct(well); err != nil {
		return dispatch.Well{}, false
	}
	return well, true
}

// parseNumber accepts "12.5", "12,5" and surrounding whitespace. NaN and
// infinities are rejected.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
