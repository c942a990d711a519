package ingest

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Column headers expected in the wells spreadsheet
const (
	ColumnNetProduction = "NETA [M3/D]"
	ColumnLatitude      = "GEO_LATITUDE"
	ColumnLongitude     = "GEO_LONGITUDE"
	ColumnPlannedHours  = "TIEMPO PLANIFICADO"
	ColumnZone          = "ZONA"
	ColumnWell          = "POZO"
)

// numericColumns must be present and parse as numbers
var numericColumns = []string{
	ColumnNetProduction,
	ColumnLatitude,
	ColumnLongitude,
	ColumnPlannedHours,
}

// identityColumns must be present for the table to be usable at all
var identityColumns = []string{
	ColumnZone,
	ColumnWell,
}

var upper = cases.Upper(language.Und)

// normalizeText trims, collapses inner whitespace and applies NFKC so that
// visually identical names from different spreadsheets compare equal
func normalizeText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFKC.String(s)
}

// normalizeHeader makes header matching insensitive to case and spacing
func normalizeHeader(s string) string {
	return upper.String(normalizeText(s))
}

// columnIndex maps each normalized header to its first position
func columnIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

// missing returns the required columns absent from the index, in order
func missing(index map[string]int, required []string) []string {
	var absent []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			absent = append(absent, col)
		}
	}
	return absent
}
