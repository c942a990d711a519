package sheetsclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// fakeSheets serves the subset of the Sheets API used by the client
type fakeSheets struct {
	mu       sync.Mutex
	tabs     []string
	values   map[string][][]interface{}
	appended [][]interface{}
	created  []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		title := req.Requests[0].AddSheet.Properties.Title
		f.tabs = append(f.tabs, title)
		f.created = append(f.created, title)
		json.NewEncoder(w).Encode(sheets.BatchUpdateSpreadsheetResponse{
			Replies: []*sheets.Response{{AddSheet: &sheets.AddSheetResponse{
				Properties: &sheets.SheetProperties{SheetId: int64(len(f.tabs)), Title: title},
			}}},
		})

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		var vr sheets.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.appended = append(f.appended, vr.Values...)
		json.NewEncoder(w).Encode(sheets.AppendValuesResponse{})

	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		json.NewEncoder(w).Encode(sheets.ValueRange{Range: rng, Values: f.values[rng]})

	case r.Method == http.MethodGet:
		spreadsheet := sheets.Spreadsheet{}
		for _, tab := range f.tabs {
			spreadsheet.Sheets = append(spreadsheet.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: tab}})
		}
		json.NewEncoder(w).Encode(spreadsheet)

	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	service, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)
	return NewClientWithService(service)
}

func TestQuoteTab(t *testing.T) {
	assert.Equal(t, "'Matriz'", quoteTab("Matriz"))
	assert.Equal(t, "'Plan de Juan''s'", quoteTab("Plan de Juan's"))
}

func TestPublishMatrix_CreatesTabWithHeader(t *testing.T) {
	fake := &fakeSheets{}
	client := newTestClient(t, fake)

	header := []interface{}{"Pulling", "Pozo Actual"}
	rows := [][]interface{}{{"Pulling 1", "W1"}}

	require.NoError(t, client.PublishMatrix("sheet", "Matriz", header, rows))

	assert.Equal(t, []string{"Matriz"}, fake.created)
	assert.Equal(t, [][]interface{}{
		{"Pulling", "Pozo Actual"},
		{"Pulling 1", "W1"},
	}, fake.appended)
}

func TestPublishMatrix_ExistingTabAppendsRowsOnly(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Matriz"}}
	client := newTestClient(t, fake)

	require.NoError(t, client.PublishMatrix("sheet", "Matriz",
		[]interface{}{"Pulling"},
		[][]interface{}{{"Pulling 1"}, {"Pulling 2"}},
	))

	assert.Empty(t, fake.created)
	assert.Equal(t, [][]interface{}{{"Pulling 1"}, {"Pulling 2"}}, fake.appended)
}

func TestHasSheet(t *testing.T) {
	client := newTestClient(t, &fakeSheets{tabs: []string{"Pozos", "Matriz"}})

	ok, err := client.HasSheet("sheet", "Pozos")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.HasSheet("sheet", "Otro")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadTab(t *testing.T) {
	client := newTestClient(t, &fakeSheets{values: map[string][][]interface{}{
		"'Pozos'": {{"ZONA", "POZO"}, {"Norte", "P-1"}},
	}})

	values, err := client.ReadTab("sheet", "Pozos")
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"ZONA", "POZO"}, {"Norte", "P-1"}}, values)
}
