package sheetsclient

import (
	"fmt"
	"strings"
)

// quoteTab returns the tab name in A1 notation form
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// ReadTab returns every value in the given tab
func (c *Client) ReadTab(spreadsheetID, tab string) ([][]interface{}, error) {
	values, err := c.GetValues(spreadsheetID, quoteTab(tab))
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %q: %w", tab, err)
	}
	return values, nil
}

// PublishMatrix appends the rows to the given tab. A missing tab is created
// and receives the header row first, so repeated publications accumulate
// under a single header.
func (c *Client) PublishMatrix(spreadsheetID, tab string, header []interface{}, rows [][]interface{}) error {
	exists, err := c.HasSheet(spreadsheetID, tab)
	if err != nil {
		return err
	}

	values := make([][]interface{}, 0, len(rows)+1)
	if !exists {
		if _, err := c.CreateSheet(spreadsheetID, tab); err != nil {
			return fmt.Errorf("failed to create tab %q: %w", tab, err)
		}
		values = append(values, header)
	}
	values = append(values, rows...)

	if len(values) == 0 {
		return nil
	}

	if err := c.AppendRows(spreadsheetID, quoteTab(tab)+"!A1", values); err != nil {
		return fmt.Errorf("failed to publish matrix to %q: %w", tab, err)
	}
	return nil
}
