// Package worklist loads the (identifier, URL) scraping worklist from a
// tabular workbook.
package worklist

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shelfgrab/shelfgrab/models"
)

// Load reads work items from the first sheet of an .xlsx workbook. The first
// row is the header; URL_ID and URL columns are matched case-insensitively.
// When either is missing, the first two columns are used positionally with a
// warning. Rows with an empty URL cell are skipped.
//
// A missing file or a sheet with fewer than two columns is a configuration
// error: the caller gets an empty list and an error, never a panic.
func Load(path string) ([]models.WorkItem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open worklist %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("worklist %s: workbook has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worklist %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worklist %s: sheet %q is empty", path, sheets[0])
	}

	header := rows[0]
	idCol, urlCol := findColumns(header)
	if idCol < 0 || urlCol < 0 {
		if len(header) < 2 {
			return nil, fmt.Errorf("worklist %s: need at least two columns, got %d", path, len(header))
		}
		slog.Warn("expected columns URL_ID and URL not found, using the first two columns positionally",
			"available", header,
			"idColumn", header[0],
			"urlColumn", header[1],
		)
		idCol, urlCol = 0, 1
	}

	items := make([]models.WorkItem, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if urlCol >= len(row) || strings.TrimSpace(row[urlCol]) == "" {
			continue
		}
		id := ""
		if idCol < len(row) {
			id = strings.TrimSpace(row[idCol])
		}
		items = append(items, models.WorkItem{
			ID:  id,
			URL: strings.TrimSpace(row[urlCol]),
		})
	}
	return items, nil
}

// findColumns locates the URL_ID and URL headers, case-insensitively.
// Returns -1 for any column not found.
func findColumns(header []string) (idCol, urlCol int) {
	idCol, urlCol = -1, -1
	for i, col := range header {
		switch strings.ToUpper(strings.TrimSpace(col)) {
		case "URL_ID":
			if idCol < 0 {
				idCol = i
			}
		case "URL":
			if urlCol < 0 {
				urlCol = i
			}
		}
	}
	return idCol, urlCol
}

// EnsureInput writes a two-row dummy workbook when the input file does not
// exist, so a fresh checkout has something to run against.
func EnsureInput(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	slog.Warn("input worklist not found, creating a dummy file for testing", "path", path)

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells := [][]any{
		{"URL_ID", "URL"},
		{"TestID1", "https://blinkit.com/cn/dairy-breakfast/bread-pav/cid/14/953"},
		{"TestID2", "https://www.zeptonow.com/cn/packaged-food/noodles-vermicelli/cid/5736ad99-f589-4d58-a24b-a12222320a37/scid/d5fbe386-0579-4461-b88b-af427ffb31ea"},
	}
	for i, row := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("fill dummy worklist: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save dummy worklist %s: %w", path, err)
	}
	return nil
}
