package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/shelfgrab/shelfgrab/models"
)

// WriteProductsCSV writes validated records to a delimited file with the
// fixed column order title, weight, price, badge, reviews. Absent optional
// fields serialize as empty strings, never the literal "null". The file is
// truncated per run.
func WriteProductsCSV(path string, records []models.ProductRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.ProductColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Title, rec.Weight, rec.Price, rec.Badge, rec.Reviews}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// ReadProductsCSV reads an export file back into records. The header row is
// validated against the fixed column order.
func ReadProductsCSV(path string) ([]models.ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	if len(rows[0]) != len(models.ProductColumns) {
		return nil, fmt.Errorf("%s: unexpected column count %d", path, len(rows[0]))
	}
	for i, col := range models.ProductColumns {
		if rows[0][i] != col {
			return nil, fmt.Errorf("%s: unexpected column %q at position %d", path, rows[0][i], i)
		}
	}

	records := make([]models.ProductRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, models.ProductRecord{
			Title:   row[0],
			Weight:  row[1],
			Price:   row[2],
			Badge:   row[3],
			Reviews: row[4],
		})
	}
	return records, nil
}

// WriteCatalogCSV writes the extended article-variant export with the
// description and discount columns.
func WriteCatalogCSV(path string, records []models.CatalogRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.CatalogColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Title, rec.Weight, rec.Description, rec.Discount, rec.Price, rec.Badge, rec.Reviews}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
