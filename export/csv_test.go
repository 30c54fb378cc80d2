package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shelfgrab/shelfgrab/models"
)

func TestWriteProductsCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")

	records := []models.ProductRecord{
		{Title: "Bread 400g", Weight: "400g", Price: "50"},
		{Title: "Milk, full cream", Weight: "1l", Price: "30", Badge: "bestseller", Reviews: "128 ratings"},
	}
	if err := WriteProductsCSV(path, records); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadProductsCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Errorf("round trip lost data:\n got %+v\nwant %+v", got, records)
	}
}

func TestWriteProductsCSV_EmptyBatchStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")

	if err := WriteProductsCSV(path, nil); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want only the header", len(rows))
	}
	if !reflect.DeepEqual(rows[0], models.ProductColumns) {
		t.Errorf("header = %v, want %v", rows[0], models.ProductColumns)
	}
}

func TestWriteProductsCSV_AbsentFieldsAreEmptyNotNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")

	records := []models.ProductRecord{{Title: "Bread", Price: "50"}}
	if err := WriteProductsCSV(path, records); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Bread,,50,,\n"; string(data) != "title,weight,price,badge,reviews\n"+want {
		t.Errorf("file content:\n%s", data)
	}
}

func TestWriteProductsCSV_TruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")

	first := []models.ProductRecord{
		{Title: "A", Price: "1"},
		{Title: "B", Price: "2"},
	}
	if err := WriteProductsCSV(path, first); err != nil {
		t.Fatal(err)
	}

	second := []models.ProductRecord{{Title: "C", Price: "3"}}
	if err := WriteProductsCSV(path, second); err != nil {
		t.Fatal(err)
	}

	got, err := ReadProductsCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Errorf("previous run leaked into the file: %+v", got)
	}
}

func TestReadProductsCSV_RejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte("name,price\nBread,50\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadProductsCSV(path); err == nil {
		t.Error("expected an error for a mismatched header")
	}
}

func TestWriteCatalogCSV_Header(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")

	records := []models.CatalogRecord{
		{Title: "Bread", Weight: "400g", Description: "whole wheat", Discount: "10%", Price: "50"},
	}
	if err := WriteCatalogCSV(path, records); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !reflect.DeepEqual(rows[0], models.CatalogColumns) {
		t.Errorf("header = %v, want %v", rows[0], models.CatalogColumns)
	}
	if rows[1][2] != "whole wheat" || rows[1][3] != "10%" {
		t.Errorf("row = %v", rows[1])
	}
}
