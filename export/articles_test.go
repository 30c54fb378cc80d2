package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shelfgrab/shelfgrab/models"
)

func TestArticleSaver_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := NewArticleSaver(dir)
	if err != nil {
		t.Fatal(err)
	}

	rec := &models.ArticleRecord{Title: "Fresh Bread Daily", Content: "Body text."}
	if err := s.Save("TestID1", rec); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "TestID1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := "# Fresh Bread Daily\n\nBody text."
	if string(data) != want {
		t.Errorf("file content = %q, want %q", data, want)
	}
}

func TestArticleSaver_SaveNilWritesSentinel(t *testing.T) {
	dir := t.TempDir()
	s, err := NewArticleSaver(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save("TestID2", nil); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "TestID2_error.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "TestID2") {
		t.Errorf("sentinel does not name the failed item: %q", data)
	}
}

func TestArticleSaver_DefaultsForEmptyFields(t *testing.T) {
	dir := t.TempDir()
	s, err := NewArticleSaver(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Save("X", &models.ArticleRecord{}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "X.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "No Title Provided") {
		t.Errorf("missing title default: %q", data)
	}
	if !strings.Contains(string(data), "No Content Provided") {
		t.Errorf("missing content default: %q", data)
	}
}

func TestNewArticleSaver_CreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "articles")
	if _, err := NewArticleSaver(dir); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("output path is not a directory")
	}
}

func TestArticleSaver_SaveAll(t *testing.T) {
	dir := t.TempDir()
	s, err := NewArticleSaver(dir)
	if err != nil {
		t.Fatal(err)
	}

	results := map[string]*models.ArticleRecord{
		"ok":   {Title: "T", Content: "C"},
		"fail": nil,
	}
	if err := s.SaveAll(results); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "ok.txt")); err != nil {
		t.Errorf("missing article file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "fail_error.txt")); err != nil {
		t.Errorf("missing sentinel file: %v", err)
	}
}
