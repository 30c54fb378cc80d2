package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shelfgrab/shelfgrab/config"
	"github.com/shelfgrab/shelfgrab/export"
	"github.com/shelfgrab/shelfgrab/extract"
	"github.com/shelfgrab/shelfgrab/llm"
	"github.com/shelfgrab/shelfgrab/models"
)

// stubFetcher serves canned results per URL; URLs in failURLs always error.
type stubFetcher struct {
	results  map[string]*models.FetchResult
	failURLs map[string]bool
}

func (s *stubFetcher) Fetch(ctx context.Context, url string, schema *extract.SelectorSchema) (*models.FetchResult, error) {
	if s.failURLs[url] {
		return nil, errors.New("connection refused")
	}
	if r, ok := s.results[url]; ok {
		return r, nil
	}
	return &models.FetchResult{Success: true}, nil
}

func testPipelineConfig() *config.Config {
	return &config.Config{
		Retry: config.RetryConfig{
			MaxAttempts: 2,
			BaseDelay:   time.Millisecond,
			MaxDelay:    2 * time.Millisecond,
		},
		Workers: 2,
	}
}

func TestArticles_MixedSuccessAndFailure(t *testing.T) {
	dir := t.TempDir()
	f := &stubFetcher{
		results: map[string]*models.FetchResult{
			"https://example.com/good": {
				Success:          true,
				MarkdownFiltered: "article body",
				Title:            "Good Page",
			},
		},
		failURLs: map[string]bool{"https://example.com/down": true},
	}

	items := []models.WorkItem{
		{ID: "OK", URL: "https://example.com/good"},
		{ID: "DOWN", URL: "https://example.com/down"},
	}
	if err := Articles(context.Background(), testPipelineConfig(), f, items, dir); err != nil {
		t.Fatalf("batch mode must complete despite per-item failures: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "OK.txt"))
	if err != nil {
		t.Fatalf("missing article file: %v", err)
	}
	if !strings.Contains(string(data), "article body") {
		t.Errorf("article content = %q", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "DOWN_error.txt")); err != nil {
		t.Errorf("missing failure sentinel: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "DOWN.txt")); err == nil {
		t.Error("failed item also produced an article file")
	}
}

func TestArticles_EmptyWorklist(t *testing.T) {
	if err := Articles(context.Background(), testPipelineConfig(), &stubFetcher{}, nil, t.TempDir()); err != nil {
		t.Errorf("empty worklist must be a no-op, got %v", err)
	}
}

func TestArticles_UnmatchedPageIsSentinelNotRetry(t *testing.T) {
	dir := t.TempDir()
	// Fetch succeeds but the page has neither structure nor markdown.
	f := &stubFetcher{results: map[string]*models.FetchResult{
		"https://example.com/empty": {Success: true},
	}}

	items := []models.WorkItem{{ID: "EMPTY", URL: "https://example.com/empty"}}
	if err := Articles(context.Background(), testPipelineConfig(), f, items, dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "EMPTY_error.txt")); err != nil {
		t.Errorf("missing failure sentinel: %v", err)
	}
}

func newCompletionServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
}

func testLLMConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		BaseURL:             baseURL,
		APIKey:              "test-key",
		Model:               "test-model",
		ChunkTokenThreshold: 100000,
		OverlapRate:         0.1,
		RequestsPerSecond:   1000,
		Burst:               100,
	}
}

func TestProducts_EndToEnd(t *testing.T) {
	srv := newCompletionServer(t, `{"choices": [{"message": {"content": "[{\"title\": \"Bread 400g\", \"price\": \"₹50\"}, {\"title\": \"Bread 400g\", \"price\": \"₹50\"}]"}}]}`)
	defer srv.Close()

	cfg := testPipelineConfig()
	cfg.LLM = testLLMConfig(srv.URL)
	client := llm.NewClient(srv.Client(), cfg.LLM)

	f := &stubFetcher{results: map[string]*models.FetchResult{
		"https://example.com/catalog": {
			Success:          true,
			MarkdownFiltered: "Bread 400g ₹50",
		},
	}}

	dir := t.TempDir()
	out := ProductsOutput{
		CSVPath:   filepath.Join(dir, "products.csv"),
		ErrorPath: filepath.Join(dir, "errors.json"),
	}
	if err := Products(context.Background(), cfg, f, client, "https://example.com/catalog", out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := export.ReadProductsCSV(out.CSVPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 after dedup: %+v", len(records), records)
	}
	want := models.ProductRecord{Title: "Bread 400g", Weight: "400g", Price: "50"}
	if records[0] != want {
		t.Errorf("record = %+v, want %+v", records[0], want)
	}

	entries, err := export.ReadErrorLog(out.ErrorPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("unexpected validation errors: %+v", entries)
	}
}

func TestProducts_FetchExhaustionIsFatal(t *testing.T) {
	srv := newCompletionServer(t, `{"choices": []}`)
	defer srv.Close()

	cfg := testPipelineConfig()
	cfg.LLM = testLLMConfig(srv.URL)
	client := llm.NewClient(srv.Client(), cfg.LLM)

	f := &stubFetcher{failURLs: map[string]bool{"https://example.com/down": true}}

	dir := t.TempDir()
	out := ProductsOutput{
		CSVPath:   filepath.Join(dir, "products.csv"),
		ErrorPath: filepath.Join(dir, "errors.json"),
	}
	err := Products(context.Background(), cfg, f, client, "https://example.com/down", out)
	if err == nil {
		t.Fatal("demo mode must propagate retry exhaustion")
	}
	if _, statErr := os.Stat(out.CSVPath); statErr == nil {
		t.Error("no CSV should be written on a fatal failure")
	}
}

func TestProducts_UndecodableChunkIsSkipped(t *testing.T) {
	srv := newCompletionServer(t, `{"choices": [{"message": {"content": "sorry, no products found"}}]}`)
	defer srv.Close()

	cfg := testPipelineConfig()
	cfg.LLM = testLLMConfig(srv.URL)
	client := llm.NewClient(srv.Client(), cfg.LLM)

	f := &stubFetcher{results: map[string]*models.FetchResult{
		"https://example.com/catalog": {Success: true, MarkdownRaw: "some content"},
	}}

	dir := t.TempDir()
	out := ProductsOutput{
		CSVPath:   filepath.Join(dir, "products.csv"),
		ErrorPath: filepath.Join(dir, "errors.json"),
	}
	if err := Products(context.Background(), cfg, f, client, "https://example.com/catalog", out); err != nil {
		t.Fatalf("an undecodable chunk must not abort the run: %v", err)
	}

	records, err := export.ReadProductsCSV(out.CSVPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from garbage output", len(records))
	}
}

func TestProducts_DebugDump(t *testing.T) {
	srv := newCompletionServer(t, `{"choices": [{"message": {"content": "[]"}}]}`)
	defer srv.Close()

	cfg := testPipelineConfig()
	cfg.LLM = testLLMConfig(srv.URL)
	client := llm.NewClient(srv.Client(), cfg.LLM)

	f := &stubFetcher{results: map[string]*models.FetchResult{
		"https://example.com/catalog": {Success: true, MarkdownRaw: "content"},
	}}

	dir := t.TempDir()
	out := ProductsOutput{
		CSVPath:   filepath.Join(dir, "products.csv"),
		ErrorPath: filepath.Join(dir, "errors.json"),
		DebugPath: filepath.Join(dir, "debug.json"),
	}
	if err := Products(context.Background(), cfg, f, client, "https://example.com/catalog", out); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out.DebugPath); err != nil {
		t.Errorf("missing debug dump: %v", err)
	}
}
