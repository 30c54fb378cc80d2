package extract

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shelfgrab/shelfgrab/models"
)

// Fetcher is the page-fetch collaborator the chain drives. When schema is
// non-nil the fetcher applies it and fills FetchResult.StructuredContent.
type Fetcher interface {
	Fetch(ctx context.Context, url string, schema *SelectorSchema) (*models.FetchResult, error)
}

// Chain applies an ordered list of structural extraction strategies to a
// page, falling back to the markdown rendition when none of them match.
// Each strategy reports a uniform (matched, record) outcome; a miss is never
// an error.
type Chain struct {
	fetcher Fetcher
	schemas []*SelectorSchema
}

// NewChain builds a chain over the given fetcher. With no explicit schemas it
// tries the article schema first and the catalog schema second.
func NewChain(fetcher Fetcher, schemas ...*SelectorSchema) *Chain {
	if len(schemas) == 0 {
		schemas = []*SelectorSchema{ArticleSchema, CatalogSchema}
	}
	return &Chain{fetcher: fetcher, schemas: schemas}
}

// Run fetches the URL and walks the strategy chain:
//
//  1. Fetch with each schema in order; the first whose structured content
//     parses to a record with a non-empty title or content wins.
//  2. If every structural strategy misses, fall back to markdown from the
//     last successful fetch: the pruned rendition if present, the raw one
//     otherwise.
//  3. Nothing available at all → matched is false (per-URL failure for the
//     caller to record, never a panic).
//
// Malformed structured JSON is a miss for that strategy, not a fatal error.
// The returned error is non-nil only when every fetch attempt itself failed.
func (c *Chain) Run(ctx context.Context, url string) (models.ArticleRecord, bool, error) {
	var lastResult *models.FetchResult
	var lastErr error

	for _, schema := range c.schemas {
		result, err := c.fetcher.Fetch(ctx, url, schema)
		if err != nil {
			lastErr = err
			slog.Warn("strategy fetch failed", "url", url, "schema", schema.Name, "error", err)
			continue
		}
		if !result.Success {
			lastErr = models.NewScrapeError(models.ErrCodeFetchFailed, result.Error, nil)
			continue
		}
		lastResult = result

		if rec, ok := parseStructured(result.StructuredContent); ok {
			return rec, true, nil
		}
		slog.Debug("structural strategy missed", "url", url, "schema", schema.Name)
	}

	if lastResult == nil {
		if lastErr != nil {
			return models.ArticleRecord{}, false, lastErr
		}
		return models.ArticleRecord{}, false, models.NewScrapeError(
			models.ErrCodeFetchFailed, "no fetch attempt succeeded", nil)
	}

	// Markdown fallback: prefer the pruned rendition.
	content := lastResult.MarkdownFiltered
	if content == "" {
		content = lastResult.MarkdownRaw
	}
	if content == "" {
		slog.Warn("no markdown content available", "url", url)
		return models.ArticleRecord{}, false, nil
	}

	title := lastResult.Title
	if title == "" {
		title = "No Title Found"
	}
	return models.ArticleRecord{Title: title, Content: content}, true, nil
}

// parseStructured interprets a structural strategy's serialized JSON output.
// A JSON object with a non-empty title or content key is accepted directly;
// a non-empty array is reduced to its first element under the same rule.
// Anything else — including malformed JSON — is a miss.
func parseStructured(content string) (models.ArticleRecord, bool) {
	if content == "" {
		return models.ArticleRecord{}, false
	}

	var value any
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		slog.Debug("structured content is not valid JSON", "error", err)
		return models.ArticleRecord{}, false
	}

	switch v := value.(type) {
	case map[string]any:
		return recordFromMap(v)
	case []any:
		if len(v) == 0 {
			return models.ArticleRecord{}, false
		}
		first, ok := v[0].(map[string]any)
		if !ok {
			return models.ArticleRecord{}, false
		}
		return recordFromMap(first)
	default:
		return models.ArticleRecord{}, false
	}
}

func recordFromMap(m map[string]any) (models.ArticleRecord, bool) {
	rec := models.ArticleRecord{
		Title:   stringValue(m["title"]),
		Content: stringValue(m["content"]),
	}
	return rec, !rec.Empty()
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
