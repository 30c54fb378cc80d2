package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shelfgrab/shelfgrab/models"
)

// ArticleSaver writes per-item article text files into one output directory.
type ArticleSaver struct {
	dir string
}

// NewArticleSaver creates the output directory (with parents) if needed.
func NewArticleSaver(dir string) (*ArticleSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	return &ArticleSaver{dir: dir}, nil
}

// Save writes one article as "<id>.txt" with a markdown title line followed
// by the body. A nil record means the item failed; a sentinel
// "<id>_error.txt" file is written instead so failed items are visible in
// the output rather than silently missing.
func (s *ArticleSaver) Save(id string, rec *models.ArticleRecord) error {
	if rec == nil {
		path := filepath.Join(s.dir, id+"_error.txt")
		msg := fmt.Sprintf("Failed to scrape content for URL_ID: %s", id)
		if err := os.WriteFile(path, []byte(msg), 0o644); err != nil {
			return fmt.Errorf("write sentinel %s: %w", path, err)
		}
		slog.Warn("saved failure sentinel", "id", id, "path", path)
		return nil
	}

	title := rec.Title
	if title == "" {
		title = "No Title Provided"
	}
	content := rec.Content
	if content == "" {
		content = "No Content Provided"
	}

	path := filepath.Join(s.dir, id+".txt")
	body := fmt.Sprintf("# %s\n\n%s", title, content)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write article %s: %w", path, err)
	}
	slog.Info("article saved", "id", id, "path", path)
	return nil
}

// SaveAll writes every result in the map. Later entries for a repeated
// identifier overwrite earlier files, matching the map-key semantics of the
// worklist.
func (s *ArticleSaver) SaveAll(results map[string]*models.ArticleRecord) error {
	for id, rec := range results {
		if err := s.Save(id, rec); err != nil {
			return err
		}
	}
	return nil
}
