package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// PageTitle extracts the page title from raw HTML using the Readability
// metadata pass. It is used by the markdown fallback strategy, where no
// structural selector produced a title.
//
// Failures are non-fatal: an empty string is returned and the caller decides
// on a placeholder.
func PageTitle(rawHTML, sourceURL string) string {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, skipping metadata pass",
			"url", sourceURL, "error", err,
		)
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: metadata pass failed",
			"url", sourceURL, "error", err,
		)
		return ""
	}

	return strings.TrimSpace(article.Title)
}
