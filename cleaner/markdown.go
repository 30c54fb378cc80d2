package cleaner

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

// Generator produces the raw and pruned markdown renditions of a page.
// The underlying converter is created once and is goroutine-safe.
type Generator struct {
	conv *converter.Converter
}

// NewGenerator creates a Generator configured for LLM-oriented output:
//
//   - base plugin: strips script, style, iframe, noscript, head, meta, link,
//     input, textarea, HTML comments.
//   - commonmark plugin: standard Markdown rendering.
//   - table plugin: preserves table structure with minimal cell padding,
//     which keeps product grids readable without wasting tokens.
func NewGenerator() *Generator {
	return &Generator{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Markdown converts an HTML fragment to markdown. The sourceURL is used to
// resolve relative links into absolute ones.
func (g *Generator) Markdown(html, sourceURL string) (string, error) {
	return g.conv.ConvertString(html, converter.WithDomain(sourceURL))
}

// Render produces both markdown variants for a page: the raw rendition of the
// full (tag-filtered) HTML, and the pruned rendition with boilerplate blocks
// removed. Pruning failures degrade to the raw variant rather than erroring.
func (g *Generator) Render(rawHTML, sourceURL string, excludedTags []string) (raw, pruned string, err error) {
	filtered := ExcludeTags(rawHTML, excludedTags)

	raw, err = g.Markdown(filtered, sourceURL)
	if err != nil {
		return "", "", err
	}

	prunedHTML, pruneErr := Prune(filtered)
	if pruneErr != nil {
		return raw, raw, nil
	}
	pruned, err = g.Markdown(prunedHTML, sourceURL)
	if err != nil {
		return raw, raw, nil
	}
	return raw, pruned, nil
}

// ExcludeTags removes every occurrence of the given tags (or CSS selectors)
// from the HTML. An empty tag list returns the input unchanged.
func ExcludeTags(html string, tags []string) string {
	if len(tags) == 0 {
		return html
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	for _, selector := range tags {
		doc.Find(selector).Remove()
	}

	result, err := doc.Html()
	if err != nil {
		return html
	}
	return result
}
