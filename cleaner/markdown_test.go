package cleaner

import (
	"strings"
	"testing"
)

func TestGenerator_Markdown(t *testing.T) {
	g := NewGenerator()

	md, err := g.Markdown(`<h1>Bakery</h1><p>Bread 400g at <strong>₹50</strong></p>`, "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "Bakery") {
		t.Errorf("heading lost: %q", md)
	}
	if !strings.Contains(md, "**₹50**") {
		t.Errorf("emphasis lost: %q", md)
	}
}

func TestGenerator_MarkdownResolvesRelativeLinks(t *testing.T) {
	g := NewGenerator()

	md, err := g.Markdown(`<a href="/cn/bread">Bread</a>`, "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "https://example.com/cn/bread") {
		t.Errorf("relative link not resolved: %q", md)
	}
}

func TestGenerator_MarkdownStripsScripts(t *testing.T) {
	g := NewGenerator()

	md, err := g.Markdown(`<p>visible</p><script>window.x = 1</script>`, "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(md, "window.x") {
		t.Errorf("script content leaked into markdown: %q", md)
	}
	if !strings.Contains(md, "visible") {
		t.Errorf("text lost: %q", md)
	}
}

func TestGenerator_RenderProducesBothVariants(t *testing.T) {
	g := NewGenerator()

	raw, pruned, err := g.Render(boilerplatePage, "https://example.com", []string{"header"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(raw, "Bread 400g") {
		t.Errorf("raw rendition lost content:\n%s", raw)
	}
	if !strings.Contains(pruned, "Bread 400g") {
		t.Errorf("pruned rendition lost content:\n%s", pruned)
	}
	// The nav links survive only in the raw rendition.
	if !strings.Contains(raw, "Deals") {
		t.Errorf("raw rendition should keep navigation:\n%s", raw)
	}
	if strings.Contains(pruned, "Deals") {
		t.Errorf("pruned rendition should drop navigation:\n%s", pruned)
	}
}

func TestGenerator_RenderAppliesExcludedTags(t *testing.T) {
	g := NewGenerator()

	page := `<html><body><footer>excluded text</footer><article class="content">
	<p>Bread 400g at fifty rupees, restocked every morning from local ovens
	with whole wheat options available all day.</p></article></body></html>`

	raw, pruned, err := g.Render(page, "https://example.com", []string{"footer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(raw, "excluded text") || strings.Contains(pruned, "excluded text") {
		t.Error("excluded tag content survived in a rendition")
	}
}

func TestPageTitle(t *testing.T) {
	page := `<html><head><title>Fresh Bread Daily - Example Bakery</title></head>
	<body><p>Bread 400g at fifty rupees, restocked every morning from local
	ovens with whole wheat options available all day.</p></body></html>`

	title := PageTitle(page, "https://example.com/bread")
	if !strings.Contains(title, "Fresh Bread Daily") {
		t.Errorf("title = %q", title)
	}
}

func TestPageTitle_InvalidURLIsEmpty(t *testing.T) {
	if got := PageTitle("<html></html>", "://not a url"); got != "" {
		t.Errorf("got %q, want empty for an unparseable URL", got)
	}
}
