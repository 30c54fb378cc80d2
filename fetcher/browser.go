// Package fetcher retrieves and renders pages, returning the unified
// FetchResult the extraction chain consumes: structured selector output,
// raw and pruned markdown, and the page title.
package fetcher

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/shelfgrab/shelfgrab/cache"
	"github.com/shelfgrab/shelfgrab/cleaner"
	"github.com/shelfgrab/shelfgrab/config"
	"github.com/shelfgrab/shelfgrab/extract"
	"github.com/shelfgrab/shelfgrab/models"
)

// maxPages is the browser tab pool capacity.
const maxPages = 4

// ScrollScript forces lazy-loaded product grids to materialize by scrolling
// the page in steps before the content is read.
const ScrollScript = `
	async () => {
		let scrollCount = 0;
		const maxScrolls = 12;
		const scrollInterval = setInterval(() => {
			window.scrollBy(0, window.innerHeight * 0.8);
			scrollCount++;
			if (scrollCount >= maxScrolls) clearInterval(scrollInterval);
		}, 250);
		await new Promise(r => setTimeout(r, (maxScrolls + 2) * 250));
	}
`

// Browser fetches pages through a headless Chrome instance managed by rod.
// It is safe for concurrent use; tabs are pooled.
type Browser struct {
	browser  *rod.Browser
	pagePool rod.Pool[rod.Page]
	opts     models.FetchOptions
	gen      *cleaner.Generator
	cache    *cache.Cache
}

// NewBrowser launches a headless browser and initialises the tab pool.
func NewBrowser(browserCfg config.BrowserConfig, opts models.FetchOptions, c *cache.Cache) (*Browser, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	return &Browser{
		browser:  browser,
		pagePool: rod.NewPagePool(maxPages),
		opts:     opts,
		gen:      cleaner.NewGenerator(),
		cache:    c,
	}, nil
}

// Fetch renders the URL and assembles a FetchResult. When schema is non-nil
// it is applied to the rendered HTML to fill StructuredContent.
//
// Failures during navigation surface as (result{Success:false}, err) so the
// caller can both inspect and propagate; the result is never nil alongside a
// nil error.
func (b *Browser) Fetch(ctx context.Context, url string, schema *extract.SelectorSchema) (*models.FetchResult, error) {
	key := cache.Key(url, schemaName(schema))
	if cached, ok := b.readCache(key); ok {
		slog.Debug("fetch cache hit", "url", url)
		return cached, nil
	}

	html, title, err := b.render(ctx, url)
	if err != nil {
		return &models.FetchResult{Success: false, Error: err.Error()}, err
	}

	result := b.assemble(url, html, title, schema)
	b.writeCache(key, result)
	return result, nil
}

// render drives the browser: navigate, optional script block and wait
// condition, then read the final HTML and title.
func (b *Browser) render(ctx context.Context, url string) (html, title string, err error) {
	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	page, err := b.pagePool.Get(func() (*rod.Page, error) {
		return b.browser.Page(proto.TargetCreateTarget{})
	})
	if err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to acquire page from pool", err)
	}
	defer func() {
		// about:blank on the original page reference so cleanup works
		// even after the request context expired.
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
		b.pagePool.Put(page)
	}()

	if b.opts.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	p := page.Context(ctx)

	if err := p.Navigate(url); err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeNavigation, "navigation failed", err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeTimeout, "page load wait failed", err)
	}

	if b.opts.ScriptBlock != "" {
		if _, err := p.Eval(b.opts.ScriptBlock); err != nil {
			slog.Warn("script block failed", "url", url, "error", err)
		}
	}
	if b.opts.WaitCondition != "" {
		if _, err := p.Eval(b.opts.WaitCondition); err != nil {
			slog.Warn("wait condition failed", "url", url, "error", err)
		}
	}

	html, err = p.HTML()
	if err != nil {
		return "", "", models.NewScrapeError(models.ErrCodeFetchFailed, "failed to read page HTML", err)
	}

	if info, infoErr := p.Info(); infoErr == nil {
		title = info.Title
	}
	return html, title, nil
}

// assemble post-processes rendered HTML into the unified result: structural
// extraction when a schema is given, then both markdown renditions.
func (b *Browser) assemble(url, html, title string, schema *extract.SelectorSchema) *models.FetchResult {
	result := &models.FetchResult{Success: true, Title: title}

	if schema != nil {
		structured, err := extract.ApplySchema(html, schema)
		if err != nil {
			slog.Warn("structural extraction failed", "url", url, "schema", schema.Name, "error", err)
		} else {
			result.StructuredContent = structured
		}
	}

	raw, pruned, err := b.gen.Render(html, url, b.opts.ExcludedTags)
	if err != nil {
		slog.Warn("markdown generation failed", "url", url, "error", err)
	} else {
		result.MarkdownRaw = raw
		result.MarkdownFiltered = pruned
	}

	if result.Title == "" {
		result.Title = cleaner.PageTitle(html, url)
	}
	return result
}

// readCache honors the configured cache mode on the read side.
func (b *Browser) readCache(key string) (*models.FetchResult, bool) {
	if b.cache == nil {
		return nil, false
	}
	switch b.opts.CacheMode {
	case models.CacheEnabled, models.CacheSmart:
		return b.cache.Get(key)
	default: // bypass and disabled skip the read
		return nil, false
	}
}

// writeCache honors the configured cache mode on the write side. Failed
// results are never stored in any mode: a cached failure would be replayed
// to the retry controller on the next attempt and turn every retry into a
// no-op for the full TTL.
func (b *Browser) writeCache(key string, result *models.FetchResult) {
	if b.cache == nil || !result.Success {
		return
	}
	if b.opts.CacheMode == models.CacheDisabled {
		return
	}
	b.cache.Set(key, result)
}

// Close drains the tab pool and kills the browser process.
func (b *Browser) Close() {
	slog.Info("fetcher shutting down: draining page pool")
	b.pagePool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	b.browser.MustClose()
	slog.Info("fetcher shutdown complete")
}

func schemaName(schema *extract.SelectorSchema) string {
	if schema == nil {
		return ""
	}
	return schema.Name
}
