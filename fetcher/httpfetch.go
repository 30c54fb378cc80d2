package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"

	"github.com/shelfgrab/shelfgrab/cache"
	"github.com/shelfgrab/shelfgrab/cleaner"
	"github.com/shelfgrab/shelfgrab/extract"
	"github.com/shelfgrab/shelfgrab/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTP fetches pages over plain HTTP with a Chrome TLS fingerprint. It is
// the fast path for static pages and the fetcher used in tests; pages that
// need JavaScript rendering go through Browser instead.
type HTTP struct {
	client *http.Client
	opts   models.FetchOptions
	gen    *cleaner.Generator
	cache  *cache.Cache
}

// NewHTTP creates an HTTP fetcher. Pass a nil client to use one with a
// Chrome-like TLS fingerprint; tests pass httptest clients directly.
func NewHTTP(client *http.Client, opts models.FetchOptions, c *cache.Cache) *HTTP {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				DialTLSContext: dialTLSChrome,
			},
		}
	}
	return &HTTP{client: client, opts: opts, gen: cleaner.NewGenerator(), cache: c}
}

// Fetch retrieves the URL and assembles a FetchResult, applying the selector
// schema when one is given. An HTTP 429 surfaces as a typed rate-limited
// error so the retry controller can schedule backoff.
func (h *HTTP) Fetch(ctx context.Context, url string, schema *extract.SelectorSchema) (*models.FetchResult, error) {
	key := cache.Key(url, schemaName(schema))
	if h.cache != nil && readableMode(h.opts.CacheMode) {
		if cached, ok := h.cache.Get(key); ok {
			return cached, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
	defer cancel()

	page, err := h.get(ctx, url)
	if err != nil {
		result := &models.FetchResult{Success: false, Error: err.Error()}
		return result, err
	}
	if needsBrowser(page) {
		slog.Warn("page looks script-rendered, consider the browser fetcher", "url", url)
	}

	result := &models.FetchResult{Success: true}
	if schema != nil {
		if structured, schemaErr := extract.ApplySchema(page, schema); schemaErr == nil {
			result.StructuredContent = structured
		}
	}
	if raw, pruned, mdErr := h.gen.Render(page, url, h.opts.ExcludedTags); mdErr == nil {
		result.MarkdownRaw = raw
		result.MarkdownFiltered = pruned
	}
	result.Title = cleaner.PageTitle(page, url)

	if h.cache != nil && h.opts.CacheMode != models.CacheDisabled {
		h.cache.Set(key, result)
	}
	return result, nil
}

func (h *HTTP) get(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeFetchFailed, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", models.NewScrapeError(models.ErrCodeRateLimited,
			fmt.Sprintf("HTTP 429 for %s", targetURL), nil)
	}
	if resp.StatusCode >= 400 {
		return "", models.NewScrapeError(models.ErrCodeFetchFailed,
			fmt.Sprintf("HTTP %d for %s", resp.StatusCode, targetURL), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // 10 MB cap
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeFetchFailed, "read body", err)
	}
	return string(body), nil
}

var spaRootRe = regexp.MustCompile(`id="(root|app|__next|___gatsby)"`)

// needsBrowser reports whether a page is likely an empty JavaScript shell:
// a known SPA mount point plus almost no visible text.
func needsBrowser(page string) bool {
	if !spaRootRe.MatchString(page) {
		return false
	}
	return len(strings.Fields(visibleText(page))) < 30
}

// visibleText extracts the text nodes of a document, skipping script and
// style subtrees.
func visibleText(page string) string {
	var sb strings.Builder
	z := html.NewTokenizer(bytes.NewReader([]byte(page)))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style", "noscript":
				if skip > 0 {
					skip--
				}
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
				sb.WriteByte(' ')
			}
		}
	}
}

func readableMode(m models.CacheMode) bool {
	return m == models.CacheEnabled || m == models.CacheSmart
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint so
// TLS-aware bot filters see a regular browser handshake.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := utls.UClient(rawConn, &utls.Config{
		ServerName: host,
	}, utls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
