package models

import "time"

// CacheMode controls how a fetch interacts with the response cache. Failed
// fetches are never cached in any mode; only successful results are stored.
type CacheMode int

const (
	// CacheEnabled reads and writes the cache.
	CacheEnabled CacheMode = iota
	// CacheBypass skips the cache read but still stores the fresh result.
	CacheBypass
	// CacheDisabled skips the cache entirely.
	CacheDisabled
	// CacheSmart is accepted from configs and behaves like CacheEnabled.
	CacheSmart
)

func (m CacheMode) String() string {
	switch m {
	case CacheEnabled:
		return "enabled"
	case CacheBypass:
		return "bypass"
	case CacheDisabled:
		return "disabled"
	case CacheSmart:
		return "smart"
	default:
		return "unknown"
	}
}

// FetchOptions is the configuration bag handed to the page fetcher for a
// single run.
type FetchOptions struct {
	// Headless controls whether the browser runs headless.
	Headless bool

	// CacheMode controls fetch-cache interaction.
	CacheMode CacheMode

	// RespectRobotsTxt is plumbed through to the fetcher as-is; policy
	// interpretation is the fetcher's concern.
	RespectRobotsTxt bool

	// Timeout is the deadline for one fetch attempt.
	Timeout time.Duration

	// ExcludedTags are removed from the page HTML before markdown
	// generation (header, footer, nav, ...).
	ExcludedTags []string

	// ScriptBlock is optional JavaScript evaluated after navigation,
	// typically a scroll loop that forces lazy content to load.
	ScriptBlock string

	// WaitCondition is an optional JS expression the fetcher waits on
	// after navigation (e.g. a delay promise).
	WaitCondition string

	// Stealth enables anti-bot-detection evasions in the browser fetcher.
	Stealth bool
}

// FetchResult is the outcome of one page fetch attempt. It is produced once
// and never mutated; the extraction chain consumes it immediately.
type FetchResult struct {
	// Success indicates the page was retrieved and rendered.
	Success bool

	// Error holds the failure description when Success is false.
	Error string

	// StructuredContent is serialized JSON produced by a structural
	// selector schema, when one was applied. Empty when no schema matched.
	StructuredContent string

	// MarkdownFiltered is the pruned markdown rendition of the page, with
	// boilerplate blocks removed.
	MarkdownFiltered string

	// MarkdownRaw is the full markdown rendition of the page.
	MarkdownRaw string

	// Title is the page title, when one could be determined.
	Title string
}
