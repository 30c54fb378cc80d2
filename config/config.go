package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shelfgrab/shelfgrab/models"
)

// Config holds all application configuration for one run.
type Config struct {
	Browser BrowserConfig
	Fetch   FetchConfig
	LLM     LLMConfig
	Retry   RetryConfig
	Cache   CacheConfig
	Log     LogConfig

	// Workers bounds the number of work items processed concurrently in
	// batch mode. 1 preserves strict input order.
	Workers int
}

// BrowserConfig controls the rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string
}

// FetchConfig controls per-fetch behavior.
type FetchConfig struct {
	// Timeout is the per-fetch deadline.
	Timeout time.Duration // default: 60s

	// CacheMode controls fetch-cache interaction.
	CacheMode models.CacheMode // default: enabled

	// RespectRobotsTxt is passed through to the fetcher.
	RespectRobotsTxt bool // default: true

	// ExcludedTags are stripped from page HTML before markdown generation.
	ExcludedTags []string // default: header,footer,nav,aside,menu

	// Stealth enables anti-bot evasions in the browser fetcher.
	Stealth bool // default: true
}

// LLMConfig controls the completion client and input chunking.
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible API root.
	BaseURL string // default: "https://openrouter.ai/api/v1"

	// APIKey authenticates completion requests.
	APIKey string

	// Model is the completion model identifier.
	Model string // default: "deepseek/deepseek-r1:free"

	// Temperature for completions.
	Temperature float64 // default: 0

	// MaxTokens caps completion length.
	MaxTokens int // default: 2000

	// ChunkTokenThreshold is the estimated-token size above which page
	// text is split into chunks before submission.
	ChunkTokenThreshold int // default: 1200

	// OverlapRate is the fraction of each chunk repeated at the start of
	// the next one.
	OverlapRate float64 // default: 0.1

	// RequestsPerSecond throttles completion requests.
	RequestsPerSecond float64 // default: 1

	// Burst is the limiter burst size.
	Burst int // default: 1
}

// RetryConfig controls the per-item retry controller.
type RetryConfig struct {
	// MaxAttempts bounds fetch+extract attempts per work item.
	MaxAttempts int // default: 5

	// BaseDelay seeds the exponential backoff schedule.
	BaseDelay time.Duration // default: 5s

	// MaxDelay caps a single backoff wait.
	MaxDelay time.Duration // default: 60s
}

// CacheConfig controls the fetch response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached fetch results.
	MaxEntries int // default: 1000

	// TTL is how long a cached result stays valid.
	TTL time.Duration // default: 1h
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:   envBoolOr("SHELFGRAB_HEADLESS", true),
			NoSandbox:  envBoolOr("SHELFGRAB_NO_SANDBOX", false),
			BrowserBin: os.Getenv("SHELFGRAB_BROWSER_BIN"),
		},
		Fetch: FetchConfig{
			Timeout:          envDurationOr("SHELFGRAB_FETCH_TIMEOUT", 60*time.Second),
			CacheMode:        cacheModeOr("SHELFGRAB_CACHE_MODE", models.CacheEnabled),
			RespectRobotsTxt: envBoolOr("SHELFGRAB_RESPECT_ROBOTS", true),
			ExcludedTags: envSliceOr("SHELFGRAB_EXCLUDED_TAGS", []string{
				"header", "footer", "nav", "aside", "menu",
			}),
			Stealth: envBoolOr("SHELFGRAB_STEALTH", true),
		},
		LLM: LLMConfig{
			BaseURL:             envOr("SHELFGRAB_LLM_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:              os.Getenv("OPENROUTER_KEY"),
			Model:               envOr("SHELFGRAB_LLM_MODEL", "deepseek/deepseek-r1:free"),
			Temperature:         envFloatOr("SHELFGRAB_LLM_TEMPERATURE", 0),
			MaxTokens:           envIntOr("SHELFGRAB_LLM_MAX_TOKENS", 2000),
			ChunkTokenThreshold: envIntOr("SHELFGRAB_LLM_CHUNK_TOKENS", 1200),
			OverlapRate:         envFloatOr("SHELFGRAB_LLM_OVERLAP_RATE", 0.1),
			RequestsPerSecond:   envFloatOr("SHELFGRAB_LLM_RATE_RPS", 1.0),
			Burst:               envIntOr("SHELFGRAB_LLM_RATE_BURST", 1),
		},
		Retry: RetryConfig{
			MaxAttempts: envIntOr("SHELFGRAB_RETRY_MAX_ATTEMPTS", 5),
			BaseDelay:   envDurationOr("SHELFGRAB_RETRY_BASE_DELAY", 5*time.Second),
			MaxDelay:    envDurationOr("SHELFGRAB_RETRY_MAX_DELAY", 60*time.Second),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SHELFGRAB_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("SHELFGRAB_CACHE_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:  envOr("SHELFGRAB_LOG_LEVEL", "info"),
			Format: envOr("SHELFGRAB_LOG_FORMAT", "text"),
		},
		Workers: envIntOr("SHELFGRAB_WORKERS", 1),
	}
}

// FetchOptions assembles the fetcher configuration bag from the loaded config.
func (c *Config) FetchOptions() models.FetchOptions {
	return models.FetchOptions{
		Headless:         c.Browser.Headless,
		CacheMode:        c.Fetch.CacheMode,
		RespectRobotsTxt: c.Fetch.RespectRobotsTxt,
		Timeout:          c.Fetch.Timeout,
		ExcludedTags:     c.Fetch.ExcludedTags,
		Stealth:          c.Fetch.Stealth,
	}
}

func cacheModeOr(key string, fallback models.CacheMode) models.CacheMode {
	switch strings.ToLower(os.Getenv(key)) {
	case "enabled":
		return models.CacheEnabled
	case "bypass":
		return models.CacheBypass
	case "disabled":
		return models.CacheDisabled
	case "smart":
		return models.CacheSmart
	default:
		return fallback
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
