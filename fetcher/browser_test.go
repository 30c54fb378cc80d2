package fetcher

import (
	"testing"
	"time"

	"github.com/shelfgrab/shelfgrab/cache"
	"github.com/shelfgrab/shelfgrab/models"
)

// cacheOnlyBrowser builds a Browser with just the cache plumbing, enough to
// exercise the read/write gates without a live Chrome.
func cacheOnlyBrowser(mode models.CacheMode) *Browser {
	return &Browser{
		opts:  models.FetchOptions{CacheMode: mode},
		cache: cache.New(10, time.Hour),
	}
}

func TestWriteCache_NeverStoresFailures(t *testing.T) {
	modes := []models.CacheMode{
		models.CacheEnabled,
		models.CacheBypass,
		models.CacheSmart,
	}
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			b := cacheOnlyBrowser(mode)
			key := cache.Key("https://example.com/down", "")

			b.writeCache(key, &models.FetchResult{Success: false, Error: "net::ERR_TIMED_OUT"})

			if cached, ok := b.cache.Get(key); ok {
				t.Fatalf("failed result was cached and would be replayed to the retry controller: %+v", cached)
			}
			if _, ok := b.readCache(key); ok {
				t.Fatal("readCache served a failure")
			}
		})
	}
}

func TestWriteCache_StoresSuccesses(t *testing.T) {
	b := cacheOnlyBrowser(models.CacheEnabled)
	key := cache.Key("https://example.com/up", "")

	b.writeCache(key, &models.FetchResult{Success: true, Title: "up"})

	cached, ok := b.readCache(key)
	if !ok {
		t.Fatal("successful result was not cached")
	}
	if cached.Title != "up" {
		t.Errorf("title = %q", cached.Title)
	}
}

func TestWriteCache_DisabledStoresNothing(t *testing.T) {
	b := cacheOnlyBrowser(models.CacheDisabled)
	key := cache.Key("https://example.com/up", "")

	b.writeCache(key, &models.FetchResult{Success: true})

	if _, ok := b.cache.Get(key); ok {
		t.Error("disabled mode stored a result")
	}
}

func TestReadCache_BypassSkipsRead(t *testing.T) {
	b := cacheOnlyBrowser(models.CacheBypass)
	key := cache.Key("https://example.com/up", "")
	b.cache.Set(key, &models.FetchResult{Success: true})

	if _, ok := b.readCache(key); ok {
		t.Error("bypass mode served a cached result")
	}
}
