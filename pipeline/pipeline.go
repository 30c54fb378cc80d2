// Package pipeline orchestrates the two run modes: the batch article scrape
// over a URL worklist, and the single-URL LLM product extraction.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/shelfgrab/shelfgrab/config"
	"github.com/shelfgrab/shelfgrab/dedupe"
	"github.com/shelfgrab/shelfgrab/export"
	"github.com/shelfgrab/shelfgrab/extract"
	"github.com/shelfgrab/shelfgrab/llm"
	"github.com/shelfgrab/shelfgrab/models"
	"github.com/shelfgrab/shelfgrab/normalize"
	"github.com/shelfgrab/shelfgrab/retry"
	"github.com/shelfgrab/shelfgrab/validate"
)

// Articles runs the batch article pipeline: every work item goes through a
// retry-wrapped fetch + extraction-chain cycle, and the results are written
// as per-item text files.
//
// Failure policy (batch mode): retry exhaustion for one item is recorded as
// that item's failure — the run always completes and reports how many items
// succeeded. Work items are processed by a bounded pool (cfg.Workers); with
// one worker the reference single-threaded order is preserved. Retry state
// is private to each item; only the shared result map is guarded.
func Articles(ctx context.Context, cfg *config.Config, fetcher extract.Fetcher, items []models.WorkItem, outputDir string) error {
	if len(items) == 0 {
		slog.Warn("no URLs loaded, nothing to do")
		return nil
	}
	slog.Info("starting article scrape", "items", len(items), "workers", cfg.Workers)

	chain := extract.NewChain(fetcher)

	var mu sync.Mutex
	results := make(map[string]*models.ArticleRecord, len(items))

	g, gctx := errgroup.WithContext(ctx)
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, item := range items {
		g.Go(func() error {
			rec, ok := scrapeOne(gctx, cfg, chain, item)

			mu.Lock()
			// Duplicate identifiers overwrite earlier results, matching
			// the worklist's map-key semantics.
			if ok {
				results[item.ID] = rec
			} else {
				results[item.ID] = nil
			}
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; per-item failures live in the map.
	_ = g.Wait()

	saver, err := export.NewArticleSaver(outputDir)
	if err != nil {
		return err
	}
	if err := saver.SaveAll(results); err != nil {
		return err
	}

	succeeded := 0
	for _, rec := range results {
		if rec != nil {
			succeeded++
		}
	}
	slog.Info("article scrape completed",
		"succeeded", succeeded,
		"failed", len(results)-succeeded,
		"outputDir", outputDir,
	)
	return nil
}

// scrapeOne runs one item's retry-wrapped fetch+extract cycle. The second
// return value is false when the item failed for good.
func scrapeOne(ctx context.Context, cfg *config.Config, chain *extract.Chain, item models.WorkItem) (*models.ArticleRecord, bool) {
	slog.Info("scraping", "id", item.ID, "url", item.URL)

	var rec models.ArticleRecord
	var matched bool

	ctrl := retry.NewController(cfg.Retry)
	err := ctrl.Do(ctx, func(ctx context.Context) error {
		var runErr error
		rec, matched, runErr = chain.Run(ctx, item.URL)
		return runErr
	})
	if err != nil {
		slog.Error("item failed after retries", "id", item.ID, "url", item.URL, "error", err)
		return nil, false
	}
	if !matched {
		// Extraction came up empty on a successfully fetched page — a
		// per-URL failure, not a retry case.
		slog.Warn("no data extracted", "id", item.ID, "url", item.URL)
		return nil, false
	}
	return &rec, true
}

// ProductsOutput names the files the product pipeline writes.
type ProductsOutput struct {
	CSVPath   string
	ErrorPath string
	DebugPath string // raw LLM responses; empty disables the dump
}

// Products runs the single-URL LLM extraction pipeline: fetch the page,
// submit its markdown to the completion service, then normalize, validate,
// deduplicate, and export the records.
//
// Failure policy (demo mode): retry exhaustion is fatal — the error
// propagates and the process exits non-zero. This is deliberately different
// from batch mode, where a failed item is logged and skipped.
func Products(ctx context.Context, cfg *config.Config, fetcher extract.Fetcher, client *llm.Client, url string, out ProductsOutput) error {
	var responses []string

	ctrl := retry.NewController(cfg.Retry)
	err := ctrl.Do(ctx, func(ctx context.Context) error {
		result, err := fetcher.Fetch(ctx, url, nil)
		if err != nil {
			return err
		}
		if !result.Success {
			return models.NewScrapeError(models.ErrCodeFetchFailed, result.Error, nil)
		}

		markdown := result.MarkdownFiltered
		if markdown == "" {
			markdown = result.MarkdownRaw
		}
		if markdown == "" {
			return models.NewScrapeError(models.ErrCodeNoData, "page produced no markdown content", nil)
		}

		responses, err = client.ExtractProducts(ctx, markdown)
		return err
	})
	if err != nil {
		return fmt.Errorf("product extraction for %s: %w", url, err)
	}

	if out.DebugPath != "" {
		dumpRawResponses(out.DebugPath, responses)
	}

	// Normalize chunk by chunk: one undecodable chunk is logged and
	// skipped, never aborts the batch.
	var candidates []map[string]any
	for i, resp := range responses {
		chunkCandidates, err := normalize.Candidates(resp)
		if err != nil {
			slog.Warn("chunk response not decodable, skipping", "chunk", i, "error", err)
			continue
		}
		candidates = append(candidates, chunkCandidates...)
	}
	slog.Info("normalized candidates", "count", len(candidates))

	res := validate.Batch(candidates)
	slog.Info("validated records", "kept", len(res.Records), "rejected", len(res.Errors))

	if err := export.WriteErrorLog(out.ErrorPath, res.Errors); err != nil {
		return err
	}

	records := dedupe.Records(res.Records)
	if len(records) < len(res.Records) {
		slog.Info("removed duplicate records", "duplicates", len(res.Records)-len(records))
	}

	if err := export.WriteProductsCSV(out.CSVPath, records); err != nil {
		return err
	}
	slog.Info("products exported", "records", len(records), "path", out.CSVPath)
	return nil
}

// dumpRawResponses writes raw completion texts to a debug file, one JSON
// document per chunk. Best effort only.
func dumpRawResponses(path string, responses []string) {
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("cannot write debug output", "path", path, "error", err)
		return
	}
	defer f.Close()
	for i, resp := range responses {
		fmt.Fprintf(f, "// chunk %d\n%s\n", i, resp)
	}
}
