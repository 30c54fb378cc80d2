package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfgrab/shelfgrab/cache"
	"github.com/shelfgrab/shelfgrab/config"
	"github.com/shelfgrab/shelfgrab/fetcher"
	"github.com/shelfgrab/shelfgrab/llm"
	"github.com/shelfgrab/shelfgrab/models"
	"github.com/shelfgrab/shelfgrab/pipeline"
)

func newProductsCmd(cfg *config.Config) *cobra.Command {
	var (
		url       string
		out       string
		errorsOut string
		debugOut  string
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Extract product records from one category page via LLM and export them as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("no LLM API key configured (set OPENROUTER_KEY)")
			}

			// LLM extraction works on the live page; a cached stale
			// rendition would defeat the scroll-and-wait loading.
			cfg.Fetch.CacheMode = models.CacheBypass
			opts := cfg.FetchOptions()
			opts.ScriptBlock = fetcher.ScrollScript
			opts.WaitCondition = `() => new Promise(r => setTimeout(r, 3000))`

			c := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
			browser, err := fetcher.NewBrowser(cfg.Browser, opts, c)
			if err != nil {
				return err
			}
			defer browser.Close()

			client := llm.NewClient(nil, cfg.LLM)

			return pipeline.Products(cmd.Context(), cfg, browser, client, url, pipeline.ProductsOutput{
				CSVPath:   out,
				ErrorPath: errorsOut,
				DebugPath: debugOut,
			})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "category page URL to extract products from")
	cmd.Flags().StringVar(&out, "out", "products.csv", "path of the CSV export")
	cmd.Flags().StringVar(&errorsOut, "errors", "validation_errors.json", "path of the rejected-record log")
	cmd.Flags().StringVar(&debugOut, "debug-output", "debug_output.json", "path of the raw LLM response dump (empty to disable)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
