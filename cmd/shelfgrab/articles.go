package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shelfgrab/shelfgrab/cache"
	"github.com/shelfgrab/shelfgrab/config"
	"github.com/shelfgrab/shelfgrab/fetcher"
	"github.com/shelfgrab/shelfgrab/models"
	"github.com/shelfgrab/shelfgrab/pipeline"
	"github.com/shelfgrab/shelfgrab/worklist"
)

func newArticlesCmd(cfg *config.Config) *cobra.Command {
	var (
		input        string
		output       string
		noCache      bool
		ignoreRobots bool
	)

	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Scrape article content for every URL in an Excel worklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if noCache {
				cfg.Fetch.CacheMode = models.CacheDisabled
			}
			if ignoreRobots {
				cfg.Fetch.RespectRobotsTxt = false
			}

			slog.Info("starting article scraper",
				"input", input,
				"output", output,
				"cacheMode", cfg.Fetch.CacheMode.String(),
				"respectRobots", cfg.Fetch.RespectRobotsTxt,
			)

			if err := worklist.EnsureInput(input); err != nil {
				return err
			}
			items, err := worklist.Load(input)
			if err != nil {
				// Configuration errors end the batch run gracefully
				// with an empty result, not a crash.
				slog.Error("could not load worklist", "error", err)
				return nil
			}

			c := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
			browser, err := fetcher.NewBrowser(cfg.Browser, cfg.FetchOptions(), c)
			if err != nil {
				return err
			}
			defer browser.Close()

			return pipeline.Articles(cmd.Context(), cfg, browser, items, output)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "urls.xlsx", "path to the Excel file containing URLs")
	cmd.Flags().StringVarP(&output, "output", "o", "articles", "directory to save the article text files")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching for all requests")
	cmd.Flags().BoolVar(&ignoreRobots, "ignore-robots", false, "ignore robots.txt restrictions")
	return cmd
}
