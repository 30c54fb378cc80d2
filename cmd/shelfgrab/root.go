package main

import (
	"github.com/spf13/cobra"

	"github.com/shelfgrab/shelfgrab/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "shelfgrab",
		Short: "Extract structured records from dynamically rendered web pages",
		Long: `shelfgrab scrapes dynamically rendered pages through a layered strategy:
structural CSS extraction first, LLM-based extraction as fallback, then
normalization, validation, deduplication, and CSV export.`,
		SilenceUsage: true,
	}

	root.AddCommand(newArticlesCmd(cfg))
	root.AddCommand(newProductsCmd(cfg))
	return root
}
