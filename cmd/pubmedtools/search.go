package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diogomachado-bioinfo/pubmedtools/internal/entrez"
	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search PubMed through the E-utilities web API",
	Long: `Search queries PubMed through the hosted E-utilities API. The result set is
fetched in batches with a fixed delay between requests, per NCBI etiquette.

This path is limited to 10,000 results; larger searches must use the
"edirect" command instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.Join(args, " ")

		cfg := types.EntrezConfig{
			HTTPConfig: httpConfig(),
			BatchSize:  viper.GetInt("entrez.batch_size"),
			FetchDelay: viper.GetDuration("entrez.fetch_delay"),
		}
		if batchSize, _ := cmd.Flags().GetInt("batch-size"); batchSize > 0 {
			cfg.BatchSize = batchSize
		}

		client := entrez.NewClient(newHTTPClient(), credentials(cmd), cfg)

		articles, err := client.Search(cmd.Context(), term, os.Stderr)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		return writeResults(cmd, term, "entrez", articles)
	},
}

func init() {
	searchCmd.Flags().Int("batch-size", 0, "records fetched per request (default from config, 1000)")
	addOutputFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}
