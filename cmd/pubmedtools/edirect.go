package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diogomachado-bioinfo/pubmedtools/internal/edirect"
	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

var edirectCmd = &cobra.Command{
	Use:   "edirect <query>",
	Short: "Search PubMed with the local Entrez Direct tools",
	Long: `Edirect runs the local esearch|efetch pipeline and parses its medline
output. The full result set streams in one invocation, with no result-count
ceiling. Requires the Entrez Direct tools; run "pubmedtools setup" first.

Supported on Linux natively and on Windows through WSL.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		cfg := types.EDirectConfig{InstallDir: viper.GetString("edirect.install_dir")}
		runner := edirect.NewRunner(cfg, credentials(cmd))

		articles, err := runner.RunQuery(cmd.Context(), query, os.Stderr)
		if err != nil {
			return fmt.Errorf("edirect search failed: %w", err)
		}

		return writeResults(cmd, query, "edirect", articles)
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install the NCBI Entrez Direct tools",
	Long: `Setup downloads and unpacks the Entrez Direct distribution into the
configured install directory. Running it again with the tools already
present is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.EDirectConfig{InstallDir: viper.GetString("edirect.install_dir")}
		return edirect.EnsureInstalled(newHTTPClient(), cfg, os.Stdout)
	},
}

func init() {
	addOutputFlags(edirectCmd)

	rootCmd.AddCommand(edirectCmd)
	rootCmd.AddCommand(setupCmd)
}
