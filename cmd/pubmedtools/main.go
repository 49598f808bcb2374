// Package main is the entry point for the pubmedtools CLI: PubMed retrieval
// through the NCBI E-utilities web API or the local Entrez Direct tools, with
// medline parsing into a seven-column article table.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diogomachado-bioinfo/pubmedtools/internal/secrets"
	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds NCBI credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the pubmedtools CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmedtools",
	Short: "Search and retrieve articles from the PubMed database",
	Long: `pubmedtools searches PubMed and retrieves bibliographic records as a table
with columns pmid, ti, ab, fau, dp, mh, and ot.

Two retrieval paths are available: "search" uses the hosted E-utilities web
API (limited to 10,000 results, paged with a fixed delay between requests)
and "edirect" runs the local NCBI Entrez Direct tools, which stream result
sets of any size. "setup" installs the Entrez Direct tools.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmedtools.yaml or ~/.config/pubmedtools/config.yaml)")
	rootCmd.PersistentFlags().String("email", "", "contact email sent to NCBI")
	rootCmd.PersistentFlags().String("api-key", "", "NCBI API key")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmedtools")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmedtools"))
		}
	}

	viper.SetEnvPrefix("PUBMEDTOOLS")
	viper.AutomaticEnv()

	viper.SetDefault("http.timeout", "60s")
	viper.SetDefault("http.user_agent", "pubmedtools/"+version)
	viper.SetDefault("entrez.batch_size", 1000)
	viper.SetDefault("entrez.fetch_delay", "3s")
	viper.SetDefault("edirect.install_dir", defaultInstallDir())
	viper.SetDefault("store.db_path", filepath.Join("index", "pubmed.db"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "edirect"
	}
	return filepath.Join(home, ".pubmedtools", "edirect")
}

// credentials combines the persistent flags with the secrets directory.
func credentials(cmd *cobra.Command) types.Credentials {
	email, _ := cmd.Flags().GetString("email")
	apiKey, _ := cmd.Flags().GetString("api-key")
	return secrets.Credentials(loadedSecrets, email, apiKey)
}

func httpConfig() types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}
}

func newHTTPClient() *http.Client {
	timeout := viper.GetDuration("http.timeout")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
