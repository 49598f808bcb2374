package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diogomachado-bioinfo/pubmedtools/internal/export"
	"github.com/diogomachado-bioinfo/pubmedtools/internal/store"
	"github.com/diogomachado-bioinfo/pubmedtools/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect searches saved in the result store",
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.ListSearches()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No saved searches.")
			return nil
		}

		fmt.Printf("%-6s  %-40s  %-8s  %-20s  %s\n", "ID", "Term", "Source", "Created", "Results")
		for _, rec := range records {
			fmt.Printf("%-6d  %-40s  %-8s  %-20s  %d\n",
				rec.ID, rec.Term, rec.Source, rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.ResultCount)
		}
		return nil
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export <search-id>",
	Short: "Export a saved search's articles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid search id %q", args[0])
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		articles, err := s.Articles(id)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return export.FormatJSON(articles, os.Stdout)
		}
		return export.FormatCSV(articles, os.Stdout)
	},
}

func openStore() (*store.Store, error) {
	return store.Open(types.StoreConfig{DBPath: viper.GetString("store.db_path")})
}

func init() {
	storeExportCmd.Flags().Bool("json", false, "export as JSON instead of CSV")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeExportCmd)
	rootCmd.AddCommand(storeCmd)
}
