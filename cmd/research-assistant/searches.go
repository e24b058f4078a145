// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/recommend"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var searchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "Browse recorded recommendation searches",
}

var searchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded searches, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		results, err := store.GetSearchResults(context.Background())
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(results)
		}
		if len(results) == 0 {
			fmt.Println("No searches recorded.")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%s  %s  %-40q  %d results\n",
				r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.Query, len(r.Results))
		}
		return nil
	},
}

var searchesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print the recommendations of one recorded search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		r, err := store.GetSearchResultByID(context.Background(), args[0])
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(r)
		}
		fmt.Printf("Query: %s\nSource paper: %s\n\n", r.Query, r.PaperID)
		recommend.FormatTable(types.SearchOutcome{Recommendations: r.Results, SearchID: r.ID}, cmd.OutOrStdout())
		return nil
	},
}

func init() {
	searchesListCmd.Flags().Bool("json", false, "output as JSON")
	searchesShowCmd.Flags().Bool("json", false, "output as JSON")
	searchesCmd.AddCommand(searchesListCmd, searchesShowCmd)
	rootCmd.AddCommand(searchesCmd)
}
