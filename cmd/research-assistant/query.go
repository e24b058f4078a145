// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/recommend"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Classify a query and fetch recommendations when it is clear",
	Long: `Query runs the combined flow: the query is checked for clarity and, if
it is clear, Semantic Scholar recommendations are fetched and summarized.
Ambiguous queries print the clarification message and suggested options.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	outcome, err := a.orchestrator.HandleQuery(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	switch o := outcome.(type) {
	case recommend.NeedsClarification:
		fmt.Println(o.Message)
		for i, opt := range o.Options {
			fmt.Printf("  %d. %s\n", i+1, opt)
		}
	case recommend.Results:
		if asJSON {
			return recommend.FormatJSON(o.SearchOutcome, os.Stdout)
		}
		recommend.FormatTable(o.SearchOutcome, os.Stdout)
	case recommend.Noop:
		fmt.Fprintln(os.Stderr, "The query was ambiguous but no clarification was produced.")
	}
	return nil
}

var refineCmd = &cobra.Command{
	Use:   "refine [option]",
	Short: "Turn a clarification option into a paper title and recommendations",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRefine,
}

func runRefine(cmd *cobra.Command, args []string) error {
	convContext, _ := cmd.Flags().GetString("context")
	asJSON, _ := cmd.Flags().GetBool("json")
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.refiner.Refine(ctx, strings.Join(args, " "), convContext)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(res)
	}
	fmt.Printf("Refined query: %s\n\n", res.RefinedQuery)
	recommend.FormatTable(types.SearchOutcome{Recommendations: res.Recommendations}, os.Stdout)
	return nil
}

func init() {
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	refineCmd.Flags().String("context", "", "conversation context passed to the refiner")
	refineCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd, refineCmd)
}
