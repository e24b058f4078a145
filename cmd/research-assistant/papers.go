// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Manage papers saved in the context document",
}

// --- list subcommand ---

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved papers",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		papers, err := store.GetAllPapers(context.Background())
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(papers)
		}
		printPapers(papers)
		return nil
	},
}

// --- search subcommand ---

var papersSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Find saved papers by title, abstract, author, or tag",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		papers, err := store.SearchPapers(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(papers)
		}
		printPapers(papers)
		return nil
	},
}

// --- add subcommand ---

var papersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a paper",
	Long: `Add saves a paper into the context document. --title and at least one
--author are required.`,
	RunE: runPapersAdd,
}

func runPapersAdd(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	authors, _ := cmd.Flags().GetStringSlice("author")
	year, _ := cmd.Flags().GetInt("year")
	url, _ := cmd.Flags().GetString("url")
	abstract, _ := cmd.Flags().GetString("abstract")
	tags, _ := cmd.Flags().GetStringSlice("tag")

	in := types.NewPaper{
		Title:    title,
		Authors:  []types.Author{},
		URL:      url,
		Abstract: abstract,
		Tags:     tags,
	}
	for _, a := range authors {
		in.Authors = append(in.Authors, types.Author{Name: a})
	}
	if cmd.Flags().Changed("year") {
		in.Year = &year
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	p, err := store.AddPaper(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", p.ID)
	return nil
}

// --- delete subcommand ---

var papersDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove a saved paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.DeletePaper(context.Background(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("paper %s not found", args[0])
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	papersListCmd.Flags().Bool("json", false, "output as JSON")
	papersSearchCmd.Flags().Bool("json", false, "output as JSON")

	papersAddCmd.Flags().String("title", "", "paper title")
	papersAddCmd.Flags().StringSlice("author", nil, "author name (repeatable)")
	papersAddCmd.Flags().Int("year", 0, "publication year")
	papersAddCmd.Flags().String("url", "", "paper URL")
	papersAddCmd.Flags().String("abstract", "", "paper abstract")
	papersAddCmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	_ = papersAddCmd.MarkFlagRequired("title")

	papersCmd.AddCommand(papersListCmd, papersSearchCmd, papersAddCmd, papersDeleteCmd)
	rootCmd.AddCommand(papersCmd)
}
