// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the chat history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the chat history, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var msgs []types.ChatMessage
		if userID != "" {
			msgs, err = store.GetChatHistoryByUser(context.Background(), userID)
		} else {
			msgs, err = store.GetChatHistory(context.Background())
		}
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(msgs)
		}
		for _, m := range msgs {
			fmt.Printf("[%s] %s (%s): %s\n", m.Timestamp.Format("2006-01-02 15:04:05"), m.Role, m.UserID, m.Content)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every chat message",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ClearChatHistory(context.Background()); err != nil {
			return err
		}
		fmt.Println("Chat history cleared.")
		return nil
	},
}

func init() {
	historyListCmd.Flags().String("user", "", "only show messages from this user id")
	historyListCmd.Flags().Bool("json", false, "output as JSON")
	historyCmd.AddCommand(historyListCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
