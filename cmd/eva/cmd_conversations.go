package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// conversationsCmd lists conversations; its delete subcommand removes one.
var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List your conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, client, err := openStack()
		if err != nil {
			return err
		}
		defer store.Close()

		convs, err := client.ListConversations(cmd.Context())
		if err != nil {
			return err
		}
		if len(convs) == 0 {
			fmt.Println("No conversations yet.")
			return nil
		}
		for _, c := range convs {
			title := c.Title
			if title == "" {
				title = "Untitled"
			}
			fmt.Printf("%s  %-30s  %3d messages  %s\n",
				c.ConversationID, title, c.MessageCount, c.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var deleteConversationCmd = &cobra.Command{
	Use:   "delete [conversation-id]",
	Short: "Delete a conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, client, err := openStack()
		if err != nil {
			return err
		}
		defer store.Close()

		id := args[0]
		ack, err := client.DeleteConversation(cmd.Context(), id)
		if err != nil {
			return err
		}
		// Forget it as the conversation to reopen.
		if active, _ := store.ActiveConversation(); active == id {
			_ = store.SetActiveConversation("")
		}
		logger.Info("conversation deleted", zap.String("id", id))
		if ack.Message != "" {
			fmt.Println(ack.Message)
		} else {
			fmt.Println("Deleted.")
		}
		return nil
	},
}

// healthCmd pings the backend.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, client, err := openStack()
		if err != nil {
			return err
		}
		defer store.Close()

		h, err := client.Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("status: %s\n", h.Status)
		if h.Version != "" {
			fmt.Printf("version: %s\n", h.Version)
		}
		return nil
	},
}

func init() {
	conversationsCmd.AddCommand(deleteConversationCmd)
}
