package main

import (
	"fmt"
	"strings"

	"evachat/cmd/eva/chat"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sendConversationID string

// sendCmd sends one message and prints the reply. Useful for scripting.
var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send a single message and print Eva's reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, client, err := openStack()
		if err != nil {
			return err
		}
		defer store.Close()

		loggedIn, err := store.LoggedIn()
		if err != nil {
			return err
		}
		if !loggedIn {
			return fmt.Errorf("not signed in, run \"eva login\" first")
		}

		text := strings.Join(args, " ")
		gw := chat.NewGateway(client, nil)

		conv := sendConversationID
		if conv == "" {
			conv, _ = store.ActiveConversation()
		}

		res, err := gw.SendMessage(cmd.Context(), text, conv)
		if err != nil {
			return err
		}
		logger.Info("message sent",
			zap.String("conversation", res.ConversationID),
			zap.String("message", res.MessageID))

		fmt.Println(res.Reply)
		if conv == "" {
			_ = store.SetActiveConversation(res.ConversationID)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendConversationID, "conversation", "c", "", "Conversation id (default: last viewed)")
}
