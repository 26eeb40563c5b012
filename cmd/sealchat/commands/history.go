package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
)

// history <conversation>: fetch and decrypt the message history.
func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <conversation>",
		Short: "Fetch and decrypt a conversation's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			msgs, err := wire.Messages.History(cmd.Context(), domain.UserID(userID), domain.ConversationID(args[0]), limit)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				if m.Undecryptable {
					fmt.Printf("[%s] <message could not be decrypted>\n", m.Sender)
					continue
				}
				fmt.Printf("[%s] %s\n", m.Sender, m.Content)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "max messages to fetch (0 = all)")
	return cmd
}
