package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
)

// add <conversation> <peer>: wrap the conversation key for a new member.
func addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <conversation> <peer>",
		Short: "Add a participant to an existing conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			err := wire.Conversations.AddParticipant(cmd.Context(), domain.UserID(userID), domain.ConversationID(args[0]), domain.UserID(args[1]))
			if err != nil {
				return err
			}
			fmt.Println("added", args[1])
			return nil
		},
	}
}
