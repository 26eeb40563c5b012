package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
)

// send <conversation> <text>: encrypt and store a message.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <conversation> <text>",
		Short: "Encrypt and send a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			msg, err := wire.Messages.Send(cmd.Context(), domain.UserID(userID), domain.ConversationID(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Println("sent", msg.ID)
			return nil
		},
	}
}
