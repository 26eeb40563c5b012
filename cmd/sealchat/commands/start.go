package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
)

// start <peers...>: create an encrypted conversation with the given peers.
func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <peer>...",
		Short: "Start an encrypted conversation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			participants := make([]domain.UserID, len(args))
			for i, a := range args {
				participants[i] = domain.UserID(a)
			}
			conv, err := wire.Conversations.Create(cmd.Context(), domain.UserID(userID), wire.Scope, participants)
			if err != nil {
				return err
			}
			fmt.Println("conversation:", conv.ID)
			return nil
		},
	}
}
