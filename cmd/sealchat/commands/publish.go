package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
)

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish your public key to the shared directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			if err := wire.Identities.Publish(cmd.Context(), domain.UserID(userID), wire.Scope); err != nil {
				return err
			}
			fmt.Println("published")
			return nil
		},
	}
}
