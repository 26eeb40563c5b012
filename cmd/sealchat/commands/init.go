package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			id, err := wire.Identities.GetOrCreate(domain.UserID(userID))
			if err != nil {
				return err
			}
			fmt.Println("Identity ready.")
			fmt.Println("Public key:", id.PublicKeyJWK)
			if wire.Identities.Degraded() {
				fmt.Println("warning: identity store unavailable; keys are in-memory for this session only")
			}
			return nil
		},
	}
}
