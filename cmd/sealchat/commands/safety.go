package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sealchat/internal/domain"
)

// safety <peer>: print the code both sides compare out-of-band.
func safetyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "safety <peer>",
		Short: "Print the safety code shared with a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(); err != nil {
				return err
			}
			code, err := wire.Identities.SafetyCode(cmd.Context(), domain.UserID(userID), domain.UserID(args[0]), wire.Scope)
			if err != nil {
				return err
			}
			fmt.Printf("Safety code with %s: %s\n", args[0], code)
			return nil
		},
	}
}
