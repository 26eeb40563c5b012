package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sealchat/internal/app"
)

var (
	home       string
	backendURL string
	scope      string
	passphrase string
	userID     string

	wire *app.Wire
)

// Execute builds the root command and runs it.
func Execute() error {
	root := &cobra.Command{
		Use:   "sealchat",
		Short: "End-to-end encrypted chat client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A .env file supplies defaults; flags win.
			_ = godotenv.Load()
			if backendURL == "" {
				backendURL = os.Getenv("SEALCHAT_BACKEND_URL")
			}
			if scope == "" {
				scope = os.Getenv("SEALCHAT_SCOPE")
			}
			if home == "" {
				home = os.Getenv("SEALCHAT_HOME")
			}
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".sealchat")
			}
			if backendURL == "" {
				return fmt.Errorf("backend URL required (--backend or SEALCHAT_BACKEND_URL)")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			var err error
			wire, err = app.NewWire(app.Config{
				Home:       home,
				BackendURL: backendURL,
				Scope:      scope,
				Passphrase: passphrase,
			})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.sealchat)")
	root.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL")
	root.PersistentFlags().StringVar(&scope, "scope", "", "directory scope")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting identity keys")
	root.PersistentFlags().StringVarP(&userID, "user", "u", "", "your user id")

	root.AddCommand(initCmd(), publishCmd(), safetyCmd(), startCmd(), addCmd(), sendCmd(), historyCmd())
	return root.Execute()
}

func requireUser() error {
	if userID == "" {
		return fmt.Errorf("--user required")
	}
	return nil
}
