package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	Long:  `Clears the in-process token and removes the "auth" cookie from the store.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		env, err := openClient(cfg, "")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.client.Logout(); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Logged out of %s\n", env.client.Host())
		return nil
	},
}
