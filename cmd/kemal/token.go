package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the stored token",
	Long: `Prints the token that requests to the current server would carry in the
X-Token header. Exits with an error when no token is stored.`,
	Args: cobra.NoArgs,
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

		token := env.client.Token()
		if token == "" {
			return fmt.Errorf("not logged in to %s", env.client.Host())
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
