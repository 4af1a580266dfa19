package main

import (
	"github.com/nebari-dev/kemal/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort  int
	serveUsers string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a reference sign-in server",
	Long: `Runs a sign-in server that issues signed tokens for the users listed in a
YAML file and serves GET /whoami for requests carrying X-Token.

Examples:
  kemal serve --users ./users.yaml
  kemal serve --port 9000 --users ./users.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.RunWithSignalHandling(server.Config{
			Port:       servePort,
			UsersFile:  serveUsers,
			ConfigFile: configFile,
			Version:    Version,
		})
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveUsers, "users", "", "Users file (overrides config)")
}
