package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var (
	configFile string
	hostFlag   string
	signInFlag string
	storeFlag  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "kemal",
	Short: "kemal - token login and authenticated requests",
	Long:  `kemal logs in to a sign-in endpoint, keeps the returned token and sends it with requests to the same host.`,
	Example: `  # Log in and call the API with the stored token
  kemal login https://api.example.com -u alice
  kemal fetch /whoami

  # Run a local sign-in server for testing
  kemal serve --users ./users.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./config.yaml or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "Server host (overrides config and the saved server)")
	rootCmd.PersistentFlags().StringVar(&signInFlag, "sign-in-path", "", "Sign-in endpoint path (default: /sign_in)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Token store: sqlite, keyring, memory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddGroup(
		&cobra.Group{ID: "auth", Title: "Auth Commands:"},
		&cobra.Group{ID: "server", Title: "Server Commands:"},
	)

	loginCmd.GroupID = "auth"
	logoutCmd.GroupID = "auth"
	tokenCmd.GroupID = "auth"
	fetchCmd.GroupID = "auth"

	serveCmd.GroupID = "server"

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
