package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nebari-dev/kemal/internal/cliclient"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUser          string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login [server-url]",
	Short: "Log in to a sign-in endpoint",
	Long: `Sends the username and password to the sign-in endpoint and stores the
returned token in the "auth" cookie of the configured store.

Examples:
  kemal login https://api.example.com
  kemal login https://api.example.com -u alice
  echo "$PASSWORD" | kemal login https://api.example.com -u alice --password-stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "username", "u", "", "Username (prompted when empty)")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "Read the password from stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var host string
	if len(args) == 1 {
		host = strings.TrimRight(args[0], "/")
		if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
			return fmt.Errorf("server URL must start with http:// or https://")
		}
	}

	env, err := openClient(cfg, host)
	if err != nil {
		return err
	}
	defer env.Close()

	user := loginUser
	if user == "" && !loginPasswordStdin {
		fmt.Fprint(os.Stderr, "Username: ")
		if _, err := fmt.Scanln(&user); err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
	}

	password, err := readPassword(os.Stdin, loginPasswordStdin)
	if err != nil {
		return err
	}

	token, err := env.client.Login(context.Background(), user, password)
	if err != nil {
		var failed *cliclient.FailedLoginError
		switch {
		case cliclient.IsNoCredentials(err):
			return fmt.Errorf("login failed: a username or password is required")
		case errors.As(err, &failed) && failed.StatusCode != 0:
			return fmt.Errorf("login failed (HTTP %d): %w", failed.StatusCode, err)
		default:
			return fmt.Errorf("login failed: %w", err)
		}
	}
	if token == "" {
		return fmt.Errorf("login to %s did not complete", env.client.SignInURL())
	}

	if err := saveLogin(env, user); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Logged in to %s as %s\n", env.client.Host(), user)
	return nil
}

// readPassword reads one line from r when fromStdin is set, otherwise it
// prompts on the terminal without echo.
func readPassword(r io.Reader, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(passBytes), nil
}

// saveLogin records the server and the sign-in path the client used, so
// later commands and a bare "kemal login" reach the same endpoint.
func saveLogin(env *clientEnv, user string) error {
	if env.store == nil {
		return nil
	}
	return env.store.SaveServer(strings.TrimRight(env.client.Host(), "/"), env.signInPath, user)
}
