package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/nebari-dev/kemal/internal/cliclient"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	fetchMethod   string
	fetchData     string
	fetchHeaders  []string
	fetchParallel int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>...",
	Short: "Send requests with the stored token",
	Long: `Sends one request per URL. Paths starting with "/" are resolved against
the current server; requests to the server carry the X-Token header.
Bodies are printed in argument order.

Examples:
  kemal fetch /whoami
  kemal fetch -X POST -d '{"name":"x"}' -H 'Content-Type: application/json' /items
  kemal fetch /a /b /c`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchMethod, "request", "X", http.MethodGet, "HTTP method")
	fetchCmd.Flags().StringVarP(&fetchData, "data", "d", "", "Request body")
	fetchCmd.Flags().StringArrayVarP(&fetchHeaders, "header", "H", nil, "Extra header as 'Name: value' (repeatable)")
	fetchCmd.Flags().IntVar(&fetchParallel, "parallel", 4, "Maximum concurrent requests")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	env, err := openClient(cfg, "")
	if err != nil {
		return err
	}
	defer env.Close()

	headers, err := parseHeaders(fetchHeaders)
	if err != nil {
		return err
	}
	opts := cliclient.Options{Method: strings.ToUpper(fetchMethod), Headers: headers}
	if fetchData != "" {
		opts.Body = []byte(fetchData)
	}

	responses, err := fetchAll(cmd.Context(), env.client, args, opts, fetchParallel)
	if err != nil {
		return err
	}

	failed := 0
	for i, resp := range responses {
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "==> %s (%d)\n", args[i], resp.StatusCode)
		}
		fmt.Fprint(cmd.OutOrStdout(), resp.Text())
		if !resp.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(responses))
	}
	return nil
}

// fetchAll runs one Fetch per target with at most limit in flight and
// returns the responses in target order. The first transport error
// cancels the rest.
func fetchAll(ctx context.Context, c *cliclient.Client, targets []string, opts cliclient.Options, limit int) ([]*cliclient.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	responses := make([]*cliclient.Response, len(targets))
	for i, target := range targets {
		g.Go(func() error {
			resp, err := c.Fetch(ctx, target, opts)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", target, err)
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}

// parseHeaders turns "Name: value" flags into a header set.
func parseHeaders(lines []string) (http.Header, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	h := make(http.Header)
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: expected 'Name: value'", line)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}
