// Package server runs the reference sign-in server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nebari-dev/kemal/internal/config"
	"github.com/nebari-dev/kemal/internal/logger"
	"github.com/nebari-dev/kemal/internal/signin"
)

// Config holds the server configuration options.
type Config struct {
	Port       int          // Port to run the server on (0 = use config default)
	UsersFile  string       // Users file (empty = use config default)
	ConfigFile string       // Config file (empty = search the default locations)
	Version    string       // Version string to report
	Listener   net.Listener // Pre-opened listener; overrides Port when set
}

// Run starts the server with the given configuration and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	// Load configuration
	var (
		appCfg *config.Config
		err    error
	)
	if cfg.ConfigFile != "" {
		appCfg, err = config.LoadFile(cfg.ConfigFile)
	} else {
		appCfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override from CLI flags if provided
	if cfg.Port != 0 {
		appCfg.Server.Port = cfg.Port
	}
	if cfg.UsersFile != "" {
		appCfg.Server.UsersFile = cfg.UsersFile
	}

	// Initialize logger
	logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	slog.Info("Starting kemal sign-in server", "version", cfg.Version)

	if !strings.EqualFold(appCfg.Log.Level, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	users, err := signin.LoadUsers(appCfg.Server.UsersFile)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	slog.Info("Users loaded", "count", len(users), "file", appCfg.Server.UsersFile)

	auth := signin.New(signin.Config{
		SignInPath: appCfg.Server.SignInPath,
		JWTSecret:  appCfg.Server.JWTSecret,
		TokenTTL:   time.Duration(appCfg.Server.TokenTTL) * time.Hour,
	}, users)

	ln := cfg.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", fmt.Sprintf(":%d", appCfg.Server.Port))
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
	}

	srv := &http.Server{
		Handler:           auth.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Run server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, cfg)
	}()

	// Wait for signal or error
	select {
	case sig := <-quit:
		slog.Info("Received signal", "signal", sig)
		cancel()
		// Wait for server to finish
		return <-errCh
	case err := <-errCh:
		return err
	}
}
