package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nebari-dev/kemal/internal/cliclient"
	"github.com/nebari-dev/kemal/internal/config"
	"github.com/nebari-dev/kemal/internal/cookiestore"
	"github.com/nebari-dev/kemal/internal/logger"
	"github.com/nebari-dev/kemal/internal/session"
	"github.com/nebari-dev/kemal/internal/store"
)

// clientEnv is a configured client plus the resources behind it.
type clientEnv struct {
	cfg    *config.Config
	client *cliclient.Client
	store  *store.Store

	// signInPath is the path the client was built with, after falling back
	// to the saved server.
	signInPath string
}

func (e *clientEnv) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if hostFlag != "" {
		cfg.Client.Host = hostFlag
	}
	if signInFlag != "" {
		cfg.Client.SignInPath = signInFlag
	}
	if storeFlag != "" {
		cfg.Store.Type = storeFlag
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Init(cfg.Log.Format, cfg.Log.Level)
	return cfg, nil
}

// openClient builds a client for host, falling back to the configured and
// then the saved server. Side-channel errors are logged as warnings.
func openClient(cfg *config.Config, host string) (*clientEnv, error) {
	env := &clientEnv{cfg: cfg}

	if cfg.Store.Type == "sqlite" {
		var err error
		if cfg.Store.DataDir != "" {
			env.store, err = store.Open(cfg.Store.DataDir)
		} else {
			env.store, err = store.New()
		}
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
	}

	signInPath := cfg.Client.SignInPath
	if host == "" {
		host = cfg.Client.Host
	}
	if env.store != nil {
		saved, err := env.store.LoadServer()
		if err != nil {
			env.Close()
			return nil, err
		}
		if host == "" {
			host = saved.ServerURL
		}
		sameServer := saved.ServerURL != "" && cliclient.NormalizeHost(host) == cliclient.NormalizeHost(saved.ServerURL)
		if sameServer && signInFlag == "" && saved.SignInPath != "" {
			signInPath = saved.SignInPath
		}
	}
	if host == "" {
		env.Close()
		return nil, fmt.Errorf("no server specified; use --host or run 'kemal login <host>' first")
	}

	sess := session.New()
	sess.OnError(func(err error) {
		slog.Warn("auth warning", "error", err)
	})

	// The jar is keyed by the normalized host so every form of the URL
	// shares one cookie.
	origin := cliclient.NormalizeHost(host)

	opts := []cliclient.Option{
		cliclient.WithSession(sess),
		cliclient.WithMatcher(cliclient.MatcherByName(cfg.Client.Match)),
		cliclient.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Client.Timeout) * time.Second}),
	}
	switch cfg.Store.Type {
	case "sqlite":
		opts = append(opts, cliclient.WithJar(env.store.Jar(origin)))
	case "keyring":
		opts = append(opts, cliclient.WithJar(cookiestore.NewKeyringJar(origin)))
	case "memory":
		opts = append(opts, cliclient.WithJar(cookiestore.NewMemoryJar()))
	}

	env.signInPath = signInPath
	env.client = cliclient.New(host, signInPath, opts...)
	return env, nil
}
