package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Client ClientConfig `mapstructure:"client"`
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// ClientConfig holds the auth client configuration
type ClientConfig struct {
	Host       string `mapstructure:"host"`         // Server the token belongs to, e.g. "https://api.example.com"
	SignInPath string `mapstructure:"sign_in_path"` // Path of the sign-in endpoint
	Timeout    int    `mapstructure:"timeout"`      // Request timeout in seconds
	Match      string `mapstructure:"match"`        // "host_or_relative", "exact" or "prefix"
}

// StoreConfig holds token persistence configuration
type StoreConfig struct {
	Type    string `mapstructure:"type"`     // "sqlite", "keyring" or "memory"
	DataDir string `mapstructure:"data_dir"` // SQLite data directory (optional)
}

// ServerConfig holds the reference sign-in server configuration
type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	JWTSecret  string `mapstructure:"jwt_secret"`   // Secret for signing tokens
	UsersFile  string `mapstructure:"users_file"`   // YAML file of users and bcrypt hashes
	TokenTTL   int    `mapstructure:"token_ttl"`    // Token lifetime in hours
	SignInPath string `mapstructure:"sign_in_path"` // Path the sign-in handler is mounted on
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	return load(viper.New())
}

// LoadFile reads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("client.host", "")
	v.SetDefault("client.sign_in_path", "/sign_in")
	v.SetDefault("client.timeout", 30)
	v.SetDefault("client.match", "host_or_relative")
	v.SetDefault("store.type", "sqlite")
	v.SetDefault("store.data_dir", "")
	v.SetDefault("server.port", 8470)
	v.SetDefault("server.jwt_secret", "change-me-in-production")
	v.SetDefault("server.users_file", "./users.yaml")
	v.SetDefault("server.token_ttl", 24*7)
	v.SetDefault("server.sign_in_path", "/sign_in")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")

	// Read from config file if exists
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "kemal"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	// Environment variables override
	v.SetEnvPrefix("KEMAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "sqlite", "keyring", "memory":
	default:
		return fmt.Errorf("invalid store.type %q: valid types are sqlite, keyring, memory", c.Store.Type)
	}
	switch c.Client.Match {
	case "host_or_relative", "exact", "prefix":
	default:
		return fmt.Errorf("invalid client.match %q: valid policies are host_or_relative, exact, prefix", c.Client.Match)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("invalid client.timeout %d: must not be negative", c.Client.Timeout)
	}
	return nil
}
