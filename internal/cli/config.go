package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerURL = "http://localhost:5000"
	defaultCacheTTL  = 5 * time.Minute
)

// CLIConfig holds CLI configuration persisted to disk.
type CLIConfig struct {
	ServerURL    string        `yaml:"server_url,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	PollJitter   time.Duration `yaml:"poll_jitter,omitempty"`
	RedisAddr    string        `yaml:"redis_addr,omitempty"`
	CacheTTL     time.Duration `yaml:"cache_ttl,omitempty"`
	RateLimitRPS float64       `yaml:"rate_limit_rps,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "bde", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// saveConfig writes the CLI config to disk.
func saveConfig(cfg CLIConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// serverURL returns the backend URL from env var, config, or default.
func (c CLIConfig) serverURL() string {
	if v := os.Getenv("BDE_SERVER_URL"); v != "" {
		return v
	}
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return defaultServerURL
}

// redisAddr returns the Redis cache address from env var or config. Empty disables the cache.
func (c CLIConfig) redisAddr() string {
	if v := os.Getenv("BDE_REDIS_ADDR"); v != "" {
		return v
	}
	return c.RedisAddr
}

func (c CLIConfig) cacheTTL() time.Duration {
	if c.CacheTTL > 0 {
		return c.CacheTTL
	}
	return defaultCacheTTL
}
