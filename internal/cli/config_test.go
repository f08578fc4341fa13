package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		ServerURL:    "http://myhost:9090",
		PollInterval: 90 * time.Second,
		PollJitter:   5 * time.Second,
		RedisAddr:    "localhost:6379",
		CacheTTL:     time.Minute,
		RateLimitRPS: 2.5,
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(tmp, ".config", "bde", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not found: %v", err)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg != (CLIConfig{}) {
		t.Errorf("expected zero-value config for missing file, got %+v", cfg)
	}
}

func TestConfigLoadDurationStrings(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	dir := filepath.Join(tmp, ".config", "bde")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	data := "server_url: https://bigdealegypt.com\npoll_interval: 2m\npoll_jitter: 10s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 2*time.Minute {
		t.Errorf("poll_interval = %v, want 2m", cfg.PollInterval)
	}
	if cfg.PollJitter != 10*time.Second {
		t.Errorf("poll_jitter = %v, want 10s", cfg.PollJitter)
	}
}

func TestConfigLoadInvalid(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	dir := filepath.Join(tmp, ".config", "bde")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("poll_interval: [nope"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestServerURLFromEnv(t *testing.T) {
	t.Setenv("BDE_SERVER_URL", "http://custom:1234")

	cfg := CLIConfig{ServerURL: "http://from-config"}
	if got := cfg.serverURL(); got != "http://custom:1234" {
		t.Errorf("url = %q, want %q", got, "http://custom:1234")
	}
}

func TestServerURLFromConfig(t *testing.T) {
	t.Setenv("BDE_SERVER_URL", "")

	cfg := CLIConfig{ServerURL: "http://from-config"}
	if got := cfg.serverURL(); got != "http://from-config" {
		t.Errorf("url = %q, want %q", got, "http://from-config")
	}
}

func TestServerURLDefault(t *testing.T) {
	t.Setenv("BDE_SERVER_URL", "")

	if got := (CLIConfig{}).serverURL(); got != "http://localhost:5000" {
		t.Errorf("url = %q, want %q", got, "http://localhost:5000")
	}
}

func TestRedisAddr(t *testing.T) {
	t.Setenv("BDE_REDIS_ADDR", "")
	if got := (CLIConfig{}).redisAddr(); got != "" {
		t.Errorf("redis addr = %q, want empty", got)
	}
	if got := (CLIConfig{RedisAddr: "cache:6379"}).redisAddr(); got != "cache:6379" {
		t.Errorf("redis addr = %q, want cache:6379", got)
	}

	t.Setenv("BDE_REDIS_ADDR", "env:6379")
	if got := (CLIConfig{RedisAddr: "cache:6379"}).redisAddr(); got != "env:6379" {
		t.Errorf("redis addr = %q, want env:6379", got)
	}
}

func TestCacheTTLDefault(t *testing.T) {
	if got := (CLIConfig{}).cacheTTL(); got != 5*time.Minute {
		t.Errorf("cache ttl = %v, want 5m", got)
	}
	if got := (CLIConfig{CacheTTL: 30 * time.Second}).cacheTTL(); got != 30*time.Second {
		t.Errorf("cache ttl = %v, want 30s", got)
	}
}
