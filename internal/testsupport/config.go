// Package testsupport provides helpers shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drweldonhawaii/rvu-web-app/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.WebBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithBaseURL sets the license-gate base URL on the test config.
func WithBaseURL(url string) ConfigOption {
	return func(c *config.Config) {
		c.NCCI.BaseURL = url
	}
}

// WithPassword sets the web login password on the test config.
func WithPassword(password string) ConfigOption {
	return func(c *config.Config) {
		c.Auth.Password = password
	}
}

// WriteFile writes content beneath the config's data directory and returns
// the absolute path.
func WriteFile(t testing.TB, cfg *config.Config, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.Paths.DataDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
