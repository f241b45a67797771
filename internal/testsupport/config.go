// Package testsupport provides shared helpers for package tests: temp-dir
// backed configurations and a scripted transport client.
package testsupport

import (
	"path/filepath"
	"testing"

	"filelink/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Telegram.Token = "test-token"
	cfg.Paths.StorageDir = filepath.Join(base, "files")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.PermissionsPath = filepath.Join(base, "permissions.json")
	cfg.Paths.PipePath = filepath.Join(base, "filelink.pipe")
	cfg.Server.Bind = "127.0.0.1:0"
	cfg.Server.FileDomain = "http://files.test/"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithFileDomain overrides the public file domain on the test config.
func WithFileDomain(domain string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Server.FileDomain = domain
	}
}

// WithStorageDir overrides the storage directory on the test config.
func WithStorageDir(dir string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.StorageDir = dir
	}
}
