package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filelink/internal/config"
)

func TestDefaultNormalizesAndValidates(t *testing.T) {
	t.Setenv("FILELINK_BOT_TOKEN", "test-token")

	dir := t.TempDir()
	path := filepath.Join(dir, "missing.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatalf("expected config file %s to be reported missing", resolved)
	}
	if cfg.Telegram.Token != "test-token" {
		t.Fatalf("expected token from environment, got %q", cfg.Telegram.Token)
	}
	if cfg.Server.FileDomain != "http://localhost:8080/files/" {
		t.Fatalf("unexpected default file domain: %q", cfg.Server.FileDomain)
	}
	if !filepath.IsAbs(cfg.Paths.StorageDir) {
		t.Fatalf("expected absolute storage dir, got %q", cfg.Paths.StorageDir)
	}
}

func TestPipePathFallsBackToEnvironment(t *testing.T) {
	t.Setenv("FILELINK_BOT_TOKEN", "test-token")
	t.Setenv("F2L_PIPE_PATH", "/tmp/custom.pipe")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.PipePath != "/tmp/custom.pipe" {
		t.Fatalf("expected pipe path from environment, got %q", cfg.Paths.PipePath)
	}
}

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
storage_dir = "` + filepath.Join(dir, "files") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[telegram]
token = "abc123"

[server]
bind = "127.0.0.1:9000"
file_domain = "https://dl.example.com/files"
enable_files_route = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Telegram.Token != "abc123" {
		t.Fatalf("unexpected token: %q", cfg.Telegram.Token)
	}
	if !cfg.Server.EnableFilesRoute {
		t.Fatal("expected files route enabled")
	}
	if cfg.Server.FileDomain != "https://dl.example.com/files/" {
		t.Fatalf("expected trailing slash on file domain, got %q", cfg.Server.FileDomain)
	}
}

func TestValidateRejectsMissingToken(t *testing.T) {
	// Ensure the environment fallback does not mask the failure.
	t.Setenv("FILELINK_BOT_TOKEN", "")

	dir := t.TempDir()
	_, _, _, err := config.Load(filepath.Join(dir, "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing telegram token")
	}
	if !strings.Contains(err.Error(), "telegram.token") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadLogging(t *testing.T) {
	tests := []struct {
		name  string
		mutate func(*config.Config)
	}{
		{"format", func(c *config.Config) { c.Logging.Format = "yaml" }},
		{"level", func(c *config.Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Telegram.Token = "tok"
			cfg.Server.FileDomain = "http://localhost:8080/files/"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[telegram]") {
		t.Fatal("sample config missing telegram section")
	}
}
