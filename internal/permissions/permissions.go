package permissions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"filelink/internal/logging"
)

const loadAttempts = 3

// Config is the decoded permissions file: a global allow_all rule checked
// first, then optional per-chat rules. Absence of both denies.
type Config struct {
	AllowAll Rule            `json:"allow_all"`
	Chats    map[string]Rule `json:"chats"`
}

// DefaultAllowAll is the config written when no permissions file exists yet.
func DefaultAllowAll() *Config {
	return &Config{AllowAll: WildcardRule(), Chats: map[string]Rule{}}
}

// UserHasAccess reports whether the user may use the bot in the given chat.
func (c *Config) UserHasAccess(chatID, userID string) bool {
	if c == nil {
		return false
	}
	if c.AllowAll.Matches(userID) {
		return true
	}
	if rule, ok := c.Chats[chatID]; ok {
		return rule.Matches(userID)
	}
	return false
}

// Load reads and parses the permissions file. When the file is missing, a
// default allow-all config is written first; reading is attempted up to
// three times before giving up.
func Load(path string) (*Config, error) {
	var data []byte
	var err error
	for attempt := 0; attempt < loadAttempts; attempt++ {
		data, err = os.ReadFile(path)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read permissions file: %w", err)
		}
		if writeErr := Save(path, DefaultAllowAll()); writeErr != nil {
			return nil, fmt.Errorf("create initial permissions file: %w", writeErr)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("read permissions file after %d attempts: %w", loadAttempts, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse permissions file: %w", err)
	}
	if cfg.Chats == nil {
		cfg.Chats = map[string]Rule{}
	}
	return &cfg, nil
}

// Save writes the config as indented JSON, creating parent directories.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create permissions directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode permissions: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write permissions file: %w", err)
	}
	return nil
}

// Manager holds the active permissions config and supports live reload from
// the control channel.
type Manager struct {
	path   string
	logger *slog.Logger

	mu  sync.RWMutex
	cfg *Config
}

// NewManager loads the file at path and returns a manager wrapping it.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Manager{
		path:   path,
		logger: logging.NewComponentLogger(logger, "permissions"),
		cfg:    cfg,
	}, nil
}

// UserHasAccess checks the active config.
func (m *Manager) UserHasAccess(chatID, userID string) bool {
	m.mu.RLock()
	cfg := m.cfg
	m.mu.RUnlock()

	allowed := cfg.UserHasAccess(chatID, userID)
	m.logger.Debug("access check",
		logging.String("chat_id", chatID),
		logging.String("user_id", userID),
		logging.Bool("allowed", allowed),
	)
	return allowed
}

// Reload re-reads the permissions file and swaps it in. On failure the
// previous config stays active.
func (m *Manager) Reload() error {
	cfg, err := Load(m.path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	m.logger.Info("permissions reloaded", logging.String("path", m.path))
	return nil
}
