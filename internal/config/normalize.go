package config

import (
	"fmt"
	"net"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeServer()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StorageDir, err = expandPath(c.Paths.StorageDir); err != nil {
		return fmt.Errorf("paths.storage_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.PermissionsPath, err = expandPath(c.Paths.PermissionsPath); err != nil {
		return fmt.Errorf("paths.permissions_path: %w", err)
	}
	c.Paths.PipePath = strings.TrimSpace(c.Paths.PipePath)
	if c.Paths.PipePath == "" {
		if value, ok := os.LookupEnv("F2L_PIPE_PATH"); ok {
			c.Paths.PipePath = strings.TrimSpace(value)
		}
	}
	if c.Paths.PipePath == "" {
		c.Paths.PipePath = defaultPipePath
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	if c.Telegram.Token == "" {
		if value, ok := os.LookupEnv("FILELINK_BOT_TOKEN"); ok {
			c.Telegram.Token = strings.TrimSpace(value)
		}
	}
	c.Telegram.APIURL = strings.TrimRight(strings.TrimSpace(c.Telegram.APIURL), "/")
	if c.Telegram.APIURL == "" {
		c.Telegram.APIURL = defaultTelegramAPIURL
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.FileDomain = strings.TrimSpace(c.Server.FileDomain)
	if c.Server.FileDomain == "" {
		c.Server.FileDomain = fmt.Sprintf("http://localhost:%s/files/", bindPort(c.Server.Bind))
	}
	if !strings.HasSuffix(c.Server.FileDomain, "/") {
		c.Server.FileDomain += "/"
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func bindPort(bind string) string {
	if _, port, err := net.SplitHostPort(bind); err == nil && port != "" {
		return port
	}
	return "8080"
}
