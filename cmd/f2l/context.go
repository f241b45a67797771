package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"filelink/internal/config"
)

type commandContext struct {
	pipeFlag   *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(pipeFlag, configFlag *string) *commandContext {
	return &commandContext{
		pipeFlag:   pipeFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// pipePath resolves the control pipe: the flag wins over the config value.
func (c *commandContext) pipePath() (string, error) {
	if c.pipeFlag != nil {
		if flagged := strings.TrimSpace(*c.pipeFlag); flagged != "" {
			return flagged, nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.PipePath, nil
}

// apiBase derives the daemon HTTP API base URL from the bind address. A
// wildcard host is rewritten to loopback.
func (c *commandContext) apiBase() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	host, port, err := net.SplitHostPort(cfg.Server.Bind)
	if err != nil {
		return "", fmt.Errorf("parse bind address %q: %w", cfg.Server.Bind, err)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}

// fetchJSON issues a GET against the daemon API and decodes the response.
func (c *commandContext) fetchJSON(path string, out any) error {
	base, err := c.apiBase()
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(base + path)
	if err != nil {
		return fmt.Errorf("contact daemon at %s (is it running?): %w", base, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %s for %s", resp.Status, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}
