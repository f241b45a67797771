// Package config loads, normalizes, and validates filelink configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FILELINK_BOT_TOKEN. The Config type centralizes every knob the daemon and
// CLI need: storage and log directories, the Telegram connection, the HTTP
// server, the permissions file, and the control pipe.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical URLs, and clear validation errors.
package config
