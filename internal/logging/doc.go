// Package logging constructs the slog loggers used across filelink.
//
// It maps config values to handler options (console or JSON output, level,
// multiple output paths) and exposes small attr helpers so call sites stay
// terse.
package logging
