// Command filelinkd runs the filelink daemon in the foreground.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"filelink/internal/config"
	"filelink/internal/daemon"
)

func main() {
	var (
		configPath = flag.String("config", "", "configuration file path")
		logLevel   = flag.String("log-level", "", "override the configured log level")
	)
	flag.Parse()

	cfg, path, exists, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "no config file found, using defaults (looked at %s)\n", path)
	}

	if err := daemon.Run(context.Background(), cfg, daemon.Options{LogLevel: *logLevel}); err != nil &&
		!errors.Is(err, context.Canceled) {
		log.Fatalf("daemon: %v", err)
	}
}
