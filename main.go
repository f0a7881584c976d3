package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hbomb79/Siphon/internal"
	"github.com/hbomb79/Siphon/pkg/logger"
)

var log = logger.Get("Main")

// main is the entry point to the program. The user's Siphon configuration
// is loaded from their config directory (overridable via flag), merged with
// any environment variables, and used to boot the core.
func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML configuration file")
	flag.Parse()

	config := internal.SiphonConfig{}
	if err := config.LoadFromFile(*configPath); err != nil {
		log.Emit(logger.FATAL, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if config.IsDevelopment() {
		logger.SetMinLoggingLevel(logger.DEBUG.Level())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := internal.New(config).Run(ctx); err != nil {
		log.Emit(logger.FATAL, "Siphon stopped due to error: %v\n", err)
		os.Exit(1)
	}

	log.Emit(logger.STOP, "Siphon stopped\n")
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "siphon.yaml"
	}

	return filepath.Join(dir, "siphon", "config.yaml")
}
