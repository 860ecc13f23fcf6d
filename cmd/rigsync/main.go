package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/dougsko/rigsync/pkg/config"
	"github.com/dougsko/rigsync/pkg/logging"
)

var (
	configPath = pflag.StringP("config", "c", config.DefaultConfigPath(), "Configuration file path")
	version    = pflag.BoolP("version", "v", false, "Show version information")
	verbose    = pflag.BoolP("verbose", "V", false, "Log at debug level regardless of configuration")
)

const (
	Version = "0.1.0-dev"
	Build   = "development"
)

func main() {
	pflag.Parse()

	if *version {
		fmt.Printf("rigsync version %s (%s)\n", Version, Build)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.Console = true
	}

	// Initialize logging system
	if err := logging.InitGlobalLogger(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseGlobalLogger()

	gin.SetMode(gin.ReleaseMode)

	logging.Info("main", fmt.Sprintf("rigsync version %s starting...", Version))
	logging.Info("main", fmt.Sprintf("Rig: %s via flrig at %s (%s)", cfg.Wavelog.Identifier, cfg.FlrigURL(), cfg.Flrig.Personality))
	logging.Info("main", fmt.Sprintf("Logbook: %s", cfg.Wavelog.URL))
	logging.Info("main", fmt.Sprintf("QSY server: http://%s", cfg.CATAddress()))

	daemon, err := NewDaemon(cfg)
	if err != nil {
		logging.Error("main", fmt.Sprintf("Failed to create daemon: %v", err))
		os.Exit(1)
	}

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := daemon.Start(); err != nil {
		logging.Error("main", fmt.Sprintf("Failed to start daemon: %v", err))
		os.Exit(1)
	}

	logging.Info("main", "rigsync started successfully")

	// Wait for shutdown signal
	<-sigChan
	logging.Info("main", "Shutting down...")

	if err := daemon.Stop(); err != nil {
		logging.Error("main", fmt.Sprintf("Error during shutdown: %v", err))
	}

	logging.Info("main", "rigsync stopped")
}
