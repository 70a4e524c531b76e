package main

import (
	"flag"
	"log"
	"os"

	"SwingRank/internal/di"
	"SwingRank/pkg/config"
	"SwingRank/pkg/server"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	mode := flag.String("mode", server.ModeRun, "run (single ranking run), serve (HTTP API) or sync (copy bars to ClickHouse)")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s mode=%s provider=%s", cfg.Environment, *mode, cfg.MarketData.Provider)

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	err = app.Run(*mode)
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
