package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"SwingRank/internal/di"
	"SwingRank/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbol := flag.String("symbol", "", "symbol to backtest, e.g. RELIANCE.NS")
	days := flag.Int("days", 200, "trading days to simulate")
	flag.Parse()

	if strings.TrimSpace(*symbol) == "" {
		log.Fatal("-symbol is required")
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	bt, cleanup, err := di.InitializeBacktester(cfg)
	if err != nil {
		log.Fatalf("backtester initialization failed: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := bt.Backtest(ctx, strings.ToUpper(strings.TrimSpace(*symbol)), *days)
	if err != nil {
		log.Printf("backtest failed: %v", err)
		stop()
		cleanup()
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Printf("encode result: %v", err)
	}
}
