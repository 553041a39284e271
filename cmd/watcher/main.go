package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/khobor-watch/internal/app"
	"github.com/Adda-Baaj/khobor-watch/internal/config"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "watcher failed: %v\n", err)
		os.Exit(1)
	}
}

// run performs a single watch pass; scheduling is left to cron or similar.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := app.NewWatcher(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize watcher", "error", err.Error())
		return err
	}

	if _, err := watcher.Run(ctx); err != nil {
		log.ErrorObj("watch pass failed", "error", err.Error())
		return fmt.Errorf("watch run: %w", err)
	}
	return nil
}
