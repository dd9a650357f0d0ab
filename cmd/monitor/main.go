package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"noveltycam/internal/app"
	"noveltycam/internal/config"
	"noveltycam/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	code := run(cfg, appLogger)
	appLogger.Close()
	os.Exit(code)
}

func run(cfg *config.Config, appLogger *logger.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLogger.Info("Received %s, stopping monitor", sig)
		cancel()
	}()

	application, err := app.NewApp(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to start monitor: %v", err)
		return 1
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		appLogger.Error("Monitor stopped: %v", err)
		return 1
	}
	return 0
}
