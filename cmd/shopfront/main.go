package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"shopfront/internal/cli"
	"shopfront/internal/config"
	"shopfront/internal/observability"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.LogLevel, cfg.LogFormat)

	slog.Info("starting storefront shell",
		slog.String("api", cfg.APIBaseURL),
		slog.String("session_file", cfg.SessionFile))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("shutting down")
		cancel()
	}()

	runner := cli.NewRunner(cfg, os.Stdout)
	runner.Start(ctx)

	if err := runner.Run(ctx, os.Stdin); err != nil {
		slog.Error("input error", slog.String("error", err.Error()))
	}

	runner.Close()
	slog.Info("bye")
}
