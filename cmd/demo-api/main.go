package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopfront/internal/observability"
	"shopfront/internal/stubserver"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting demo storefront backend", slog.String("port", port))

	backend := stubserver.NewServer()

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())

	specPath := os.Getenv("OPENAPI_SPEC")
	if specPath == "" {
		specPath = "api/openapi.yaml"
	}
	validator, err := stubserver.ContractValidator(specPath)
	if err != nil {
		slog.Warn("contract validation disabled",
			slog.String("spec", specPath), slog.String("error", err.Error()))
		r.Mount("/", backend.Router())
	} else {
		slog.Info("contract validation enabled", slog.String("spec", specPath))
		r.With(validator).Mount("/", backend.Router())
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	slog.Info("server stopped gracefully")
}
