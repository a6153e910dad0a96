package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"scanreceiver/internal/config"
	"scanreceiver/internal/logging"
	"scanreceiver/internal/metrics"
	"scanreceiver/internal/otel"
	"scanreceiver/internal/server"
	"scanreceiver/internal/service"
	"scanreceiver/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Scan Receiver API
// @version 1.0
// @description Authenticated ingestion endpoint for scanned documents.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		loc = time.UTC
	}
	log := logging.New(os.Stdout, loc, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Error("tracing_init_failed", nil, err)
		os.Exit(1)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error("tracing_shutdown_failed", nil, err)
		}
	}()

	if !cfg.Token.IsSet() {
		log.Warn("credential_missing", map[string]any{
			"env":    config.TokenEnvKey,
			"effect": "every request will be answered with 500 until the credential is configured",
		})
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Error("storage_init_failed", map[string]any{"driver": cfg.Storage.Driver}, err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		log.Error("metrics_init_failed", nil, err)
		os.Exit(1)
	}

	scanSvc := service.NewScanService(store, log, m)

	app, err := server.New(server.Deps{
		Config:   cfg,
		Scans:    scanSvc,
		Logger:   log,
		Registry: reg,
		Metrics:  m,
	})
	if err != nil {
		log.Error("server_init_failed", nil, err)
		os.Exit(1)
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()
	log.Info("server_started", map[string]any{
		"addr":           addr,
		"storage_driver": cfg.Storage.Driver,
		"upload_dir":     cfg.Storage.UploadDir,
		"max_body_bytes": cfg.MaxBodyBytes,
	})

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server_failed", map[string]any{"addr": addr}, err)
		}
	case <-ctx.Done():
		log.Info("server_stopping", nil)
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("server_shutdown_failed", nil, err)
		}
	}
}
