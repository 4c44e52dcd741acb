package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/edufin/internal/api"
	"github.com/dgallion1/edufin/internal/config"
	"github.com/dgallion1/edufin/internal/pipeline"
	"github.com/dgallion1/edufin/internal/registry"
	"github.com/dgallion1/edufin/internal/resolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := resolver.CatalogOrDefault(cfg.CatalogFile)
	if err != nil {
		log.Error("invalid line-item catalog", "path", cfg.CatalogFile, "error", err)
		os.Exit(1)
	}

	filter := registry.Filter{Powiat: cfg.RegistryPowiat, Gmina: cfg.RegistryGmina}
	idx, err := registry.LoadIndex(cfg.RegistryFile, filter, log)
	if err != nil {
		log.Error("registry load failed", "path", cfg.RegistryFile, "error", err)
		os.Exit(1)
	}
	ref := registry.NewRef(idx)

	// Initialize metrics and pipeline.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var orch *pipeline.Orchestrator
	metrics := pipeline.NewMetrics(reg, func() float64 { return float64(orch.QueueDepth()) })
	metrics.SetRegistryEntries(idx.Len())

	orch = pipeline.NewOrchestrator(cfg, ref, catalog, metrics, log)
	orch.Start(ctx)

	// A reload that fails keeps serving the previous index.
	var scheduler *cron.Cron
	if cfg.ReloadEnabled() {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.RegistryReloadCron, func() {
			next, err := registry.LoadIndex(cfg.RegistryFile, filter, log)
			if err != nil {
				log.Error("registry reload failed", "path", cfg.RegistryFile, "error", err)
				return
			}
			ref.Store(next)
			metrics.SetRegistryEntries(next.Len())
		})
		if err != nil {
			log.Error("invalid registry reload schedule", "spec", cfg.RegistryReloadCron, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	// Initialize HTTP server.
	srv := api.NewServer(orch, reg, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		if scheduler != nil {
			<-scheduler.Stop().Done()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
		orch.Stop()
	}()

	log.Info("starting edufin",
		"port", cfg.Port,
		"registry_entries", idx.Len(),
		"catalog_items", len(catalog),
		"workers", cfg.WorkerCount,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}
