package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/webhook"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if cfg.ConfigFile != "" {
		fs, err := config.LoadFile(cfg.ConfigFile)
		if err != nil {
			log.Error("invalid config file", "path", cfg.ConfigFile, "error", err)
			os.Exit(1)
		}
		cfg.Apply(fs)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the optional webhook publisher.
	var (
		publisher pipeline.Publisher
		hook      *webhook.Client
	)
	if cfg.WebhookURL != "" {
		hook = webhook.NewClient(cfg.WebhookURL, cfg.WebhookAPIKey)
		publisher = hook
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, publisher, log)
	orch.Start(ctx)

	if cfg.ConfigFile != "" {
		err := config.WatchFile(ctx, cfg.ConfigFile, log, func(fs config.FileSettings) {
			orch.SetMaxDepth(fs.MaxHeadingDepth)
		})
		if err != nil {
			log.Warn("config file watch disabled", "path", cfg.ConfigFile, "error", err)
		}
	}

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		cancel()

		if hook != nil {
			hook.Close()
		}
	}()

	log.Info("starting docoutline",
		"port", cfg.Port,
		"max_heading_depth", cfg.MaxHeadingDepth,
		"workers", cfg.WorkerCount,
		"webhook", cfg.WebhookURL != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
