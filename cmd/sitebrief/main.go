package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/sitebrief/api"
	"github.com/use-agent/sitebrief/api/handler"
	"github.com/use-agent/sitebrief/cache"
	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/engine"
	"github.com/use-agent/sitebrief/ocr"
	"github.com/use-agent/sitebrief/progress"
	"github.com/use-agent/sitebrief/reader"
	"github.com/use-agent/sitebrief/scraper"
	"github.com/use-agent/sitebrief/storage"
	"github.com/use-agent/sitebrief/store"
	"github.com/use-agent/sitebrief/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("sitebrief starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"maxSessions", cfg.Browser.MaxSessions,
	)

	// ── 3. Extraction pipeline ──────────────────────────────────────
	tess := ocr.NewTesseract(cfg.OCR)
	if err := tess.Available(); err != nil {
		slog.Warn("OCR step will fail until tesseract is installed", "error", err)
	}
	detector := engine.NewDetector(cfg.Scraper.MinContentLength, cfg.Scraper.ExtraBlockKeywords...)
	chain := engine.NewDefaultChain(detector, tess, reader.New(cfg.Reader), os.TempDir())
	sc := scraper.New(scraper.NewBrowser(cfg.Browser, cfg.Scraper), chain, cfg.Scraper, cfg.Browser.MaxSessions)
	slog.Info("extraction chain ready", "strategies", chain.Strategies())

	// ── 4. Collaborators ────────────────────────────────────────────
	hub := progress.NewHub(cfg.Progress.Retention, cfg.Progress.IdleTimeout)
	defer hub.Stop()

	cc := cache.New(cfg.Cache.MaxEntries)
	defer cc.Stop()

	var recorder handler.Recorder
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		slog.Warn("submission log disabled", "path", cfg.Store.Path, "error", err)
	} else {
		defer db.Close()
		recorder = db
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	router := api.NewRouter(api.Deps{
		Pipeline:  sc,
		Hub:       hub,
		Uploader:  storage.New(cfg.Storage),
		Cache:     cc,
		Recorder:  recorder,
		Notifier:  webhook.NewNotifier(cfg.Webhook.Secret),
		StartTime: time.Now(),
	}, cfg)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Extractions can take minutes; give them a bounded grace period.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("sitebrief stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
