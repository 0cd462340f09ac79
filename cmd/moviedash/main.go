package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinedata/moviedash/internal/app"
	"github.com/cinedata/moviedash/internal/assistant"
	"github.com/cinedata/moviedash/internal/config"
	"github.com/cinedata/moviedash/internal/ingest"
	"github.com/cinedata/moviedash/internal/logger"
	"github.com/cinedata/moviedash/internal/server"
	"github.com/cinedata/moviedash/internal/store"
	"github.com/cinedata/moviedash/internal/util"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger error: %s\n", err)
		return 2
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("store connect failed", "error", util.RedactSecrets(err.Error()))
		return 1
	}

	table, err := store.ResolveTable(ctx, db, cfg.Table)
	if err != nil {
		log.Error("no usable table", "error", err)
		return 1
	}
	cache := store.NewCache(db, table)

	// The assistant is optional equipment: without a key both chat and the
	// vision adapter report disabled instead of failing the whole process.
	var gen assistant.Generator
	var vision ingest.VisionModel
	if cfg.Gemini.APIKey == "" {
		log.Warn("GEMINI_API_KEY not set, assistant and vision ingestion disabled")
		gen = assistant.Disabled{}
		vision = assistant.Disabled{}
	} else {
		client, err := assistant.NewClient(ctx, assistant.Config{
			APIKey:         cfg.Gemini.APIKey,
			Model:          cfg.Gemini.Model,
			BaseURL:        cfg.Gemini.BaseURL,
			RateLimitRPS:   cfg.RateLimitRPS,
			RequestTimeout: cfg.RequestTimeout,
		})
		if err != nil {
			log.Error("assistant client failed", "error", util.RedactSecrets(err.Error()))
			return 1
		}
		gen = client
		vision = client
	}

	a := app.New(log, db, cache, assistant.New(gen, cfg.SampleSize), app.Options{
		RoleOverrides: cfg.RoleCandidates,
		FetchLimit:    cfg.FetchLimit,
	})
	h := server.NewHandlers(a, vision, cfg.RequestTimeout, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "table", table)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
			return 1
		}
		return 0
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		log.Error("server failed", "error", err)
		return 1
	}
}
