// Package main is the entry point for the supplyfin background worker.
// It moves in-process supplies whose delay end date has passed to not available.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"supplyfin/internal/app"
	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/infrastructure/config"
	"supplyfin/internal/infrastructure/storage/postgres"
	"supplyfin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development || cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Infow("starting supplyfin worker", "sweep_interval", cfg.Worker.SweepInterval.String())

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer rt.Close()

	worker := NewWorker(rt, cfg.Worker.SweepInterval, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic supply sweep.
type Worker struct {
	rt       *app.Runtime
	interval time.Duration
	log      *logger.Logger
}

func NewWorker(rt *app.Runtime, interval time.Duration, log *logger.Logger) *Worker {
	return &Worker{
		rt:       rt,
		interval: interval,
		log:      log.WithComponent("worker"),
	}
}

// Run sweeps once at start and then on every tick until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(10 * time.Minute)
	defer statsTicker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		case <-statsTicker.C:
			if w.rt.Pool != nil {
				postgres.LogPoolStats(ctx, w.rt.Pool)
			}
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	ctx = appctx.WithTrace(ctx, appctx.NewTrace("", "", ""))
	start := time.Now()
	moved, err := w.rt.Services.Supplies.SweepNotAvailable(ctx)
	if err != nil {
		w.log.Errorw("supply sweep failed", "error", err)
		return
	}
	w.log.Debugw("supply sweep completed", "moved", moved, "duration", time.Since(start).String())
}
