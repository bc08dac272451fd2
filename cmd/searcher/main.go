// job-searcher — ingestion-and-scoring pipeline for job postings.
//
// Scrapes configured listing boards, deduplicates by content fingerprint,
// scores each posting against user criteria, and persists a freshness-bounded
// result set. Exposes three entry points:
//
//	-mode serve    cron-driven full refreshes + health endpoint (default)
//	-mode refresh  one full refresh run, then exit
//	-mode pending  score previously-unscored records, then exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/svensoldin/job-searcher/internal/browser"
	"github.com/svensoldin/job-searcher/internal/config"
	"github.com/svensoldin/job-searcher/internal/db"
	"github.com/svensoldin/job-searcher/internal/extract"
	"github.com/svensoldin/job-searcher/internal/notify"
	"github.com/svensoldin/job-searcher/internal/pipeline"
	"github.com/svensoldin/job-searcher/internal/ratelimit"
	"github.com/svensoldin/job-searcher/internal/runlock"
	"github.com/svensoldin/job-searcher/internal/scheduler"
	"github.com/svensoldin/job-searcher/internal/store"
)

const version = "1.0.0"

const runLockKey = "job-searcher:run-lock"

func main() {
	mode := flag.String("mode", "serve", "serve | refresh | pending")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[searcher] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, cleanup, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("[searcher] Startup error: %v", err)
	}
	defer cleanup()

	switch *mode {
	case "refresh":
		runAndReport(ctx, a, pipeline.ModeFullRefresh)
	case "pending":
		runAndReport(ctx, a, pipeline.ModePendingOnly)
	case "serve":
		serve(ctx, cancel, a, cfg)
	default:
		log.Fatalf("[searcher] Unknown mode %q", *mode)
	}
}

// app holds the long-lived dependencies shared across runs. The browsing
// session is deliberately not here: each run acquires and releases its own.
type app struct {
	cfg    *config.Config
	store  store.Store
	lock   *runlock.Lock
	sink   notify.Sink
	logger *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config) (*app, func(), error) {
	logger := slog.Default()
	cleanup := func() {}

	if cfg.Dev {
		log.Println("[searcher] DEV mode — in-memory store, log-only notifications")
		return &app{
			cfg:    cfg,
			store:  store.NewMemory(),
			sink:   notify.LogSink{Logger: logger},
			logger: logger,
		}, cleanup, nil
	}

	log.Println("[searcher] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, cleanup, fmt.Errorf("postgres: %w", err)
	}

	pg, err := store.NewPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, cleanup, fmt.Errorf("store: %w", err)
	}

	log.Println("[searcher] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, cleanup, fmt.Errorf("redis: %w", err)
	}

	cleanup = func() {
		pool.Close()
		if err := rdb.Close(); err != nil {
			log.Printf("[searcher] Redis close error: %v", err)
		}
	}

	return &app{
		cfg:    cfg,
		store:  pg,
		lock:   runlock.New(rdb, runLockKey, cfg.RunLockTTL),
		sink:   buildSink(cfg, logger),
		logger: logger,
	}, cleanup, nil
}

func buildSink(cfg *config.Config, logger *slog.Logger) notify.Sink {
	emailCfg := notify.EmailConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
		To:   cfg.MailTo,
	}
	if emailCfg.Enabled() {
		return notify.NewEmailSink(emailCfg)
	}
	log.Println("[searcher] SMTP not configured — notifications go to the log")
	return notify.LogSink{Logger: logger}
}

// runOnce executes one pipeline run under the run lock, with a browsing
// session scoped to the run.
func (a *app) runOnce(ctx context.Context, mode pipeline.Mode) (pipeline.Summary, error) {
	if a.lock != nil {
		release, err := a.lock.Acquire(ctx)
		if errors.Is(err, runlock.ErrHeld) {
			a.logger.Warn("skipping run: another run is in progress")
			return pipeline.Summary{}, nil
		}
		if err != nil {
			return pipeline.Summary{}, err
		}
		defer func() {
			if err := release(ctx); err != nil {
				a.logger.Warn("run lock release failed", "err", err)
			}
		}()
	}

	session, err := browser.NewSession(a.cfg.HTTPTimeout)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("browsing session: %w", err)
	}
	defer session.Close()

	orch, err := pipeline.New(pipeline.Options{
		Extractor: extract.New(session, a.logger),
		Store:     a.store,
		Sources:   extract.DefaultSources(),
		Limiter:   ratelimit.NewFixedDelay(a.cfg.FetchDelay),
		Criteria:  a.cfg.Criteria(),
		Params:    a.cfg.SearchParams(),
		Logger:    a.logger,
	})
	if err != nil {
		return pipeline.Summary{}, err
	}

	summary, err := orch.Run(ctx, mode)
	if err != nil {
		return summary, err
	}

	if mode == pipeline.ModeFullRefresh {
		a.notifyTopMatches(ctx)
	}
	return summary, nil
}

// notifyTopMatches delivers the best-scoring postings. Delivery failures are
// logged, never fatal: the run's results are already persisted.
func (a *app) notifyTopMatches(ctx context.Context) {
	top, err := a.store.GetByScoreAtLeast(ctx, a.cfg.NotifyMinScore, a.cfg.NotifyLimit)
	if err != nil {
		a.logger.Warn("load top matches failed", "err", err)
		return
	}
	if len(top) == 0 {
		return
	}
	if err := a.sink.Notify(ctx, top); err != nil {
		a.logger.Warn("notification delivery failed", "err", err)
	}
}

func runAndReport(ctx context.Context, a *app, mode pipeline.Mode) {
	summary, err := a.runOnce(ctx, mode)
	if err != nil {
		log.Fatalf("[searcher] Run failed: %v", err)
	}
	log.Printf("[searcher] Run done — analyzed=%d saved=%d failed=%d",
		summary.Analyzed, summary.Saved, summary.Failed)
}

func serve(ctx context.Context, cancel context.CancelFunc, a *app, cfg *config.Config) {
	sched := scheduler.New(func(ctx context.Context) {
		summary, err := a.runOnce(ctx, pipeline.ModeFullRefresh)
		if err != nil {
			log.Printf("[searcher] Scheduled run failed: %v", err)
			return
		}
		log.Printf("[searcher] Scheduled run done — analyzed=%d saved=%d failed=%d",
			summary.Analyzed, summary.Saved, summary.Failed)
	}, cfg.ScrapeIntervalHours)

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[searcher] Scheduler: %v", err)
	}
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[searcher] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[searcher] HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[searcher] Shutting down…")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[searcher] Shutdown error: %v", err)
	}
	log.Println("[searcher] Stopped.")
}

func (a *app) healthHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.Stats(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "degraded", "error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"service":  "job-searcher",
		"version":  version,
		"postings": stats,
	})
}
