package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fraudpipeline/internal/api"
	"fraudpipeline/internal/archive"
	"fraudpipeline/internal/config"
	"fraudpipeline/internal/evaluator"
	"fraudpipeline/internal/ingestion"
	"fraudpipeline/internal/ratelimit"
	"fraudpipeline/internal/rules"
	"fraudpipeline/internal/scorer"
	"fraudpipeline/internal/store"
	"fraudpipeline/internal/store/redisstore"
	"fraudpipeline/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "configs/fraud.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Logging.JSON {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("starting fraud pipeline",
		"version", "1.0.0-dev",
		"listen", cfg.Listen,
		"environment", cfg.Environment,
		"storage_backend", cfg.Storage.Backend,
	)

	var (
		sessionStore  store.SessionStore
		signalStore   store.SignalStore
		analysisStore store.AnalysisStore
		sqliteArchive *archive.Archive
		redisSessions *redisstore.SessionStore
	)

	switch cfg.Storage.Backend {
	case "sqlite":
		dataDir := filepath.Dir(cfg.Storage.SQLite.Path)
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			slog.Error("failed to create data directory", "error", err, "path", dataDir)
			os.Exit(1)
		}
		sqliteArchive, err = archive.Open(cfg.Storage.SQLite.Path)
		if err != nil {
			slog.Error("failed to open sqlite archive", "error", err)
			os.Exit(1)
		}
		sessionStore, signalStore, analysisStore = sqliteArchive.Sessions, sqliteArchive.Signals, sqliteArchive.Analyses
		slog.Info("using sqlite storage backend", "path", cfg.Storage.SQLite.Path)
	case "redis":
		sessions, signals, analyses, err := redisstore.NewClient(redisstore.Config{
			Addr:      cfg.Storage.Redis.Addr,
			Password:  cfg.Storage.Redis.Password,
			DB:        cfg.Storage.Redis.DB,
			KeyPrefix: cfg.Storage.Redis.KeyPrefix,
			TTL:       cfg.Storage.Redis.TTL,
		})
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		sessionStore, signalStore, analysisStore = sessions, signals, analyses
		redisSessions = sessions
		slog.Info("using redis storage backend", "addr", cfg.Storage.Redis.Addr)
	default:
		sessionStore = store.NewMemorySessionStore()
		signalStore = store.NewMemorySignalStore()
		analysisStore = store.NewMemoryAnalysisStore()
		slog.Info("using in-memory storage backend")
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.MaxRequestsPerMinute)
		slog.Info("rate limiting enabled", "max_per_minute", cfg.RateLimit.MaxRequestsPerMinute)
	}

	var evalOpts []evaluator.Option
	evalOpts = append(evalOpts, evaluator.WithModelVersion(cfg.Evaluator.ModelVersion))
	if cfg.Evaluator.MockScorer {
		evalOpts = append(evalOpts, evaluator.WithScorer(scorer.NewMockScorer(nil)))
		slog.Info("mock ML scorer wired into evaluator")
	}
	eval := evaluator.New(rules.NewEngine(rules.DefaultRules()), evalOpts...)

	var tp *telemetry.Provider
	tp, err = telemetry.NewProvider(telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Exporter:    cfg.Telemetry.Exporter,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		slog.Error("failed to initialize telemetry, continuing without it", "error", err)
		tp, _ = telemetry.NewProvider(telemetry.Config{Enabled: false})
	}

	svc := ingestion.New(sessionStore, signalStore, analysisStore, limiter, eval)
	handlerAPI := api.New(svc, tp, cfg)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      handlerAPI,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // disabled for the WebSocket stream
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("fraud pipeline server starting", "addr", cfg.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("server error", "error", err)
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqliteArchive != nil {
		if err := sqliteArchive.Close(); err != nil {
			slog.Error("sqlite archive close error", "error", err)
		}
	}
	if redisSessions != nil {
		if err := redisSessions.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		slog.Error("telemetry shutdown error", "error", err)
	}

	slog.Info("fraud pipeline stopped")
}
