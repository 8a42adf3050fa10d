// Command orato is the main entry point for the Orato speech evaluation
// server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/MrWong99/orato/internal/config"
	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/internal/health"
	"github.com/MrWong99/orato/internal/job"
	"github.com/MrWong99/orato/internal/observe"
	"github.com/MrWong99/orato/internal/server"
	"github.com/MrWong99/orato/internal/store"
	"github.com/MrWong99/orato/pkg/provider/features/native"
	"github.com/MrWong99/orato/pkg/provider/preprocess/wav"
	"github.com/MrWong99/orato/pkg/provider/transcribe/whisper"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "orato: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "orato: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// The level lives in a LevelVar so a config reload can adjust it without
	// rebuilding the handler.
	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.Server.LogLevel.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("orato starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// Scoring profiles are package data; a broken table is a programming
	// error, caught here before any job can run.
	if err := evaluation.ValidateProfiles(); err != nil {
		slog.Error("invalid age group profiles", "err", err)
		return 1
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "orato",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create instruments", "err", err)
		return 1
	}

	// ── Providers ─────────────────────────────────────────────────────────────
	if cfg.Whisper.ModelPath == "" {
		slog.Error("whisper.model_path is required — download a ggml model and point the config at it")
		return 1
	}
	var sttOpts []whisper.Option
	if cfg.Whisper.Language != "" {
		sttOpts = append(sttOpts, whisper.WithLanguage(cfg.Whisper.Language))
	}
	stt, err := whisper.New(cfg.Whisper.ModelPath, sttOpts...)
	if err != nil {
		slog.Error("failed to load whisper model", "path", cfg.Whisper.ModelPath, "err", err)
		return 1
	}
	defer func() {
		if err := stt.Close(); err != nil {
			slog.Warn("whisper close error", "err", err)
		}
	}()
	slog.Info("whisper model loaded", "path", cfg.Whisper.ModelPath, "language", cfg.Whisper.Language)

	pre := wav.New()
	feat := native.New()

	// ── Storage ───────────────────────────────────────────────────────────────
	var (
		archive  store.Store
		checkers []health.Checker
	)
	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			slog.Error("failed to create postgres pool", "err", err)
			return 1
		}
		defer pool.Close()

		pg := store.NewPostgresStore(pool)
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err = pg.Migrate(migrateCtx)
		cancel()
		if err != nil {
			slog.Error("failed to migrate evaluations schema", "err", err)
			return 1
		}
		archive = store.NewGuard(pg)
		checkers = append(checkers, health.Checker{Name: "database", Check: pool.Ping})
		slog.Info("postgres archive enabled")
	} else {
		archive = store.NewMemoryStore()
		slog.Warn("no postgres_dsn configured — archiving evaluations in memory only")
	}
	checkers = append(checkers, health.Checker{
		Name: "whisper_model",
		Check: func(context.Context) error {
			_, err := os.Stat(cfg.Whisper.ModelPath)
			return err
		},
	})

	// ── Pipeline ──────────────────────────────────────────────────────────────
	registry := job.NewRegistry()
	runner, err := job.NewRunner(job.RunnerConfig{
		Registry:       registry,
		Preprocess:     pre,
		Transcribe:     stt,
		Features:       feat,
		Store:          archive,
		Metric:         cfg.Evaluation.MetricConfig(),
		Model:          cfg.Whisper.ModelPath,
		MaxSuggestions: cfg.Evaluation.MaxSuggestions,
		Observe:        metrics,
	})
	if err != nil {
		slog.Error("failed to create job runner", "err", err)
		return 1
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		diff := config.Diff(old, new)
		if diff.LogLevelChanged {
			logLevel.Set(diff.NewLogLevel.SlogLevel())
			slog.Info("log level changed", "level", diff.NewLogLevel)
		}
		if diff.EvaluationChanged {
			runner.Retune(new.Evaluation.MetricConfig(), new.Evaluation.MaxSuggestions)
			slog.Info("evaluation tuning reloaded")
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Registry janitor ──────────────────────────────────────────────────────
	// Finished jobs are trimmed from memory after an hour; the archive keeps
	// the durable record.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := registry.EvictTerminal(time.Hour); n > 0 {
					slog.Debug("evicted finished jobs", "count", n)
				}
			}
		}
	}()

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv, err := server.New(server.Config{
		Addr:           cfg.Server.ListenAddr,
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
		Runner:         runner,
		Registry:       registry,
		Store:          archive,
		Health:         health.New(checkers...),
		Observe:        metrics,
	})
	if err != nil {
		slog.Error("failed to create server", "err", err)
		return 1
	}

	printStartupSummary(cfg)
	slog.Info("server ready — press Ctrl+C to shut down")

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║          Orato — startup summary      ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printLine("Model", cfg.Whisper.ModelPath)
	lang := cfg.Whisper.Language
	if lang == "" {
		lang = "(auto-detect)"
	}
	printLine("Language", lang)
	if cfg.Storage.PostgresDSN != "" {
		printLine("Archive", "postgres")
	} else {
		printLine("Archive", "in-memory")
	}
	printLine("Listen addr", cfg.Server.ListenAddr)
	if mb := cfg.Server.MaxUploadMB; mb > 0 {
		printLine("Upload cap", fmt.Sprintf("%d MiB", mb))
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printLine(label, value string) {
	if len(value) > 19 {
		value = "…" + value[len(value)-18:]
	}
	fmt.Printf("║  %-14s  : %-19s ║\n", label, value)
}
