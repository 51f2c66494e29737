// Package main is the entry point of the interactive roll-call tool.
//
// The tool keeps a roster of students and calls on them at random without
// repetition until everyone in the cycle has been called. The session lives
// in memory; PostgreSQL and Redis mirrors are optional.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/rollcall/config"

	// Application layer
	"github.com/alem-hub/rollcall/internal/application/command"
	"github.com/alem-hub/rollcall/internal/application/eventhandler"
	"github.com/alem-hub/rollcall/internal/application/query"

	// Domain layer
	"github.com/alem-hub/rollcall/internal/domain/pool"
	"github.com/alem-hub/rollcall/internal/domain/rollcall"

	// Infrastructure layer
	"github.com/alem-hub/rollcall/internal/infrastructure/export"
	"github.com/alem-hub/rollcall/internal/infrastructure/importer"
	"github.com/alem-hub/rollcall/internal/infrastructure/messaging"
	"github.com/alem-hub/rollcall/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/rollcall/internal/infrastructure/persistence/redis"

	// Interface layer
	"github.com/alem-hub/rollcall/internal/interface/console"

	// Packages
	"github.com/alem-hub/rollcall/pkg/retry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting rollcall",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		if err := bus.Close(); err != nil {
			log.Warn("failed to close event bus", "error", err)
		}
		if m := bus.Metrics(); m != nil {
			s := m.Snapshot()
			log.Debug("event bus stats", "published", s.Published, "failed", s.Failed)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. SESSION
	// ─────────────────────────────────────────────────────────────────────────
	var engineOpts []pool.Option
	if cfg.Roster.Seed != 0 {
		engineOpts = append(engineOpts, pool.WithSeed(cfg.Roster.Seed))
		log.Info("using fixed shuffle seed", "seed", cfg.Roster.Seed)
	}
	session := rollcall.NewSession(rollcall.WithEngine(pool.NewEngine(engineOpts...)))

	// Mirrors store this run under one ID.
	sessionID := uuid.NewString()
	var board *redis.CallBoard

	// ─────────────────────────────────────────────────────────────────────────
	// 5. POSTGRESQL ARCHIVE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.Enabled {
		conn, err := connectDatabase(ctx, cfg, log)
		if err != nil {
			log.Warn("archive disabled", "error", err)
		} else {
			defer conn.Close()

			archive := postgres.NewArchiveRepository(conn, sessionID)
			mirror := eventhandler.NewArchiveMirror(archive, session, cfg.Database.QueryTimeout, log)
			if err := mirror.Register(bus); err != nil {
				return fmt.Errorf("failed to register archive mirror: %w", err)
			}
			log.Info("archive enabled", "session_id", archive.SessionID())
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REDIS CALL BOARD (optional)
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Redis.Disabled {
		cache, err := connectRedis(ctx, cfg, log)
		if err != nil {
			log.Warn("call board disabled", "error", err)
		} else {
			defer cache.Close()

			board = redis.NewCallBoard(cache, sessionID)
			if err := eventhandler.NewBoardMirror(board, session, cfg.Redis.WriteTimeout, log).Register(bus); err != nil {
				return fmt.Errorf("failed to register board mirror: %w", err)
			}
			if err := bus.SubscribeAll(redis.NewEventRelay(cache, sessionID, cfg.Redis.WriteTimeout).Handle); err != nil {
				return fmt.Errorf("failed to register event relay: %w", err)
			}
			log.Info("call board enabled", "key", redis.BoardKey(sessionID, ""))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	handlers := console.Handlers{
		AddStudent:   command.NewAddStudentHandler(session, bus, log),
		ImportRoster: command.NewImportRosterHandler(importer.NewFileSource(cfg.Roster.BaseDir), session, bus, log),
		PickStudent:  command.NewPickStudentHandler(session, bus, log),
		ResetCycle:   command.NewResetCycleHandler(session, bus, log),
		ClearHistory: command.NewClearHistoryHandler(session, bus, log),
		GetHistory:   query.NewGetHistoryHandler(session),
		GetStats:     query.NewGetStatsHandler(session),
		GetGroups:    query.NewGetGroupsHandler(session),
	}
	if cfg.Export.Dir != "" {
		exporter := export.NewWorkbookExporter(cfg.Export.Dir, cfg.App.Location)
		handlers.ExportReport = command.NewExportReportHandler(session, exporter, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. CONSOLE
	// ─────────────────────────────────────────────────────────────────────────
	con := console.New(os.Stdin, os.Stdout, handlers, console.Config{
		Location:        cfg.App.Location,
		HistoryPageSize: cfg.Roster.HistoryPageSize,
		Logger:          log,
	})
	con.LoadDefaultRoster(ctx, cfg.Roster.DefaultPath)

	done := make(chan error, 1)
	go func() {
		done <- con.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("console: %w", err)
		}
	case <-ctx.Done():
		log.Info("received shutdown signal")
		// The console only notices cancellation between lines.
		select {
		case <-done:
		case <-time.After(cfg.App.ShutdownTimeout):
			log.Warn("console still waiting for input, exiting anyway")
		}
	}

	if board != nil {
		logBoardSummary(board, cfg.Redis.ReadTimeout, log)
	}
	log.Info("shutdown completed", "students", session.Len(), "calls", session.HistoryLen())
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func connectDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*postgres.Connection, error) {
	pgCfg := postgres.DefaultConfig()
	pgCfg.MaxConns = int32(cfg.Database.MaxConns)
	pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	r := retry.DatabaseRetrier(cfg.Database.ConnectAttempts, retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		log.Warn("database connect failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	}))

	conn, err := retry.DoWithData(ctx, r, func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL, pgCfg)
	})
	if err != nil {
		return nil, err
	}

	applied, err := postgres.NewMigrator(conn).Migrate(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("archive migrations completed", "applied", applied)
	return conn, nil
}

func connectRedis(ctx context.Context, cfg *config.Config, log *slog.Logger) (*redis.Cache, error) {
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	r := retry.CacheRetrier(cfg.Redis.ConnectAttempts, retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		log.Warn("redis connect failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	}))

	cache, err := retry.DoWithData(ctx, r, func(ctx context.Context) (*redis.Cache, error) {
		return redis.NewCache(ctx, redisCfg)
	})
	if err != nil {
		return nil, errors.Join(errors.New("redis unavailable"), err)
	}
	return cache, nil
}

// logBoardSummary reports the leaders of the run as Redis sees them. The
// signal context may already be done, so it uses its own deadline.
func logBoardSummary(board *redis.CallBoard, timeout time.Duration, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	top, err := board.Top(ctx, "", 3)
	if err != nil {
		log.Warn("failed to read call board", "error", err)
		return
	}
	attrs := []any{"top", top}
	if last, err := board.Last(ctx); err == nil {
		attrs = append(attrs, "last", last.Name)
	}
	log.Info("call board summary", attrs...)
}

// setupLogger writes structured logs to stderr so they never mix with the
// menu on stdout.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Observability.LogLevel)}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() || strings.EqualFold(cfg.Observability.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
