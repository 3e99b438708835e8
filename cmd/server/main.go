package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/gridkit/internal/config"
	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/logging"
	"github.com/JonMunkholm/gridkit/internal/store"
	"github.com/JonMunkholm/gridkit/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"storage", cfg.Storage.Path,
		"autosave", cfg.Storage.Autosave,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	if err := run(cfg, logger); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.OpenSQLite(ctx, cfg.Storage.Path, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	bus, err := core.NewEventBus()
	if err != nil {
		return err
	}

	name := cfg.Storage.SnapshotName
	table, err := openTable(ctx, st, cfg, logging.ForTable(logger, name), bus)
	if err != nil {
		return err
	}

	session := web.NewSession(name, table)
	server := web.NewServer(session, cfg)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Storage.Autosave {
		saver := store.NewAutosaver(st, name, session.Snapshot, cfg.Storage.AutosaveInterval, logger)
		unsubscribe := saver.Attach(bus)
		defer unsubscribe()
		g.Go(func() error { return saver.Run(gctx) })
	}

	g.Go(func() error {
		if err := server.Start(cfg.Server.Addr()); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := server.ImportStatus(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openTable restores the saved snapshot. With nothing saved yet the table
// starts from the sample data, or empty when seeding is off.
func openTable(ctx context.Context, st *store.SQLiteStore, cfg *config.Config, logger *slog.Logger, bus *core.EventBus) (*core.Table, error) {
	opts := []core.Option{
		core.WithLogger(logger),
		core.WithPublisher(bus),
		core.WithPageSize(cfg.Table.PageSize),
	}

	snap, err := st.Load(ctx, cfg.Storage.SnapshotName)
	switch {
	case err == nil:
		logger.Info("snapshot restored", "columns", len(snap.Columns), "rows", len(snap.Rows))
		return core.NewTableWith(snap, opts...)
	case !errors.Is(err, store.ErrNoSnapshot):
		return nil, err
	case cfg.Table.SeedSample:
		logger.Info("no snapshot saved, seeding sample data")
		return core.NewSampleTable(opts...)
	default:
		logger.Info("no snapshot saved, starting empty")
		return core.NewTable(opts...), nil
	}
}
