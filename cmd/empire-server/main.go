package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"rentalempire/internal/api"
	"rentalempire/internal/config"
	"rentalempire/internal/db"
	"rentalempire/internal/game"
	"rentalempire/internal/notify"
	"rentalempire/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) error {
	saves, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	inbox := notify.NewInbox(200, nil)
	notifiers := game.Fanout{game.LogNotifier{Log: logger}, inbox}
	var discord *notify.Discord
	if cfg.DiscordToken != "" {
		discord, err = notify.NewDiscord(cfg.DiscordToken, cfg.DiscordChannel, logger)
		if err != nil {
			return err
		}
		notifiers = append(notifiers, discord)
	}

	engine := game.NewEngine(cfg.Engine, game.Deps{
		Store:    saves,
		Notifier: notifiers,
		Logger:   logger,
	})
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	server := api.New(logger, engine, inbox)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("rental empire api listening", "addr", cfg.Addr, "store", cfg.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if discord != nil {
		g.Go(func() error { return discord.Run(gctx) })
	}
	err = g.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if stopErr := engine.Stop(stopCtx); stopErr != nil && !errors.Is(stopErr, game.ErrNotRunning) {
		logger.Warn("engine stop failed", "err", stopErr)
	}
	logger.Info("rental empire api shutdown", "session_id", engine.SessionID())
	return err
}

func openStore(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) (game.Store, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemory(), func() {}, nil
	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.SQLitePath, cfg.SaveSlot)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info("using sqlite store", "path", cfg.SQLitePath, "slot", cfg.SaveSlot)
		return s, func() { _ = s.Close() }, nil
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}
		s := store.NewPostgres(pool, cfg.SaveSlot)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("using postgres store", "slot", cfg.SaveSlot)
		return s, pool.Close, nil
	default:
		s := store.NewFile(cfg.SavePath)
		logger.Info("using file store", "path", s.Path())
		return s, func() {}, nil
	}
}
