package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rentalempire/internal/config"
	"rentalempire/internal/game"
	"rentalempire/internal/notify"
	"rentalempire/internal/store"

	"github.com/spf13/cobra"
)

func newRunCmd(cfg config.CLIConfig) *cobra.Command {
	var (
		savePath string
		headless bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play locally without a server, saving to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runLocal(ctx, cfg, savePath, headless)
		},
	}
	cmd.Flags().StringVar(&savePath, "save", cfg.SavePath, "save file path")
	cmd.Flags().BoolVar(&headless, "headless", false, "log to stderr instead of opening the live view")
	return cmd
}

func runLocal(ctx context.Context, cfg config.CLIConfig, savePath string, headless bool) error {
	var logOut io.Writer = io.Discard
	if headless {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel}))

	inbox := notify.NewInbox(100, nil)
	notifiers := game.Fanout{inbox}
	if headless {
		notifiers = append(notifiers, game.LogNotifier{Log: logger})
	}
	saves := store.NewFile(savePath)
	engine := game.NewEngine(cfg.Engine, game.Deps{
		Store:    saves,
		Notifier: notifiers,
		Logger:   logger,
	})
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := engine.Stop(stopCtx); err != nil && !errors.Is(err, game.ErrNotRunning) {
			printError(fmt.Sprintf("final save failed: %v", err))
		}
	}()

	if headless {
		logger.Info("local game running", "save", saves.Path(), "session_id", engine.SessionID())
		<-ctx.Done()
		return nil
	}
	err := runWatch(ctx, localSource{engine: engine, inbox: inbox})
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
