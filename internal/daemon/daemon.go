// Package daemon assembles and runs the filelink process: the Telegram
// poller, the transfer worker, the HTTP server, and the control pipe, all
// sharing one queue and shutting down together.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/gofrs/flock"

	"filelink/internal/config"
	"filelink/internal/control"
	"filelink/internal/history"
	"filelink/internal/ingress"
	"filelink/internal/logging"
	"filelink/internal/notifications"
	"filelink/internal/permissions"
	"filelink/internal/queue"
	"filelink/internal/server"
	"filelink/internal/transfer"
	"filelink/internal/transport"
)

// Options configures daemon runtime behavior.
type Options struct {
	// LogLevel overrides the configured level when non-empty.
	LogLevel string
}

// Run starts the filelink daemon and blocks until the context is canceled,
// a termination signal arrives, or a shutdown command comes over the control
// pipe.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}

	signalCtx, stop := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "filelink.lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return errors.New("another filelink daemon instance is already running")
	}
	defer func() { _ = lock.Unlock() }()

	pidPath := filepath.Join(cfg.Paths.LogDir, "filelink.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	perms, err := permissions.NewManager(cfg.Paths.PermissionsPath, logger)
	if err != nil {
		return fmt.Errorf("load permissions: %w", err)
	}

	ledger, err := history.Open(cfg)
	if err != nil {
		logger.Error("open history ledger", logging.Error(err))
		return err
	}
	defer func() { _ = ledger.Close() }()

	client, err := transport.NewTelegram(cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}

	store := queue.NewStore()
	notifier := notifications.NewService(cfg)
	worker := transfer.NewWorker(store, client, cfg, ledger, notifier, logger)
	handler := ingress.NewHandler(client, store, logger)

	srv := server.New(cfg, store, ledger, logger)
	if err := srv.Start(signalCtx); err != nil {
		return err
	}
	defer srv.Stop()

	listener := control.NewListener(cfg.Paths.PipePath, logger,
		func(context.Context) error { return perms.Reload() },
		stop,
	)

	go func() {
		if err := worker.Run(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("transfer worker exited", logging.Error(err))
		}
	}()

	go func() {
		if err := listener.Listen(signalCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("control pipe listener exited", logging.Error(err))
		}
	}()

	go client.Poll(signalCtx, func(ctx context.Context, msg transport.Message) {
		dispatch(ctx, msg, perms, handler, logger)
	})

	if err := notifier.NotifyDaemonStarted(signalCtx, cfg.Server.Bind); err != nil {
		logger.Warn("send startup notification", logging.Error(err))
	}

	logger.Info("filelink daemon started",
		logging.String("bind", cfg.Server.Bind),
		logging.String("storage_dir", cfg.Paths.StorageDir),
		logging.String("lock", lockPath),
	)

	<-signalCtx.Done()
	logger.Info("filelink daemon shutting down")
	return nil
}

// dispatch enforces permissions before handing a message to ingress.
func dispatch(ctx context.Context, msg transport.Message, perms *permissions.Manager, handler *ingress.Handler, logger *slog.Logger) {
	chatID := strconv.FormatInt(msg.Ref.ChatID, 10)
	userID := strconv.FormatInt(msg.Ref.UserID, 10)
	if !perms.UserHasAccess(chatID, userID) {
		logger.Debug("message rejected by permissions",
			logging.String("chat_id", chatID),
			logging.String("user_id", userID),
		)
		return
	}
	if err := handler.Handle(ctx, msg); err != nil {
		logger.Error("handle inbound message", logging.Error(err))
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
