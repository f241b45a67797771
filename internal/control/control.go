// Package control implements the daemon's named-pipe command channel. The
// CLI writes single-line commands into the FIFO; the daemon reacts without a
// restart.
package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"filelink/internal/logging"
)

// Commands understood by the listener.
const (
	CommandUpdatePermissions = "update_permissions"
	CommandShutdown          = "shutdown"
)

// ErrNoListener is returned by Send when no daemon holds the pipe open.
var ErrNoListener = errors.New("no listener on control pipe")

// EnsurePipe creates the FIFO at path if it does not exist. An existing
// non-FIFO file at the path is an error rather than silently replaced.
func EnsurePipe(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.Mode()&os.ModeNamedPipe != 0 {
			return nil
		}
		return fmt.Errorf("control pipe path %s exists and is not a named pipe", path)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat control pipe: %w", err)
	}
	if err := unix.Mkfifo(path, 0o644); err != nil {
		return fmt.Errorf("create control pipe %s: %w", path, err)
	}
	return nil
}

// Listener reads commands from the FIFO and dispatches them.
type Listener struct {
	path       string
	logger     *slog.Logger
	onReload   func(context.Context) error
	onShutdown func()
}

// NewListener wires the command channel. onReload is invoked for
// update_permissions, onShutdown for shutdown.
func NewListener(path string, logger *slog.Logger, onReload func(context.Context) error, onShutdown func()) *Listener {
	return &Listener{
		path:       path,
		logger:     logging.NewComponentLogger(logger, "control"),
		onReload:   onReload,
		onShutdown: onShutdown,
	}
}

// Listen blocks reading commands until ctx is canceled. The pipe is opened
// read-write so the open never blocks waiting for a writer and the reader
// never sees EOF between CLI invocations.
func (l *Listener) Listen(ctx context.Context) error {
	if err := EnsurePipe(l.path); err != nil {
		return err
	}
	fd, err := unix.Open(l.path, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("open control pipe: %w", err)
	}
	pipe := os.NewFile(uintptr(fd), l.path)

	go func() {
		<-ctx.Done()
		_ = pipe.Close()
	}()

	l.logger.Info("control pipe listening", logging.String("path", l.path))

	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			continue
		}
		l.dispatch(ctx, command)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, fs.ErrClosed) {
		return fmt.Errorf("read control pipe: %w", err)
	}
	return nil
}

func (l *Listener) dispatch(ctx context.Context, command string) {
	switch command {
	case CommandUpdatePermissions:
		l.logger.Info("reloading permissions")
		if l.onReload == nil {
			return
		}
		if err := l.onReload(ctx); err != nil {
			l.logger.Error("reload permissions", logging.Error(err))
		}
	case CommandShutdown:
		l.logger.Info("shutdown requested via control pipe")
		if l.onShutdown != nil {
			l.onShutdown()
		}
	default:
		l.logger.Warn("unknown control command", logging.String("command", command))
	}
}

// Send writes one command line into the pipe. It fails fast with
// ErrNoListener when no daemon has the read side open.
func Send(path, command string) error {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		if errors.Is(err, unix.ENXIO) {
			return fmt.Errorf("%w at %s (is the daemon running?)", ErrNoListener, path)
		}
		return fmt.Errorf("open control pipe for writing: %w", err)
	}
	pipe := os.NewFile(uintptr(fd), path)
	defer func() { _ = pipe.Close() }()

	if _, err := fmt.Fprintln(pipe, command); err != nil {
		return fmt.Errorf("write control command: %w", err)
	}
	return nil
}
