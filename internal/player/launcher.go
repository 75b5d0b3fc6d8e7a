package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	maxStderrBytes      = 8 * 1024 // 8 KB tail of stderr kept for diagnostics
	defaultStartTimeout = 10 * time.Second
	socketPollInterval  = 50 * time.Millisecond
)

var ErrExited = errors.New("mpv exited")

// LauncherConfig holds the mpv process settings.
type LauncherConfig struct {
	BinaryPath   string        // path to mpv; empty = look up on PATH
	SocketPath   string        // unix socket passed as --input-ipc-server
	StartTimeout time.Duration // how long to wait for the socket to accept
	ExtraArgs    []string
	Logger       *slog.Logger
}

// Launcher owns an mpv subprocess started in idle mode with an IPC socket.
type Launcher struct {
	cfg    LauncherConfig
	binary string

	mu      sync.Mutex
	cmd     *exec.Cmd
	stderr  *limitedWriter
	done    chan struct{}
	waitErr error
}

// NewLauncher resolves the mpv binary. It does not start the process.
func NewLauncher(cfg LauncherConfig) (*Launcher, error) {
	binary, err := resolveMPV(cfg.BinaryPath)
	if err != nil {
		return nil, fmt.Errorf("cannot locate mpv: %w", err)
	}
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("mpv socket path is required")
	}
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = defaultStartTimeout
	}

	cfg.Logger.Info("mpv launcher initialised", "binary", binary, "socket", cfg.SocketPath)
	return &Launcher{cfg: cfg, binary: binary}, nil
}

// Start spawns mpv and returns a connected IPC client once the socket is up.
func (l *Launcher) Start(ctx context.Context) (*MPV, error) {
	l.mu.Lock()
	if l.cmd != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("mpv already started")
	}

	// A socket left behind by a crashed run makes mpv fail to bind.
	_ = os.Remove(l.cfg.SocketPath)

	args := append([]string{
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--pause",
		"--input-ipc-server=" + l.cfg.SocketPath,
	}, l.cfg.ExtraArgs...)

	cmd := exec.Command(l.binary, args...)
	stderrBuf := &limitedWriter{limit: maxStderrBytes}
	cmd.Stderr = stderrBuf
	cmd.Stdout = io.Discard

	if err := cmd.Start(); err != nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	l.cmd = cmd
	l.stderr = stderrBuf
	l.done = make(chan struct{})
	done := l.done
	l.mu.Unlock()

	go func() {
		err := cmd.Wait()
		l.mu.Lock()
		l.waitErr = err
		l.mu.Unlock()
		close(done)
	}()

	l.cfg.Logger.Info("mpv started", "pid", cmd.Process.Pid, "args", args)

	deadline := time.Now().Add(l.cfg.StartTimeout)
	for {
		select {
		case <-done:
			return nil, fmt.Errorf("%w before socket was ready: %s", ErrExited, truncate(l.StderrTail(), 512))
		case <-ctx.Done():
			l.Stop()
			return nil, ctx.Err()
		default:
		}

		client, err := DialMPV(ctx, l.cfg.SocketPath, l.cfg.Logger)
		if err == nil {
			return client, nil
		}
		if time.Now().After(deadline) {
			l.Stop()
			return nil, fmt.Errorf("mpv socket not ready after %s: %w", l.cfg.StartTimeout, err)
		}
		time.Sleep(socketPollInterval)
	}
}

// Stop interrupts mpv and waits briefly for it to exit before killing it.
func (l *Launcher) Stop() {
	l.mu.Lock()
	cmd, done := l.cmd, l.done
	l.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}

	select {
	case <-done:
		return
	default:
	}

	_ = cmd.Process.Signal(os.Interrupt)
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		l.cfg.Logger.Warn("mpv did not exit after interrupt, killing")
		_ = cmd.Process.Kill()
		<-done
	}
	_ = os.Remove(l.cfg.SocketPath)
	l.cfg.Logger.Info("mpv stopped")
}

// StderrTail returns the last bytes mpv wrote to stderr.
func (l *Launcher) StderrTail() string {
	l.mu.Lock()
	stderr := l.stderr
	l.mu.Unlock()
	if stderr == nil {
		return ""
	}
	return stderr.String()
}

// resolveMPV finds a usable mpv binary.
func resolveMPV(preferred string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured mpv %q not found", preferred)
	}
	if p, err := exec.LookPath("mpv"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("no mpv binary found on PATH")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	mu    sync.Mutex
	w     bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		tail := append([]byte(nil), lw.w.Bytes()[lw.w.Len()-lw.limit:]...)
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}

func (lw *limitedWriter) String() string {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.String()
}
