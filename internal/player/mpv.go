package player

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DexterLB/mpvipc"

	"github.com/clipmark/clipmark-agent/internal/link"
)

// MPV drives an mpv process over its JSON IPC socket.
//
// mpvipc calls block until mpv replies and take no context. Each call runs
// in its own goroutine so a caller can give up on a slow reply; the
// abandoned exchange finishes when mpv answers or the connection closes.
type MPV struct {
	conn   *mpvipc.Connection
	logger *slog.Logger
}

// DialMPV connects to an mpv IPC socket.
func DialMPV(ctx context.Context, socketPath string, logger *slog.Logger) (*MPV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn := mpvipc.NewConnection(socketPath)
	if err := conn.Open(); err != nil {
		return nil, fmt.Errorf("open mpv socket: %w", err)
	}
	return &MPV{conn: conn, logger: logger}, nil
}

func (m *MPV) Load(ctx context.Context, videoID string) error {
	_, err := m.do(ctx, "loadfile", func() (any, error) {
		return m.conn.Call("loadfile", link.WatchURL(videoID), "replace")
	})
	return err
}

func (m *MPV) CurrentTime(ctx context.Context) (float64, error) {
	return m.getFloat(ctx, "time-pos")
}

func (m *MPV) Duration(ctx context.Context) (float64, error) {
	return m.getFloat(ctx, "duration")
}

func (m *MPV) Play(ctx context.Context) error {
	return m.setPause(ctx, false)
}

func (m *MPV) Pause(ctx context.Context) error {
	return m.setPause(ctx, true)
}

func (m *MPV) SeekTo(ctx context.Context, seconds float64) error {
	_, err := m.do(ctx, "seek", func() (any, error) {
		return m.conn.Call("seek", seconds, "absolute")
	})
	return err
}

// Close drops the IPC connection. It does not stop the mpv process.
func (m *MPV) Close() error {
	if m.conn.IsClosed() {
		return nil
	}
	return m.conn.Close()
}

func (m *MPV) setPause(ctx context.Context, paused bool) error {
	_, err := m.do(ctx, "set pause", func() (any, error) {
		return nil, m.conn.Set("pause", paused)
	})
	return err
}

func (m *MPV) getFloat(ctx context.Context, property string) (float64, error) {
	v, err := m.do(ctx, "get "+property, func() (any, error) {
		return m.conn.Get(property)
	})
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, ErrUnavailable
	}
	return f, nil
}

func (m *MPV) do(ctx context.Context, name string, fn func() (any, error)) (any, error) {
	if m.conn.IsClosed() {
		return nil, ErrClosed
	}

	type reply struct {
		v   any
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		v, err := fn()
		ch <- reply{v: v, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, ipcError(name, r.err)
		}
		return r.v, nil
	case <-ctx.Done():
		m.logger.Debug("mpv call abandoned", "call", name, "error", ctx.Err())
		return nil, ctx.Err()
	}
}

// ipcError maps mpv's status strings onto the package errors.
func ipcError(name string, err error) error {
	if strings.Contains(err.Error(), "property unavailable") {
		return ErrUnavailable
	}
	return fmt.Errorf("mpv %s: %w", name, err)
}
