package trim

import (
	"context"
)

type PreviewState int

const (
	Idle PreviewState = iota
	Previewing
)

func (s PreviewState) String() string {
	if s == Previewing {
		return "previewing"
	}
	return "idle"
}

func (s PreviewState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func previewLabel(s PreviewState) string {
	if s == Previewing {
		return "Stop Preview"
	}
	return "Preview"
}

// TogglePreview flips the preview mode.
//
// Entering preview commands play and then a seek to the start marker; the
// seek is not checked against the duration. Leaving preview resets both
// markers to zero, so the selection has to be marked again.
func (c *Controller) TogglePreview(ctx context.Context) (State, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}

	if c.preview == Previewing {
		c.preview = Idle
		c.previewEpoch++
		c.start = 0
		c.end = 0
		c.selectionChangedLocked()
		c.mu.Unlock()

		c.logger.Info("preview stopped, markers reset")
		c.notify()
		return c.Snapshot(), nil
	}

	if c.videoID == "" {
		c.mu.Unlock()
		return State{}, ErrNoVideo
	}
	start := c.start
	c.mu.Unlock()

	// Widget first, state second: a poll tick must not see Previewing while
	// the widget still sits past the end marker.
	c.command(ctx, "play", c.player.Play)
	c.command(ctx, "seek", func(ctx context.Context) error { return c.player.SeekTo(ctx, start) })

	c.mu.Lock()
	c.preview = Previewing
	c.previewEpoch++
	end := c.end
	c.mu.Unlock()

	c.logger.Info("preview started", "start", start, "end", end)
	c.notify()
	return c.Snapshot(), nil
}
