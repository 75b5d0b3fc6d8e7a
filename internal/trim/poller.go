package trim

import (
	"context"
	"time"

	"github.com/clipmark/clipmark-agent/internal/metrics"
)

// poller is the handle for one polling goroutine. It is bound to a single
// generation of the controller; stop cancels it and waits for it to exit.
type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (c *Controller) startPoller(gen uint64) *poller {
	ctx, cancel := context.WithCancel(c.baseCtx)
	p := &poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		c.pollLoop(ctx, gen)
	}()
	return p
}

func (p *poller) stop() {
	p.cancel()
	<-p.done
}

// pollLoop queries the widget once per tick. A tick that runs long makes the
// ticker drop ticks, so two queries are never in flight at once.
func (c *Controller) pollLoop(ctx context.Context, gen uint64) {
	metrics.PollersActive.Inc()
	defer metrics.PollersActive.Dec()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx, gen)
		}
	}
}

func (c *Controller) tick(ctx context.Context, gen uint64) {
	qctx, cancel := context.WithTimeout(ctx, c.commandTimeout)
	defer cancel()

	c.mu.Lock()
	epoch := c.previewEpoch
	c.mu.Unlock()

	pos, err := c.player.CurrentTime(qctx)
	metrics.ObservePoll(err)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Debug("position query failed", "error", err)
		}
		return
	}
	if !validMarker(pos) {
		return
	}

	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		return
	}
	c.elapsed = pos
	needDuration := c.duration == 0
	boundary := c.preview == Previewing && epoch == c.previewEpoch && pos >= c.end
	c.mu.Unlock()

	if boundary {
		if err := c.player.Pause(qctx); err != nil {
			c.logger.Debug("boundary pause failed", "error", err)
		} else {
			metrics.BoundaryPauses.Inc()
		}
	}

	if needDuration {
		if d, err := c.player.Duration(qctx); err == nil {
			c.onReady(gen, d)
		}
	}

	c.notify()
}
