// Package trim implements the trim preview controller: it binds a playback
// widget to a video identifier derived from link text, polls the widget for
// the playback position, runs the preview loop between two user markers and
// coordinates a single export request for the selected range.
package trim

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/clipmark/clipmark-agent/internal/backend"
	"github.com/clipmark/clipmark-agent/internal/link"
	"github.com/clipmark/clipmark-agent/internal/logging"
	"github.com/clipmark/clipmark-agent/internal/player"
)

const (
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultCommandTimeout = 2 * time.Second
)

var (
	ErrNoVideo       = errors.New("no video identifier in link")
	ErrMarkersFrozen = errors.New("markers cannot change while previewing")
	ErrInvalidMarker = errors.New("marker must be a non-negative number of seconds")
	ErrInvalidRange  = errors.New("export range is empty: start must be before a non-zero end")
	ErrExportPending = errors.New("an export request is already in flight")
	ErrClosed        = errors.New("controller closed")
)

// History records export requests. It is optional.
type History interface {
	Begin(ctx context.Context, videoID, link string, start, end float64) (string, error)
	Succeed(ctx context.Context, id, resultPath, downloadURL string) error
	Fail(ctx context.Context, id string, cause error) error
	Supersede(ctx context.Context, id, resultPath, downloadURL string) error
}

type Config struct {
	Player         player.Player
	Backend        backend.Client
	History        History
	PollInterval   time.Duration
	CommandTimeout time.Duration
	Logger         *slog.Logger
}

// Controller owns the trim session state. All fields behind mu; widget and
// network calls are made without holding it.
type Controller struct {
	player         player.Player
	backend        backend.Client
	history        History
	pollInterval   time.Duration
	commandTimeout time.Duration
	logger         *slog.Logger

	// opMu serialises user transitions that command the widget.
	opMu sync.Mutex

	mu         sync.Mutex
	link       string
	videoID    string
	duration   float64
	elapsed    float64
	start      float64
	end        float64
	preview    PreviewState
	export     exportSlot
	poller     *poller
	generation uint64
	closed     bool

	// previewEpoch changes on every preview transition; a tick that
	// queried before a transition does not act on the boundary.
	previewEpoch uint64

	exportSeq uint64
	exportsWG sync.WaitGroup

	baseCtx    context.Context
	cancelBase context.CancelFunc

	listenersMu  sync.Mutex
	listeners    map[int]func(State)
	nextListener int
}

func NewController(cfg Config) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		player:         cfg.Player,
		backend:        cfg.Backend,
		history:        cfg.History,
		pollInterval:   cfg.PollInterval,
		commandTimeout: cfg.CommandTimeout,
		logger:         logging.WithComponent(cfg.Logger, "trim"),
		export:         exportSlot{status: ExportIdle},
		baseCtx:        ctx,
		cancelBase:     cancel,
		listeners:      make(map[int]func(State)),
	}
}

// SetLink replaces the link text. When the derived identifier changes the
// current poller is stopped before anything else happens, the widget is
// asked to load the new video and a poller bound to it is started.
func (c *Controller) SetLink(ctx context.Context, text string) (State, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	id := link.Resolve(text)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}
	c.link = text
	c.selectionChangedLocked()

	changed := id != c.videoID
	var old *poller
	var gen uint64
	if changed {
		old = c.poller
		c.poller = nil
		c.generation++
		gen = c.generation
		c.videoID = id
		c.duration = 0
		c.elapsed = 0
	}
	c.mu.Unlock()

	if changed {
		if old != nil {
			old.stop()
		}
		if id != "" {
			c.logger.Info("video identifier changed", "video_id", id)
			c.command(ctx, "load", func(ctx context.Context) error { return c.player.Load(ctx, id) })

			p := c.startPoller(gen)
			c.mu.Lock()
			if c.generation == gen && !c.closed {
				c.poller = p
				p = nil
			}
			c.mu.Unlock()
			if p != nil {
				p.stop()
			}
		} else {
			c.logger.Info("link cleared or unrecognised, polling stopped")
		}
	}

	c.notify()
	return c.Snapshot(), nil
}

// onReady records the media duration once the widget knows it. Only the
// first positive report per identifier is kept.
func (c *Controller) onReady(gen uint64, duration float64) bool {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.videoID == "" || c.duration != 0 {
		return false
	}
	c.duration = duration
	c.logger.Info("video ready", "video_id", c.videoID, "duration", duration)
	return true
}

// MarkStart sets the start marker to the current elapsed time.
func (c *Controller) MarkStart() (State, error) {
	return c.mark(func() { c.start = c.elapsed })
}

// MarkEnd sets the end marker to the current elapsed time.
func (c *Controller) MarkEnd() (State, error) {
	return c.mark(func() { c.end = c.elapsed })
}

// SetStart sets the start marker to an explicit time.
func (c *Controller) SetStart(seconds float64) (State, error) {
	if !validMarker(seconds) {
		return State{}, ErrInvalidMarker
	}
	return c.mark(func() { c.start = seconds })
}

// SetEnd sets the end marker to an explicit time.
func (c *Controller) SetEnd(seconds float64) (State, error) {
	if !validMarker(seconds) {
		return State{}, ErrInvalidMarker
	}
	return c.mark(func() { c.end = seconds })
}

// SetMarkers sets both markers to explicit values.
func (c *Controller) SetMarkers(start, end float64) (State, error) {
	if !validMarker(start) || !validMarker(end) {
		return State{}, ErrInvalidMarker
	}
	return c.mark(func() {
		c.start = start
		c.end = end
	})
}

func (c *Controller) mark(apply func()) (State, error) {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return State{}, ErrClosed
	case c.videoID == "":
		c.mu.Unlock()
		return State{}, ErrNoVideo
	case c.preview == Previewing:
		c.mu.Unlock()
		return State{}, ErrMarkersFrozen
	}
	apply()
	c.selectionChangedLocked()
	c.mu.Unlock()

	c.notify()
	return c.Snapshot(), nil
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.listenersMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

// Close stops polling and waits for in-flight exports to return.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	p := c.poller
	c.poller = nil
	c.generation++
	c.mu.Unlock()

	if p != nil {
		p.stop()
	}
	c.cancelBase()
	c.exportsWG.Wait()
}

func (c *Controller) notify() {
	c.listenersMu.Lock()
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	if len(fns) == 0 {
		return
	}
	s := c.Snapshot()
	for _, fn := range fns {
		fn(s)
	}
}

// command runs a best-effort widget command. Failures are logged, never
// propagated: the widget is expected to catch up on its own.
func (c *Controller) command(ctx context.Context, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(ctx, c.commandTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		c.logger.Warn("player command failed", "command", name, "error", err)
	}
}

func validMarker(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
