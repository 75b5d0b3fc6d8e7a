package trim

import (
	"context"
	"time"

	"github.com/clipmark/clipmark-agent/internal/logging"
	"github.com/clipmark/clipmark-agent/internal/metrics"
)

type ExportStatus string

const (
	ExportIdle      ExportStatus = "idle"
	ExportPending   ExportStatus = "pending"
	ExportSucceeded ExportStatus = "succeeded"
	ExportFailed    ExportStatus = "failed"
)

type ActionKind string

const (
	// ActionStarted means a cut request was issued.
	ActionStarted ActionKind = "started"
	// ActionNavigate means a result already exists; URL points at it.
	ActionNavigate ActionKind = "navigate"
)

type Action struct {
	Kind ActionKind `json:"kind"`
	URL  string     `json:"url,omitempty"`
}

// exportKey identifies the selection an export was requested for.
type exportKey struct {
	link  string
	start float64
	end   float64
}

// exportSlot is the single live export request.
type exportSlot struct {
	status ExportStatus
	key    exportKey
	result string
	err    error
	seq    uint64
}

// ExportEnabled reports whether an export may be requested for the range.
func ExportEnabled(start, end float64) bool {
	return !(start >= end || end == 0)
}

func exportLabel(s ExportStatus) string {
	switch s {
	case ExportPending:
		return "Loading..."
	case ExportFailed:
		return "Error"
	case ExportSucceeded:
		return "Download"
	default:
		return "Cut"
	}
}

func (c *Controller) currentKeyLocked() exportKey {
	return exportKey{link: c.link, start: c.start, end: c.end}
}

// selectionChangedLocked drops a cached result that no longer matches the
// current link and markers. A pending request is left alone; its completion
// is discarded when it arrives.
func (c *Controller) selectionChangedLocked() {
	if c.export.status == ExportSucceeded && c.export.key != c.currentKeyLocked() {
		c.export = exportSlot{status: ExportIdle}
	}
}

// TriggerExport requests a cut of the current selection. When a result for
// the selection is already present no request is made; the returned action
// carries the download URL instead.
func (c *Controller) TriggerExport(ctx context.Context) (Action, error) {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return Action{}, ErrClosed
	case c.videoID == "":
		c.mu.Unlock()
		return Action{}, ErrNoVideo
	case c.export.status == ExportPending:
		c.mu.Unlock()
		return Action{}, ErrExportPending
	}

	key := c.currentKeyLocked()
	if c.export.status == ExportSucceeded && c.export.key == key {
		url := c.backend.DownloadURL(c.export.result)
		c.mu.Unlock()
		return Action{Kind: ActionNavigate, URL: url}, nil
	}
	if !ExportEnabled(key.start, key.end) {
		c.mu.Unlock()
		return Action{}, ErrInvalidRange
	}

	c.exportSeq++
	seq := c.exportSeq
	c.export = exportSlot{status: ExportPending, key: key, seq: seq}
	videoID := c.videoID
	c.exportsWG.Add(1)
	c.mu.Unlock()

	c.logger.Info("export requested", "video_id", videoID, "start", key.start, "end", key.end)
	c.notify()

	go c.runExport(key, videoID, seq)
	return Action{Kind: ActionStarted}, nil
}

func (c *Controller) runExport(key exportKey, videoID string, seq uint64) {
	defer c.exportsWG.Done()
	ctx := c.baseCtx

	var historyID string
	if c.history != nil {
		id, err := c.history.Begin(ctx, videoID, key.link, key.start, key.end)
		if err != nil {
			c.logger.Warn("failed to record export", "error", err)
		}
		historyID = id
	}

	started := time.Now()
	result, err := c.backend.Cut(ctx, key.link, key.start, key.end)

	c.mu.Lock()
	current := c.export.seq == seq && !c.closed
	stale := current && c.currentKeyLocked() != key
	switch {
	case !current:
	case stale:
		c.export = exportSlot{status: ExportIdle}
	case err != nil:
		c.export = exportSlot{status: ExportFailed, key: key, err: err, seq: seq}
	default:
		c.export = exportSlot{status: ExportSucceeded, key: key, result: result, seq: seq}
	}
	c.mu.Unlock()

	log := logging.WithVideoID(c.logger, videoID)
	if historyID != "" {
		log = logging.WithExportID(log, historyID)
	}
	downloadURL := ""
	if err == nil {
		downloadURL = c.backend.DownloadURL(result)
	}

	switch {
	case !current || stale:
		metrics.ObserveExport("discarded", time.Since(started))
		log.Info("export result discarded, selection changed")
		c.recordHistory(historyID, func(ctx context.Context) error {
			return c.history.Supersede(ctx, historyID, result, downloadURL)
		})
	case err != nil:
		metrics.ObserveExport("failed", time.Since(started))
		log.Warn("export failed", "error", err)
		c.recordHistory(historyID, func(ctx context.Context) error {
			return c.history.Fail(ctx, historyID, err)
		})
	default:
		metrics.ObserveExport("succeeded", time.Since(started))
		log.Info("export ready", "result", result, "download_url", downloadURL)
		c.recordHistory(historyID, func(ctx context.Context) error {
			return c.history.Succeed(ctx, historyID, result, downloadURL)
		})
	}

	c.notify()
}

func (c *Controller) recordHistory(id string, fn func(context.Context) error) {
	if c.history == nil || id == "" {
		return
	}
	// The controller context may already be cancelled on shutdown; history
	// writes still get a short window.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		c.logger.Warn("failed to update export history", "export_id", id, "error", err)
	}
}
