// Package ui is the system tray view of the trim controller.
package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/clipmark/clipmark-agent/internal/trim"
)

const commandTimeout = 5 * time.Second

// Controls is the part of the trim controller the tray drives.
type Controls interface {
	Snapshot() trim.State
	Subscribe(fn func(trim.State)) func()
	MarkStart() (trim.State, error)
	MarkEnd() (trim.State, error)
	TogglePreview(ctx context.Context) (trim.State, error)
	TriggerExport(ctx context.Context) (trim.Action, error)
}

type Tray struct {
	controls Controls
	logger   *slog.Logger
	openURL  func(string) error

	videoItem    *systray.MenuItem
	durationItem *systray.MenuItem
	startItem    *systray.MenuItem
	endItem      *systray.MenuItem
	markStart    *systray.MenuItem
	markEnd      *systray.MenuItem
	previewItem  *systray.MenuItem
	exportItem   *systray.MenuItem

	mu          sync.Mutex
	last        menuView
	unsubscribe func()

	onQuit func()
}

type TrayConfig struct {
	Controls Controls
	Logger   *slog.Logger
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		controls: cfg.Controls,
		logger:   cfg.Logger,
		openURL:  openBrowser,
		onQuit:   cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Clipmark")
	systray.SetTooltip("Clipmark trim preview")

	t.videoItem = systray.AddMenuItem("No video", "Set a link through the local API")
	t.videoItem.Disable()
	t.durationItem = systray.AddMenuItem("", "Elapsed / duration")
	t.durationItem.Disable()
	t.startItem = systray.AddMenuItem("", "Start marker")
	t.startItem.Disable()
	t.endItem = systray.AddMenuItem("", "End marker")
	t.endItem.Disable()

	systray.AddSeparator()

	t.markStart = systray.AddMenuItem("Mark Start", "Set the start marker to the current time")
	t.markEnd = systray.AddMenuItem("Mark End", "Set the end marker to the current time")
	t.previewItem = systray.AddMenuItem("Preview", "Play the selected range")
	t.exportItem = systray.AddMenuItem("Cut", "Cut the selected range")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Clipmark")

	t.render(t.controls.Snapshot())
	unsubscribe := t.controls.Subscribe(t.render)
	t.mu.Lock()
	t.unsubscribe = unsubscribe
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-t.markStart.ClickedCh:
				t.report("mark start", func() error {
					_, err := t.controls.MarkStart()
					return err
				})
			case <-t.markEnd.ClickedCh:
				t.report("mark end", func() error {
					_, err := t.controls.MarkEnd()
					return err
				})
			case <-t.previewItem.ClickedCh:
				t.report("toggle preview", func() error {
					ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
					defer cancel()
					_, err := t.controls.TogglePreview(ctx)
					return err
				})
			case <-t.exportItem.ClickedCh:
				t.handleExport()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.mu.Lock()
	if t.unsubscribe != nil {
		t.unsubscribe()
		t.unsubscribe = nil
	}
	t.mu.Unlock()
	t.logger.Info("system tray exiting")
}

func (t *Tray) handleExport() {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	action, err := t.controls.TriggerExport(ctx)
	if err != nil {
		t.logExpected("export", err)
		return
	}
	if action.Kind == trim.ActionNavigate {
		if err := t.openURL(action.URL); err != nil {
			t.logger.Error("failed to open download link", "url", action.URL, "error", err)
		}
	}
}

func (t *Tray) report(what string, fn func() error) {
	if err := fn(); err != nil {
		t.logExpected(what, err)
	}
}

// logExpected logs precondition failures quietly; the menu already shows
// those controls as disabled.
func (t *Tray) logExpected(what string, err error) {
	switch {
	case errors.Is(err, trim.ErrNoVideo), errors.Is(err, trim.ErrMarkersFrozen),
		errors.Is(err, trim.ErrInvalidRange), errors.Is(err, trim.ErrExportPending):
		t.logger.Debug("tray action rejected", "action", what, "reason", err)
	default:
		t.logger.Error("tray action failed", "action", what, "error", err)
	}
}

func (t *Tray) render(s trim.State) {
	v := menuModel(s)

	t.mu.Lock()
	defer t.mu.Unlock()
	if v == t.last {
		return
	}
	prev := t.last
	t.last = v

	systray.SetTitle(v.Title)
	t.videoItem.SetTitle(v.Video)
	t.durationItem.SetTitle(v.Time)
	t.startItem.SetTitle(v.Start)
	t.endItem.SetTitle(v.End)
	t.previewItem.SetTitle(v.PreviewLabel)
	t.exportItem.SetTitle(v.ExportLabel)

	setEnabled(t.markStart, v.MarkEnabled)
	setEnabled(t.markEnd, v.MarkEnabled)
	setEnabled(t.exportItem, v.ExportEnabled)

	if v.ShowControls != prev.ShowControls || prev == (menuView{}) {
		for _, item := range []*systray.MenuItem{
			t.durationItem, t.startItem, t.endItem,
			t.markStart, t.markEnd, t.previewItem, t.exportItem,
		} {
			if v.ShowControls {
				item.Show()
			} else {
				item.Hide()
			}
		}
	}
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}
