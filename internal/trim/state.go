package trim

import (
	"github.com/clipmark/clipmark-agent/internal/timefmt"
)

// State is a read-only projection of the controller. Labels and flags are
// derived from the raw fields on every snapshot.
type State struct {
	Link     string  `json:"link"`
	VideoID  string  `json:"video_id"`
	Duration float64 `json:"duration"`
	Elapsed  float64 `json:"elapsed"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`

	Preview      PreviewState `json:"preview"`
	PreviewLabel string       `json:"preview_label"`

	ExportStatus  ExportStatus `json:"export_status"`
	ExportLabel   string       `json:"export_label"`
	ExportEnabled bool         `json:"export_enabled"`
	ExportResult  string       `json:"export_result,omitempty"`
	ExportError   string       `json:"export_error,omitempty"`
	DownloadURL   string       `json:"download_url,omitempty"`

	DurationText string `json:"duration_text"`
	ElapsedText  string `json:"elapsed_text"`
	StartText    string `json:"start_text"`
	EndText      string `json:"end_text"`
}

// HasVideo reports whether the link resolved to an identifier. Without one
// the player and its controls are not shown.
func (s State) HasVideo() bool {
	return s.VideoID != ""
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Link:         c.link,
		VideoID:      c.videoID,
		Duration:     c.duration,
		Elapsed:      c.elapsed,
		Start:        c.start,
		End:          c.end,
		Preview:      c.preview,
		PreviewLabel: previewLabel(c.preview),
		ExportStatus: c.export.status,
		DurationText: timefmt.Format(c.duration),
		ElapsedText:  timefmt.Format(c.elapsed),
		StartText:    timefmt.Format(c.start),
		EndText:      timefmt.Format(c.end),
	}
	if s.ExportStatus == "" {
		s.ExportStatus = ExportIdle
	}
	s.ExportLabel = exportLabel(s.ExportStatus)
	s.ExportEnabled = s.ExportStatus != ExportPending && ExportEnabled(c.start, c.end)

	switch s.ExportStatus {
	case ExportSucceeded:
		s.ExportResult = c.export.result
		s.DownloadURL = c.backend.DownloadURL(c.export.result)
	case ExportFailed:
		if c.export.err != nil {
			s.ExportError = c.export.err.Error()
		}
	}
	return s
}
