package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/clipmark/clipmark-agent/internal/history"
	"github.com/clipmark/clipmark-agent/internal/timefmt"
	"github.com/clipmark/clipmark-agent/internal/trim"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type LinkRequest struct {
	Link string `json:"link"`
}

// MarkersRequest sets explicit marker times. Each value is either a number
// of seconds or a "MM:SS:mmm" string; an omitted value keeps the current
// marker.
type MarkersRequest struct {
	Start json.RawMessage `json:"start,omitempty"`
	End   json.RawMessage `json:"end,omitempty"`
}

type ExportResponse struct {
	Action trim.Action `json:"action"`
	State  trim.State  `json:"state"`
}

type ExportRecordResponse struct {
	ID          string  `json:"id"`
	VideoID     string  `json:"video_id"`
	Link        string  `json:"link"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Status      string  `json:"status"`
	ResultPath  string  `json:"result_path,omitempty"`
	DownloadURL string  `json:"download_url,omitempty"`
	Error       string  `json:"error,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type ExportsResponse struct {
	Exports []ExportRecordResponse `json:"exports"`
}

func ExportToResponse(e *history.Export) ExportRecordResponse {
	return ExportRecordResponse{
		ID:          e.ID,
		VideoID:     e.VideoID,
		Link:        e.Link,
		Start:       e.StartS,
		End:         e.EndS,
		Status:      e.Status,
		ResultPath:  e.ResultPath,
		DownloadURL: e.DownloadURL,
		Error:       e.Error,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

// parseTimeValue decodes a marker value; ok is false when the value is absent.
func parseTimeValue(raw json.RawMessage) (seconds float64, ok bool, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false, nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false, fmt.Errorf("marker must be a number or a time string")
	}
	v, err := timefmt.Parse(s)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
