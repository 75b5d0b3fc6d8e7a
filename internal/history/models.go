// Package history keeps a local log of export requests and the agent's
// key/value configuration in SQLite.
package history

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	// StatusSuperseded marks a request that completed after the selection
	// it was made for had already changed.
	StatusSuperseded = "superseded"
)

type Export struct {
	ID          string    `json:"id"`
	VideoID     string    `json:"video_id"`
	Link        string    `json:"link"`
	StartS      float64   `json:"start_s"`
	EndS        float64   `json:"end_s"`
	Status      string    `json:"status"`
	ResultPath  string    `json:"result_path,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewID() string {
	return uuid.NewString()
}
