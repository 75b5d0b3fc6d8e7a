// Package player abstracts the embedded playback widget the trim controller
// drives. The controller only queries position and issues best-effort
// play/pause/seek commands; it never assumes a command has taken effect by
// the time the call returns.
package player

import (
	"context"
	"errors"
)

var (
	ErrClosed      = errors.New("player connection closed")
	ErrUnavailable = errors.New("property unavailable")
)

// Player is the capability the controller needs from a playback widget.
type Player interface {
	// Load replaces the current media with the video named by videoID.
	Load(ctx context.Context, videoID string) error

	// CurrentTime returns the playback position in seconds.
	CurrentTime(ctx context.Context) (float64, error)

	// Duration returns the media duration in seconds. It returns
	// ErrUnavailable until the media has loaded far enough to know it.
	Duration(ctx context.Context) (float64, error)

	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	SeekTo(ctx context.Context, seconds float64) error
}
