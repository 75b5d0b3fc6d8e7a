package player

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSimulatedDuration is the length reported for every video the
// simulated player loads.
const DefaultSimulatedDuration = 10 * time.Minute

// Simulated is a wall-clock player used when no real player is available,
// e.g. headless runs without mpv installed. It keeps position the way a
// widget would: advancing while playing, clamped to the media duration.
type Simulated struct {
	logger   *slog.Logger
	duration time.Duration
	now      func() time.Time

	mu       sync.Mutex
	videoID  string
	position float64
	playing  bool
	since    time.Time
}

func NewSimulated(duration time.Duration, logger *slog.Logger) *Simulated {
	if duration <= 0 {
		duration = DefaultSimulatedDuration
	}
	return &Simulated{logger: logger, duration: duration, now: time.Now}
}

func (s *Simulated) Load(ctx context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoID = videoID
	s.position = 0
	s.playing = false
	s.logger.Info("simulated player: load", "video_id", videoID)
	return nil
}

func (s *Simulated) CurrentTime(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoID == "" {
		return 0, ErrUnavailable
	}
	return s.positionLocked(), nil
}

func (s *Simulated) Duration(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoID == "" {
		return 0, ErrUnavailable
	}
	return s.duration.Seconds(), nil
}

func (s *Simulated) Play(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		s.playing = true
		s.since = s.now()
	}
	return nil
}

func (s *Simulated) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		s.position = s.positionLocked()
		s.playing = false
	}
	return nil
}

func (s *Simulated) SeekTo(ctx context.Context, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = clamp(seconds, 0, s.duration.Seconds())
	s.since = s.now()
	return nil
}

func (s *Simulated) positionLocked() float64 {
	pos := s.position
	if s.playing {
		pos += s.now().Sub(s.since).Seconds()
	}
	return clamp(pos, 0, s.duration.Seconds())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
