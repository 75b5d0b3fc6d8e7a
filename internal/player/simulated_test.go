package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSimulated(d time.Duration) (*Simulated, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	s := NewSimulated(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = clock.Now
	return s, clock
}

func TestSimulated_UnavailableBeforeLoad(t *testing.T) {
	s, _ := newTestSimulated(time.Minute)
	ctx := context.Background()

	if _, err := s.CurrentTime(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("CurrentTime() error = %v, want ErrUnavailable", err)
	}
	if _, err := s.Duration(ctx); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Duration() error = %v, want ErrUnavailable", err)
	}
}

func TestSimulated_AdvancesWhilePlaying(t *testing.T) {
	s, clock := newTestSimulated(time.Minute)
	ctx := context.Background()
	s.Load(ctx, "abcdefghijk")

	s.Play(ctx)
	clock.Advance(1500 * time.Millisecond)

	got, _ := s.CurrentTime(ctx)
	if got != 1.5 {
		t.Fatalf("CurrentTime() = %v, want 1.5", got)
	}

	s.Pause(ctx)
	clock.Advance(time.Second)
	got, _ = s.CurrentTime(ctx)
	if got != 1.5 {
		t.Fatalf("CurrentTime() after pause = %v, want 1.5", got)
	}
}

func TestSimulated_SeekAndClamp(t *testing.T) {
	s, clock := newTestSimulated(time.Minute)
	ctx := context.Background()
	s.Load(ctx, "abcdefghijk")

	s.SeekTo(ctx, 10)
	s.Play(ctx)
	clock.Advance(2 * time.Second)
	if got, _ := s.CurrentTime(ctx); got != 12 {
		t.Fatalf("CurrentTime() = %v, want 12", got)
	}

	s.SeekTo(ctx, 500)
	if got, _ := s.CurrentTime(ctx); got != 60 {
		t.Fatalf("CurrentTime() past end = %v, want 60", got)
	}

	d, _ := s.Duration(ctx)
	if d != 60 {
		t.Fatalf("Duration() = %v, want 60", d)
	}
}

func TestSimulated_LoadResets(t *testing.T) {
	s, clock := newTestSimulated(time.Minute)
	ctx := context.Background()
	s.Load(ctx, "abcdefghijk")
	s.Play(ctx)
	clock.Advance(5 * time.Second)

	s.Load(ctx, "bbbbbbbbbbb")
	if got, _ := s.CurrentTime(ctx); got != 0 {
		t.Fatalf("CurrentTime() after load = %v, want 0", got)
	}
}
