package trim

import (
	"context"
	"fmt"
	"sync"

	"github.com/clipmark/clipmark-agent/internal/player"
)

type fakePlayer struct {
	mu        sync.Mutex
	current   string
	positions map[string]float64
	duration  float64
	failReads bool
	loaded    []string
	commands  []string
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{positions: make(map[string]float64), duration: 300}
}

func (p *fakePlayer) Load(ctx context.Context, videoID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = videoID
	p.loaded = append(p.loaded, videoID)
	return nil
}

func (p *fakePlayer) CurrentTime(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == "" || p.failReads {
		return 0, player.ErrUnavailable
	}
	return p.positions[p.current], nil
}

func (p *fakePlayer) Duration(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == "" || p.failReads {
		return 0, player.ErrUnavailable
	}
	return p.duration, nil
}

func (p *fakePlayer) Play(ctx context.Context) error {
	p.record("play")
	return nil
}

func (p *fakePlayer) Pause(ctx context.Context) error {
	p.record("pause")
	return nil
}

func (p *fakePlayer) SeekTo(ctx context.Context, seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = append(p.commands, fmt.Sprintf("seek:%g", seconds))
	if p.current != "" {
		p.positions[p.current] = seconds
	}
	return nil
}

func (p *fakePlayer) record(cmd string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = append(p.commands, cmd)
}

func (p *fakePlayer) setPosition(id string, seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.positions[id] = seconds
}

func (p *fakePlayer) setDuration(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duration = seconds
}

func (p *fakePlayer) setFailReads(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failReads = fail
}

func (p *fakePlayer) Commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.commands...)
}

func (p *fakePlayer) Loaded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.loaded...)
}

func (p *fakePlayer) countCommand(cmd string) int {
	n := 0
	for _, c := range p.Commands() {
		if c == cmd {
			n++
		}
	}
	return n
}

type cutCall struct {
	link       string
	start, end float64
}

type fakeBackend struct {
	mu      sync.Mutex
	calls   []cutCall
	results []string
	err     error
	release chan struct{}
}

func (b *fakeBackend) Cut(ctx context.Context, link string, start, end float64) (string, error) {
	b.mu.Lock()
	b.calls = append(b.calls, cutCall{link: link, start: start, end: end})
	n := len(b.calls)
	release := b.release
	err := b.err
	b.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if n <= len(b.results) {
		return b.results[n-1], nil
	}
	return fmt.Sprintf("/files/clip%d.mp4", n), nil
}

func (b *fakeBackend) DownloadURL(resultPath string) string {
	return "http://backend.test" + resultPath
}

func (b *fakeBackend) Calls() []cutCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]cutCall(nil), b.calls...)
}

func (b *fakeBackend) setErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

type fakeHistory struct {
	mu     sync.Mutex
	events []string
}

func (h *fakeHistory) Begin(ctx context.Context, videoID, link string, start, end float64) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := fmt.Sprintf("exp-%d", len(h.events)+1)
	h.events = append(h.events, "begin:"+videoID)
	return id, nil
}

func (h *fakeHistory) Succeed(ctx context.Context, id, resultPath, downloadURL string) error {
	return h.add("succeed:" + resultPath)
}

func (h *fakeHistory) Fail(ctx context.Context, id string, cause error) error {
	return h.add("fail")
}

func (h *fakeHistory) Supersede(ctx context.Context, id, resultPath, downloadURL string) error {
	return h.add("supersede:" + resultPath)
}

func (h *fakeHistory) add(ev string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return nil
}

func (h *fakeHistory) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}
