package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/clipmark/clipmark-agent/internal/history"
	"github.com/clipmark/clipmark-agent/internal/trim"
)

// Session is the trim controller as seen by the HTTP surface.
type Session interface {
	Snapshot() trim.State
	SetLink(ctx context.Context, text string) (trim.State, error)
	MarkStart() (trim.State, error)
	MarkEnd() (trim.State, error)
	SetStart(seconds float64) (trim.State, error)
	SetEnd(seconds float64) (trim.State, error)
	SetMarkers(start, end float64) (trim.State, error)
	TogglePreview(ctx context.Context) (trim.State, error)
	TriggerExport(ctx context.Context) (trim.Action, error)
}

// ExportHistory lists recorded export requests.
type ExportHistory interface {
	Recent(ctx context.Context, limit int) ([]*history.Export, error)
}

// TokenStore holds the bearer token clients must present.
type TokenStore interface {
	GetConfig(ctx context.Context, key string) (string, error)
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Port            int
	Session         Session
	History         ExportHistory
	Tokens          TokenStore
	CORSOrigins     []string
	ExportRateLimit int
	Version         string
	Logger          *slog.Logger
	StartTime       time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
