package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service records the lifecycle of export requests.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Begin stores a pending export and returns its id.
func (s *Service) Begin(ctx context.Context, videoID, link string, start, end float64) (string, error) {
	now := time.Now().UTC()
	e := &Export{
		ID:        NewID(),
		VideoID:   videoID,
		Link:      link,
		StartS:    start,
		EndS:      end,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateExport(ctx, e); err != nil {
		return "", fmt.Errorf("create export record: %w", err)
	}
	return e.ID, nil
}

func (s *Service) Succeed(ctx context.Context, id, resultPath, downloadURL string) error {
	return s.finish(ctx, id, StatusSucceeded, resultPath, downloadURL, "")
}

func (s *Service) Fail(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.finish(ctx, id, StatusFailed, "", "", msg)
}

// Supersede records a result that arrived for a selection that no longer
// exists. The result is kept so the clip is not lost.
func (s *Service) Supersede(ctx context.Context, id, resultPath, downloadURL string) error {
	return s.finish(ctx, id, StatusSuperseded, resultPath, downloadURL, "")
}

func (s *Service) Recent(ctx context.Context, limit int) ([]*Export, error) {
	return s.repo.ListExports(ctx, limit)
}

func (s *Service) Get(ctx context.Context, id string) (*Export, error) {
	return s.repo.GetExport(ctx, id)
}

func (s *Service) finish(ctx context.Context, id, status, resultPath, downloadURL, errMsg string) error {
	if err := s.repo.UpdateExportResult(ctx, id, status, resultPath, downloadURL, errMsg); err != nil {
		return fmt.Errorf("update export %s: %w", id, err)
	}
	s.logger.Debug("export recorded", "export_id", id, "status", status)
	return nil
}
