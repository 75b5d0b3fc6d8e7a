package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// StubClient answers every cut with a synthetic result path. It lets the
// agent run end to end without a clip service.
type StubClient struct {
	origin string
	logger *slog.Logger
}

func NewStubClient(origin string, logger *slog.Logger) *StubClient {
	return &StubClient{origin: strings.TrimRight(origin, "/"), logger: logger}
}

func (c *StubClient) Cut(ctx context.Context, link string, start, end float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.logger.Info("cut stub: request", "start", start, "end", end)
	return fmt.Sprintf("/files/stub_%s-%s.mp4", FormatSeconds(start), FormatSeconds(end)), nil
}

func (c *StubClient) DownloadURL(resultPath string) string {
	return c.origin + resultPath
}
