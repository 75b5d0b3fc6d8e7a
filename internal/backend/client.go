// Package backend talks to the remote clip service that produces trimmed
// media. The agent never handles media bytes itself: it asks the service to
// cut a range and hands the returned locator to the user.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	maxResultBytes = 4096
	defaultTimeout = 5 * time.Minute
)

var ErrEmptyResult = errors.New("cut service returned an empty result")

// Client is the export endpoint contract used by the trim controller.
type Client interface {
	// Cut asks the service to trim link to [start, end] seconds and returns
	// the result path relative to the service origin.
	Cut(ctx context.Context, link string, start, end float64) (string, error)

	// DownloadURL turns a result path into an absolute retrieval URL.
	DownloadURL(resultPath string) string
}

// CutError represents a non-success response from the cut endpoint.
type CutError struct {
	StatusCode int
	Body       string
}

func (e *CutError) Error() string {
	return fmt.Sprintf("cut failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPClient calls GET {origin}/cut on the clip service.
type HTTPClient struct {
	origin     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(origin string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		origin: strings.TrimRight(origin, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *HTTPClient) DownloadURL(resultPath string) string {
	return c.origin + resultPath
}

func (c *HTTPClient) Cut(ctx context.Context, link string, start, end float64) (string, error) {
	endpoint := c.origin + "/cut?" + cutQuery(link, start, end)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	c.logger.Info("requesting cut",
		"origin", c.origin,
		"start", start,
		"end", end,
		"request_id", requestID,
	)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResultBytes))
	if err != nil {
		return "", fmt.Errorf("read cut response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &CutError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	result := strings.TrimSpace(string(body))
	if result == "" {
		return "", ErrEmptyResult
	}

	c.logger.Info("cut succeeded",
		"result", result,
		"duration_ms", time.Since(started).Milliseconds(),
		"request_id", requestID,
	)
	return result, nil
}

// cutQuery encodes the cut parameters in contract order (url, startTime,
// endTime). url.Values would sort the keys.
func cutQuery(link string, start, end float64) string {
	return "url=" + url.QueryEscape(link) +
		"&startTime=" + url.QueryEscape(FormatSeconds(start)) +
		"&endTime=" + url.QueryEscape(FormatSeconds(end))
}

// FormatSeconds renders a marker the way it is sent on the wire: shortest
// decimal form, no exponent, so 10 is "10" and 10.5 is "10.5".
func FormatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
