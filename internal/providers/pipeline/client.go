// Package pipeline implements the HTTP client for the audio processing
// backend: one multipart upload starts a run, then the run is polled until
// it reaches a terminal status.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"klik/internal/domain"
	"klik/internal/log"
	"klik/internal/ports"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxAttempts  = 200
	defaultHTTPTimeout  = 60 * time.Second
)

// Config controls backend endpoint and polling behavior.
type Config struct {
	BaseURL      string
	PollInterval time.Duration
	MaxAttempts  int
	HTTPClient   *http.Client
}

// Client is a stateless backend client; it is safe to share across sessions.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	maxAttempts  int
	logger       zerolog.Logger
}

func New(cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         cfg.HTTPClient,
		pollInterval: cfg.PollInterval,
		maxAttempts:  cfg.MaxAttempts,
		logger:       log.WithComponent("pipeline-client"),
	}
}

// Upload posts audio as one multipart request and starts a pipeline run.
func (c *Client) Upload(ctx context.Context, audio []byte, fileName string, opts ports.UploadOptions) (domain.UploadResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", "audio/m4a")
	part, err := writer.CreatePart(header)
	if err != nil {
		return domain.UploadResult{}, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return domain.UploadResult{}, fmt.Errorf("building upload form: %w", err)
	}

	if opts.SessionID != "" {
		if err := writer.WriteField("session_id", opts.SessionID); err != nil {
			return domain.UploadResult{}, fmt.Errorf("building upload form: %w", err)
		}
	}
	// The backend expects Python-style booleans.
	if err := writer.WriteField("enable_preprocessing", pythonBool(opts.EnablePreprocessing)); err != nil {
		return domain.UploadResult{}, fmt.Errorf("building upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return domain.UploadResult{}, fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pipeline/execute", body)
	if err != nil {
		return domain.UploadResult{}, &TransportError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug().Str("file", fileName).Int("bytes", len(audio)).Msg("uploading audio")

	var result domain.UploadResult
	if err := c.do(req, "upload", &result); err != nil {
		return domain.UploadResult{}, err
	}
	return result, nil
}

// FetchStatus performs one status request for the given run.
func (c *Client) FetchStatus(ctx context.Context, runID string) (domain.StatusSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/pipeline/status/"+url.PathEscape(runID), nil)
	if err != nil {
		return domain.StatusSnapshot{}, &TransportError{Op: "status", Err: err}
	}

	var snapshot domain.StatusSnapshot
	if err := c.do(req, "status", &snapshot); err != nil {
		return domain.StatusSnapshot{}, err
	}
	return snapshot, nil
}

// PollUntilTerminal fetches status up to MaxAttempts times, sleeping
// PollInterval between non-terminal snapshots. onProgress runs after every
// successful fetch, before the status is interpreted. A fetch failure aborts
// the cycle immediately; there is no retry inside the loop.
func (c *Client) PollUntilTerminal(ctx context.Context, runID string, onProgress func(domain.StatusSnapshot)) (domain.StatusSnapshot, error) {
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		snapshot, err := c.FetchStatus(ctx, runID)
		if err != nil {
			return domain.StatusSnapshot{}, err
		}

		if onProgress != nil {
			onProgress(snapshot)
		}

		switch snapshot.Status {
		case domain.RunCompleted:
			c.logger.Debug().Str("runId", runID).Int("attempts", attempt+1).Msg("run completed")
			return snapshot, nil
		case domain.RunFailed:
			reason := snapshot.Error
			if reason == "" {
				reason = "pipeline failed"
			}
			return snapshot, &RunFailedError{RunID: runID, Reason: reason}
		}

		// RUNNING, started, or any status a newer backend may add: keep
		// polling until the attempt budget runs out.
		select {
		case <-ctx.Done():
			return domain.StatusSnapshot{}, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	return domain.StatusSnapshot{}, &PollTimeoutError{RunID: runID, Attempts: c.maxAttempts}
}

// Health checks backend reachability. Diagnostics only.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, "health", "/api/pipeline/health")
}

// ListRuns fetches the backend's run inventory. Diagnostics only.
func (c *Client) ListRuns(ctx context.Context) (map[string]any, error) {
	return c.getJSON(ctx, "runs", "/api/pipeline/runs")
}

func (c *Client) getJSON(ctx context.Context, op string, path string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	var payload map[string]any
	if err := c.do(req, op, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Op: op, Err: fmt.Errorf("backend returned HTTP %d: %s", resp.StatusCode, bodyExcerpt(body))}
	}

	// Unknown fields are ignored and missing optional fields decode to zero
	// values; only a malformed body is a protocol error.
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

func bodyExcerpt(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}

func pythonBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
