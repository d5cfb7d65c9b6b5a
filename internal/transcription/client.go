// Package transcription is a thin client for the speech-recognition
// provider. It submits audio URLs and polls for the finished transcript
// document; everything downstream of the raw document (parsing,
// normalization, selection) lives elsewhere.
package transcription

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/droth0951/audio2-sub001/internal/errors"
	"github.com/droth0951/audio2-sub001/internal/ratelimit"
)

const (
	// Rate limit: 2 requests per second, burst of 5. Polling dominates
	// the request volume and the provider throttles aggressively.
	defaultRPS   = 2.0
	defaultBurst = 5

	// HTTP client settings
	defaultTimeout = 30 * time.Second

	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 5 * time.Minute

	transcriptPath = "/v2/transcript"
)

// Config holds provider connection settings.
type Config struct {
	BaseURL      string
	APIKey       string
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Client is a rate-limited transcription provider client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
	cfg     Config
}

// New creates a new provider client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
		cfg:     cfg,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// SubmitAudio creates a transcription job for the given audio URL and
// returns the provider job ID. Speaker labels are always requested so
// utterances carry speaker turns.
func (c *Client) SubmitAudio(ctx context.Context, audioURL string) (string, error) {
	if audioURL == "" {
		return "", apperrors.Validation("audio URL is required")
	}

	payload, err := json.Marshal(submitRequest{AudioURL: audioURL, SpeakerLabels: true})
	if err != nil {
		return "", fmt.Errorf("encode submit request: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, transcriptPath, payload)
	if err != nil {
		return "", err
	}

	var env jobEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if env.ID == "" {
		return "", apperrors.Unavailable("provider returned no job ID")
	}

	c.logger.Info("transcription job submitted", "job_id", env.ID, "status", env.Status)
	return env.ID, nil
}

// GetTranscript fetches the current state of a transcription job. The
// returned Result carries the raw provider document once completed.
func (c *Client) GetTranscript(ctx context.Context, jobID string) (*Result, error) {
	if jobID == "" {
		return nil, apperrors.Validation("job ID is required")
	}

	body, err := c.doRequest(ctx, http.MethodGet, transcriptPath+"/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}

	var env jobEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode transcript response: %w", err)
	}

	if env.Status == StatusError {
		msg := env.Error
		if msg == "" {
			msg = "transcription failed"
		}
		return &Result{ID: env.ID, Status: env.Status}, apperrors.Unavailable(msg)
	}

	result := &Result{ID: env.ID, Status: env.Status}
	if env.Status == StatusCompleted {
		result.Payload = body
	}
	return result, nil
}

// WaitForTranscript polls the job until it completes, fails, or the
// poll timeout elapses. The caller's context bounds the overall wait as
// well.
func (c *Client) WaitForTranscript(ctx context.Context, jobID string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.PollTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		result, err := c.GetTranscript(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if result.Status == StatusCompleted {
			c.logger.Info("transcription job completed", "job_id", jobID)
			return result, nil
		}

		c.logger.Debug("transcription job pending", "job_id", jobID, "status", result.Status)

		select {
		case <-ctx.Done():
			return nil, apperrors.Unavailable("timed out waiting for transcript").WithCause(ctx.Err())
		case <-ticker.C:
		}
	}
}

// doRequest executes an HTTP request against the provider with rate limiting.
func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider base URL: %w", err)
	}

	// Wait for rate limit, keyed by host.
	if err := c.limiter.Wait(ctx, base.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := base.JoinPath(path)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.cfg.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("provider request", "method", method, "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Unavailable("transcription provider unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, apperrors.Validation("provider rejected API key")
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFound("transcription job not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.Unavailable("provider rate limit exceeded")
	default:
		return nil, apperrors.Unavailablef("provider returned status %d", resp.StatusCode)
	}
}
