// Package tagger calls the external AI tagging service. The service is
// opaque to this application: given a filename and an optional audio
// sample it returns a suggested name, category and tag list. Failures are
// never fatal to callers - they keep the synthesized defaults.
package tagger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxSampleBytes caps the raw audio sample attached to a request.
// Larger files are tagged from their filename alone.
const DefaultMaxSampleBytes = 4 << 20

// Suggestion is the service's response shape.
type Suggestion struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Options configures the client.
type Options struct {
	BaseURL        string
	APIKey         string
	RequestsPerSec float64
	MaxSampleBytes int64
	Timeout        time.Duration
	Logger         *slog.Logger
}

// Client is a rate-limited HTTP client for the tagging service.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	limiter        *rate.Limiter
	maxSampleBytes int64
	logger         *slog.Logger
}

// New creates a tagging client.
func New(opts Options) *Client {
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 1
	}
	if opts.MaxSampleBytes <= 0 {
		opts.MaxSampleBytes = DefaultMaxSampleBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient:     &http.Client{Timeout: opts.Timeout},
		baseURL:        opts.BaseURL,
		apiKey:         opts.APIKey,
		limiter:        rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
		maxSampleBytes: opts.MaxSampleBytes,
		logger:         opts.Logger,
	}
}

// Configured reports whether a service endpoint is set. An unconfigured
// client fails every Suggest call, which callers treat as "keep defaults".
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

type tagRequest struct {
	Filename string `json:"filename"`
	Sample   string `json:"sample,omitempty"` // base64, omitted over the size ceiling
	MimeType string `json:"mimeType,omitempty"`
}

// Suggest asks the service for metadata. sample may be nil; samples over
// the configured ceiling are dropped rather than rejected.
func (c *Client) Suggest(ctx context.Context, filename string, sample []byte, mimeType string) (*Suggestion, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("tagging service not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := tagRequest{Filename: filename, MimeType: mimeType}
	if len(sample) > 0 && int64(len(sample)) <= c.maxSampleBytes {
		req.Sample = base64.StdEncoding.EncodeToString(sample)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal tag request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/tag", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tagging request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the log, then discard.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if c.logger != nil {
			c.logger.Warn("tagging service returned error",
				"status", resp.StatusCode, "body", string(msg))
		}
		return nil, fmt.Errorf("tagging service returned %d", resp.StatusCode)
	}

	var suggestion Suggestion
	if err := json.UnmarshalRead(resp.Body, &suggestion); err != nil {
		return nil, fmt.Errorf("decode tag response: %w", err)
	}
	return &suggestion, nil
}
