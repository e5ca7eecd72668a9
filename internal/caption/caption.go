// Package caption generates post titles and descriptions from images using a
// vision-capable language model.
package caption

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var (
	// ErrInvalidSource means the image source is neither a usable URL nor an
	// existing local file.
	ErrInvalidSource = errors.New("caption: invalid image source")
	// ErrSourceUnavailable means the image bytes could not be fetched. Fetch
	// failures are terminal, only model calls are retried.
	ErrSourceUnavailable = errors.New("caption: image source unavailable")
	// ErrCaptionFailed means the model did not answer within the retry budget.
	ErrCaptionFailed = errors.New("caption: max attempts reached")
)

const prompt = `Analyze this image and generate:
1. Provide an interesting, funny, or attractive title (up to 3 words). Format: Title: [Your Title]
2. A description (max 75 characters). Format: Content: [Your Description]
Return only these two lines without extra words.`

// Model answers a single captioning request. Implementations must be safe for
// concurrent use.
type Model interface {
	Caption(ctx context.Context, prompt, imageBase64 string) (string, error)
}

// Result holds the parsed model answer. A line the model omitted leaves the
// corresponding field empty.
type Result struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Client drives a Model with source loading, retries with exponential backoff,
// and answer parsing.
type Client struct {
	model       Model
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts sets the model retry budget.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the first retry delay. Each retry doubles it.
func WithBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.baseDelay = d
		}
	}
}

// WithHTTPClient sets the client used to download remote images.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// withSleep replaces the backoff sleeper; tests use it to run instantly.
func withSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient returns a Client over model.
func NewClient(model Model, opts ...Option) *Client {
	c := &Client{
		model:       model,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxAttempts: 5,
		baseDelay:   time.Second,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeImage loads the image at source, asks the model for a title and a
// description, and parses the answer. source is an http(s) URL or a local file
// path. Load failures are returned immediately; only model calls retry.
func (c *Client) AnalyzeImage(ctx context.Context, source string) (Result, error) {
	raw, err := c.loadSource(ctx, source)
	if err != nil {
		return Result{}, err
	}
	imageBase64 := base64.StdEncoding.EncodeToString(raw)

	delay := c.baseDelay
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		answer, err := c.model.Caption(ctx, prompt, imageBase64)
		if err == nil {
			return parseAnswer(answer), nil
		}
		slog.Warn("caption: model call failed",
			"attempt", attempt, "max_attempts", c.maxAttempts, "retry_in", delay, "error", err)
		if attempt == c.maxAttempts {
			break
		}
		c.sleep(delay)
		delay *= 2
	}
	return Result{}, ErrCaptionFailed
}

func (c *Client) loadSource(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, ErrInvalidSource
	}
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return c.download(ctx, source)
	}
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return nil, ErrInvalidSource
	}
	raw, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return raw, nil
}

func (c *Client) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, ErrInvalidSource
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return raw, nil
}

// parseAnswer extracts the Title: and Content: lines. A missing line leaves
// the field empty rather than failing the whole caption.
func parseAnswer(answer string) Result {
	var res Result
	for _, line := range strings.Split(strings.TrimSpace(answer), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Title:"):
			res.Title = strings.TrimSpace(strings.TrimPrefix(line, "Title:"))
		case strings.HasPrefix(line, "Content:"):
			res.Content = strings.TrimSpace(strings.TrimPrefix(line, "Content:"))
		}
	}
	return res
}
