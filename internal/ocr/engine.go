// Package ocr converts image bytes to text through a Tika-compatible
// recognition server.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ProgressEvent reports recognition progress as a percentage. Events are
// monotonically increasing per job and are an observability side channel
// only; the success or failure of recognition is reported by Recognize.
type ProgressEvent struct {
	Percent int
}

// Options controls a single recognition job.
type Options struct {
	// Languages biases recognition, e.g. ["fra", "eng"]. Defaults to the
	// engine's configured languages when empty.
	Languages []string

	// Progress, when non-nil, receives progress events. Sends never block;
	// events are dropped if the channel is full. The engine does not close
	// the channel.
	Progress chan<- ProgressEvent
}

// Engine is a client for a Tika-compatible OCR server. Jobs are serialized
// through a bounded semaphore to cap memory use of the recognition backend.
type Engine struct {
	serverURL  string
	languages  []string
	httpClient *http.Client
	sem        chan struct{}
}

// Config holds configuration for the OCR engine.
type Config struct {
	ServerURL string
	Languages []string
	// MaxConcurrent bounds in-flight recognition jobs. Defaults to 1.
	MaxConcurrent int
	Timeout       time.Duration
}

// NewEngine creates an OCR engine client.
func NewEngine(cfg Config) *Engine {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"fra", "eng"}
	}

	return &Engine{
		serverURL:  strings.TrimRight(cfg.ServerURL, "/"),
		languages:  languages,
		httpClient: &http.Client{Timeout: timeout},
		sem:        make(chan struct{}, maxConcurrent),
	}
}

// Recognize extracts text from image bytes. An empty or whitespace-only
// result is a failure (no text found), never an empty success.
func (e *Engine) Recognize(ctx context.Context, buffer []byte, opts Options) (string, error) {
	if e.serverURL == "" {
		return "", fmt.Errorf("recognition backend not configured: %w", ErrEngineUnavailable)
	}

	if len(buffer) == 0 {
		return "", fmt.Errorf("empty image buffer: %w", ErrRecognitionFailed)
	}

	// Acquire a recognition slot; the slot is released on every path.
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-e.sem }()

	emit := progressEmitter(opts.Progress)
	emit(0)

	languages := opts.Languages
	if len(languages) == 0 {
		languages = e.languages
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.serverURL+"/tika", bytes.NewReader(buffer))
	if err != nil {
		return "", fmt.Errorf("failed to build recognition request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", http.DetectContentType(buffer))
	req.Header.Set("X-Tika-OCRLanguage", strings.Join(languages, "+"))

	emit(10)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("recognition backend request failed: %w: %v", ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	emit(60)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("recognition backend returned %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), ErrRecognitionFailed)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read recognition response: %w: %v", ErrRecognitionFailed, err)
	}

	emit(90)

	result := strings.TrimSpace(string(text))
	if result == "" {
		return "", ErrNoTextFound
	}

	emit(100)
	return result, nil
}

// progressEmitter returns a non-blocking, monotonic sender for progress
// events. A nil channel yields a no-op emitter.
func progressEmitter(ch chan<- ProgressEvent) func(int) {
	last := -1
	return func(percent int) {
		if ch == nil || percent <= last {
			return
		}
		last = percent
		select {
		case ch <- ProgressEvent{Percent: percent}:
		default:
		}
	}
}
