// Package feed polls the public station feed and normalizes its records into
// snapshots. A poll that fails after all retries reports an error to the
// caller; per-record problems are absorbed by defaulting, never by dropping
// the whole batch.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/veloops/stationd/core/logger"
	"github.com/veloops/stationd/core/model"
)

// StatusError reports a non-2xx response from the feed.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed returned status %d", e.Code)
}

// Client fetches and normalizes the station feed.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a Client with the configured request timeout.
func NewClient(cfg Config, log logger.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:  log,
		now:  time.Now,
	}
}

// Poll issues one feed read and returns the normalized batch. All records
// share the same collection time. An empty feed yields an empty batch with a
// nil error; it is the caller's job not to persist it.
func (c *Client) Poll(ctx context.Context) ([]model.StationSnapshot, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode feed body: %w", err)
	}
	c.log.Infof("fetched %d feed records", len(raw))

	collectedAt := c.now()
	batch := make([]model.StationSnapshot, 0, len(raw))
	dropped := 0
	for _, rec := range raw {
		snap, ok := normalizeRecord(rec, collectedAt)
		if !ok {
			dropped++
			continue
		}
		batch = append(batch, snap)
	}
	if dropped > 0 {
		c.log.Warnf("dropped %d feed records without a station id", dropped)
	}
	if len(batch) == 0 {
		c.log.Warnf("feed batch empty after normalization")
	}
	return batch, nil
}

// fetch runs the transport call under the bounded retry policy. Transport
// errors and retryable statuses are retried with doubling backoff; anything
// else short-circuits.
func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	backoff := c.cfg.Retry.initialBackoff()
	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		body, err := c.get(ctx)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !c.retryable(ctx, err) {
			return nil, err
		}
		if attempt == c.cfg.Retry.MaxAttempts {
			break
		}
		c.log.Warnf("feed attempt %d/%d failed: %v, retrying in %s",
			attempt, c.cfg.Retry.MaxAttempts, err, backoff)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("feed unavailable after %d attempts: %w", c.cfg.Retry.MaxAttempts, lastErr)
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// retryable treats transport failures (timeouts, connection resets) and the
// configured status set as transient. Statuses outside the set are permanent
// for this cycle, as is cancellation of the surrounding context.
func (c *Client) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var status *StatusError
	if errors.As(err, &status) {
		return c.cfg.Retry.retryableStatus(status.Code)
	}
	return true
}
