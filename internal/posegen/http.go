package posegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/crease/internal/domain/scoring"
	"github.com/okian/crease/internal/domain/types"
	"github.com/okian/crease/pkg/logger"
)

// Outcome of a single frame submission.
type outcome int

const (
	accepted outcome = iota
	duplicate
	rejected
	failed
)

// client wraps http.Client for the crease API.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// getJSON decodes a 200 response into v.
func (c *client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *client) submit(ctx context.Context, f FrameRequest) outcome { //nolint:gocritic // hugeParam: marshalled once
	resp, err := c.do(ctx, http.MethodPost, "/frames", f)
	if err != nil {
		return failed
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		return accepted
	case http.StatusOK:
		var ack AckResponse
		if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && !ack.Duplicate {
			return accepted
		}
		return duplicate
	case http.StatusTooManyRequests:
		return rejected
	default:
		return failed
	}
}

func (c *client) leaderboard(ctx context.Context, mode scoring.Mode, n int) ([]Entry, error) {
	q := url.Values{"mode": {string(mode)}, "limit": {fmt.Sprint(n)}}
	var out []Entry
	err := c.getJSON(ctx, "/leaderboard?"+q.Encode(), &out)
	return out, err
}

func (c *client) rank(ctx context.Context, mode scoring.Mode, playerID string) (Entry, error) {
	q := url.Values{"mode": {string(mode)}}
	var out Entry
	err := c.getJSON(ctx, "/rank/"+url.PathEscape(playerID)+"?"+q.Encode(), &out)
	return out, err
}

func (c *client) stats(ctx context.Context) (types.Stats, error) {
	var out types.Stats
	err := c.getJSON(ctx, "/stats", &out)
	return out, err
}

// submitSessions posts every session's frames in order. Sessions run
// concurrently, frames within one session never do.
func submitSessions(ctx context.Context, cfg *Config, sessions []Session, stats *Stats) {
	log := logger.Named("posegen")
	c := newClient(cfg.BaseURL, cfg.Timeout)

	var counts [failed + 1]atomic.Int64
	var submitted atomic.Int64
	total := 0
	for _, s := range sessions {
		total += len(s.Frames)
	}

	work := make(chan Session, cfg.Workers*2)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				for _, f := range s.Frames {
					if ctx.Err() != nil {
						return
					}
					counts[c.submit(ctx, f)].Add(1)
					if n := submitted.Add(1); cfg.Verbose && n%1000 == 0 {
						log.Info(ctx, "submission progress",
							logger.Int64("submitted", n),
							logger.Int("total", total),
						)
					}
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, s := range sessions {
			select {
			case <-ctx.Done():
				return
			case work <- s:
			}
		}
	}()
	wg.Wait()

	stats.FramesSubmitted = int(submitted.Load())
	stats.FramesAccepted = int(counts[accepted].Load())
	stats.FramesDuplicate = int(counts[duplicate].Load())
	stats.FramesRejected = int(counts[rejected].Load())
	stats.FramesFailed = int(counts[failed].Load())

	log.Info(ctx, "frame submission completed",
		logger.Int("accepted", stats.FramesAccepted),
		logger.Int("duplicate", stats.FramesDuplicate),
		logger.Int("rejected", stats.FramesRejected),
		logger.Int("failed", stats.FramesFailed),
	)
}
