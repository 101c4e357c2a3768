package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/chess-mcp/pkg/chessdto"
)

// ErrNoActiveGame is returned when the server has no game to show.
var ErrNoActiveGame = errors.New("no active game")

// Client reads game state from a spectator endpoint.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 8},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StateText returns the human-readable state block.
func (c *Client) StateText(ctx context.Context) (string, error) {
	body, err := c.do(ctx, "/state")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) State(ctx context.Context) (*chessdto.GameState, error) {
	body, err := c.do(ctx, "/state.json")
	if err != nil {
		return nil, err
	}
	var state chessdto.GameState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &state, nil
}

// BoardPNG returns the rendered board image.
func (c *Client) BoardPNG(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "/board.png")
}

// do issues a GET and retries transport failures and 5xx responses.
func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + path)

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return nil, lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status == fasthttp.StatusConflict {
			return nil, ErrNoActiveGame
		}
		if status < 200 || status >= 300 {
			err := fmt.Errorf("chess api error: status=%d body=%s", status, decodeError(resp.Body()))
			if attempt == attempts || !shouldRetryStatus(status) {
				return nil, err
			}
			lastErr = err
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		out := make([]byte, len(resp.Body()))
		copy(out, resp.Body())
		return out, nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func decodeError(body []byte) string {
	var derr chessdto.DomainError
	if err := json.Unmarshal(body, &derr); err == nil && derr.Code != "" {
		return derr.Error()
	}
	return truncate(string(body), 512)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
