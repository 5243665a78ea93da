package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/subpar/subpar/pkg/transit"
)

const DefaultTimeout = 10 * time.Second

const userAgent = "subpar/1.0 (+https://github.com/subpar/subpar)"

// Client fetches feed bodies. The timeout covers the whole exchange, headers and body.
// There are no retries; the next poll tick is the retry.
type Client struct {
	HTTPClient *http.Client
	APIKey     string
	Timeout    time.Duration
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		HTTPClient: &http.Client{},
		APIKey:     apiKey,
		Timeout:    timeout,
	}
}

func (c *Client) Fetch(ctx context.Context, feed Feed) ([]byte, error) {
	body, err := c.Get(ctx, feed.URL)
	if err != nil {
		var fetchErr *transit.Error
		if errors.As(err, &fetchErr) {
			fetchErr.WithFeed(feed.Name)
		}
		return nil, err
	}
	return body, nil
}

// Get performs an authenticated GET, returning a *transit.Error of kind
// Transport, Timeout or Status on failure.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transit.NewError(transit.Transport, err)
	}
	req.Header.Set("User-Agent", userAgent)
	if c.APIKey != "" {
		req.Header.Set("x-api-key", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &transit.Error{
			Kind:   transit.Status,
			Entity: -1,
			Err:    &StatusError{StatusCode: resp.StatusCode, URL: url},
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classify(ctx, err)
	}

	return body, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return transit.NewError(transit.Timeout, fmt.Errorf("no complete response within %s: %w", c.Timeout, err))
	}
	return transit.NewError(transit.Transport, err)
}

type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
