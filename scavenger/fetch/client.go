package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout is used when the client is created with a non-positive timeout.
const DefaultTimeout = 5 * time.Second

// maxBodySize caps the size of upstream payloads.
const maxBodySize = 4 << 20

const userAgent = "morning-thread/1.0 (+https://github.com/samgozman/morning-thread)"

// Client is a thin HTTP client shared by all data sources.
// Every request is bounded by the client timeout.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a new Client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: slog.Default(),
	}
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// Get issues a single GET request and returns the response body.
// Transport failures are reported as ErrNetwork, non-2xx answers as ErrProtocol.
func (c *Client) Get(ctx context.Context, source, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NetworkError(source, fmt.Errorf("error creating request: %w", err))
	}
	req.Header.Set("user-agent", userAgent)
	req.Header.Set("accept", "*/*")

	started := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, NetworkError(source, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Debug("error closing response body", "source", source, "error", err)
		}
	}(res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, ProtocolError(source, res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, NetworkError(source, fmt.Errorf("error reading response body: %w", err))
	}

	c.logger.Debug("fetched", "source", source, "status", res.StatusCode, "bytes", len(body), "took", time.Since(started))
	return body, nil
}

// GetJSON issues a GET request and decodes the body as JSON into v.
// The declared content type is ignored: some upstreams serve JSON as text/javascript.
func (c *Client) GetJSON(ctx context.Context, source, url string, v any) error {
	body, err := c.Get(ctx, source, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ParseError(source, err)
	}
	return nil
}
