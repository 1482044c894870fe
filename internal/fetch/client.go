// Package fetch retrieves carrier usage pages over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
)

const (
	ConnectTimeout = 7 * time.Second
	ReadTimeout    = 7 * time.Second

	// The carrier portal only serves the usage page to desktop browsers
	userAgent = "Mozilla/5.0 (Windows NT 5.1; rv:19.0) Gecko/20100101 Firefox/19.0"

	maxBodyBytes = 2 << 20
)

// Client posts to carrier pages and returns their text
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client with the fixed connect and read timeouts
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   ConnectTimeout,
		ResponseHeaderTimeout: ReadTimeout,
	}
	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   ConnectTimeout + ReadTimeout,
		},
		logger: logger,
	}
}

// NewClientWithHTTP wraps an existing http.Client
func NewClientWithHTTP(hc *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{httpClient: hc, logger: logger}
}

// Fetch sends an empty POST to url and returns the body as text.
// Connection and read failures are reported as domain.ErrNetwork.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	c.logger.Debug("carrier request", "url", url)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("carrier request failed", "url", url, "error", err)
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Warn("carrier response read failed", "url", url, "error", err)
		return "", fmt.Errorf("%w: read body: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("carrier request error", "url", url, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: %d", domain.ErrUnexpectedStatus, resp.StatusCode)
	}

	c.logger.Debug("carrier response", "url", url, "bytes", len(body), "elapsed", time.Since(start))
	return string(body), nil
}
