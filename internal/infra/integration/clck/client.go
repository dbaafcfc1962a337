package clck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client shortens links via the clck.ru redirect service. The API is a single
// GET returning the short URL as plain text.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: "https://clck.ru/--",
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Shorten(ctx context.Context, long string) (string, error) {
	endpoint := c.baseURL + "?url=" + url.QueryEscape(long)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("clck request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("clck response unreadable: %w", err)
	}

	short := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(short, "http") {
		return "", fmt.Errorf("clck rejected the link: status %d, body %q", resp.StatusCode, short)
	}
	return short, nil
}
