// Package reader is the client for the remote reader service that fetches
// a URL server-side and returns its readable text.
package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/models"
)

// Client posts URLs to the reader endpoint.
type Client struct {
	http     *resty.Client
	endpoint string
}

type readRequest struct {
	URL string `json:"url"`
}

type readResponse struct {
	Text string `json:"text"`
}

// New creates a Client from config.
func New(cfg config.ReaderConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "sitebrief/1.0")
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: c, endpoint: cfg.Endpoint}
}

// Read sends {"url": url} and returns the response's text field. Status,
// transport and decoding failures are returned as errors.
func (c *Client) Read(ctx context.Context, url string) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(readRequest{URL: url}).
		Post(c.endpoint)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeReader, "request failed", err)
	}
	if res.StatusCode() < http.StatusOK || res.StatusCode() >= http.StatusMultipleChoices {
		return "", models.NewScrapeError(models.ErrCodeReader,
			fmt.Sprintf("unexpected status %d", res.StatusCode()), nil)
	}

	var out readResponse
	if err := json.Unmarshal(res.Body(), &out); err != nil {
		return "", models.NewScrapeError(models.ErrCodeReader, "malformed response", err)
	}
	return out.Text, nil
}
