package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/use-agent/sitebrief/models"
)

// apiClient talks to a running sitebrief API server.
type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		// Extractions can run the whole strategy chain; allow for it.
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(5 * time.Minute).
			SetHeader("Content-Type", "application/json"),
	}
}

// Extract calls POST /api/v1/extract. A diagnostic (502) response is
// returned as a result, not an error.
func (c *apiClient) Extract(ctx context.Context, url string) (*models.ExtractResponse, error) {
	var out models.ExtractResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(models.ExtractRequest{URL: url}).
		SetResult(&out).
		SetError(&out).
		Post("/api/v1/extract")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sitebrief API: %w", err)
	}
	if resp.IsError() && out.Result == nil {
		if out.Error != nil {
			return nil, fmt.Errorf("%s: %s", out.Error.Code, out.Error.Message)
		}
		return nil, fmt.Errorf("sitebrief API returned HTTP %d", resp.StatusCode())
	}
	return &out, nil
}

// Submit calls POST /submit and returns the PDF location.
func (c *apiClient) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResponse, error) {
	var (
		out  models.SubmitResponse
		fail models.FailureResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&fail).
		Post("/submit")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sitebrief API: %w", err)
	}
	if resp.IsError() {
		if fail.Message != "" {
			return nil, fmt.Errorf("%s", fail.Message)
		}
		return nil, fmt.Errorf("sitebrief API returned HTTP %d", resp.StatusCode())
	}
	return &out, nil
}

// formatExtraction renders an extract response as plain text for the LLM.
func formatExtraction(r *models.ExtractResponse) string {
	if r.Result == nil {
		return ""
	}
	var b strings.Builder
	if r.Result.Brand != "" {
		fmt.Fprintf(&b, "Brand: %s\n", r.Result.Brand)
	}
	fmt.Fprintf(&b, "Strategy: %s\n", r.Result.Strategy)
	if r.CacheStatus != "" {
		fmt.Fprintf(&b, "Cache: %s\n", r.CacheStatus)
	}
	b.WriteString("\n")
	b.WriteString(r.Result.Content)
	return b.String()
}
