package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/use-agent/sitebrief/models"
)

var (
	apiURL = flag.String("api-url", "http://localhost:8080", "sitebrief API base URL")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering the cases the strategy chain is built for.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"News", "https://www.bbc.com/news"},
	{"SPA", "https://github.com/go-rod/rod"},
	{"Protected", "https://www.cloudflare.com"},
}

type runResult struct {
	Run           int             `json:"run"`
	TotalMs       int64           `json:"total_ms"`
	Strategy      models.Strategy `json:"strategy"`
	Brand         string          `json:"brand,omitempty"`
	ContentLength int             `json:"content_length"`
	Attempts      int             `json:"attempts"`
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
}

type urlResult struct {
	URL        string      `json:"url"`
	Label      string      `json:"label"`
	Runs       []runResult `json:"runs"`
	AvgTotalMs float64     `json:"avg_total_ms,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== sitebrief strategy benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Println()

	client := resty.New().SetBaseURL(strings.TrimRight(*apiURL, "/"))

	if _, err := client.R().SetResult(&models.HealthResponse{}).Get("/api/v1/health"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		var okMs, okCount int64
		for i := 1; i <= *runs; i++ {
			rr := benchmarkURL(client, t.URL, i)
			if rr.Success {
				okMs += rr.TotalMs
				okCount++
				fmt.Printf("  Run %d/%d  OK  %dms  via %s\n", i, *runs, rr.TotalMs, rr.Strategy)
			} else {
				fmt.Printf("  Run %d/%d  FAILED: %s\n", i, *runs, rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}
		if okCount > 0 {
			ur.AvgTotalMs = float64(okMs) / float64(okCount)
		}
		report.Results = append(report.Results, ur)
	}

	fmt.Println()
	printTable(report.Results)

	data, err := json.MarshalIndent(report, "", "  ")
	if err == nil {
		err = os.WriteFile(*output, data, 0o644)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func benchmarkURL(client *resty.Client, url string, run int) runResult {
	rr := runResult{Run: run}

	var er models.ExtractResponse
	_, err := client.R().
		SetTimeout(5 * time.Minute).
		SetBody(models.ExtractRequest{URL: url}).
		SetResult(&er).
		SetError(&er).
		Post("/api/v1/extract")
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}

	rr.Success = er.Success
	rr.TotalMs = er.Timing.TotalMs
	if er.Result != nil {
		rr.Strategy = er.Result.Strategy
		rr.Brand = er.Result.Brand
		rr.ContentLength = len(er.Result.Content)
		rr.Attempts = len(er.Result.Attempts)
	}
	if er.Error != nil {
		rr.Error = er.Error.Message
	}
	return rr
}

// printTable shows the average latency and the strategy that won most often.
func printTable(results []urlResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tStrategy\tBrand\n")
	for _, r := range results {
		if r.AvgTotalMs == 0 {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\n", r.Label)
			continue
		}
		strategy, brand := dominant(r.Runs)
		fmt.Fprintf(w, "%s\t%dms\t%s\t%s\n", r.Label, int64(r.AvgTotalMs), strategy, brand)
	}
	w.Flush()
}

func dominant(runs []runResult) (models.Strategy, string) {
	counts := map[models.Strategy]int{}
	brand := ""
	for _, r := range runs {
		if r.Success {
			counts[r.Strategy]++
			if brand == "" {
				brand = r.Brand
			}
		}
	}
	var best models.Strategy
	for s, n := range counts {
		if n > counts[best] {
			best = s
		}
	}
	return best, brand
}
