package handler

import (
	"context"

	"github.com/use-agent/sitebrief/models"
	"github.com/use-agent/sitebrief/scraper"
	"github.com/use-agent/sitebrief/store"
	"github.com/use-agent/sitebrief/webhook"
)

// Extractor runs the extraction pipeline for one page.
type Extractor interface {
	Extract(ctx context.Context, req models.ExtractionRequest, rep scraper.Reporter) *models.ExtractionResult
}

// StatsSource reports browser session usage.
type StatsSource interface {
	Stats() models.SessionStats
}

// Recorder persists submissions.
type Recorder interface {
	Insert(ctx context.Context, s store.Submission) (int64, error)
}

// Notifier delivers webhook events in the background.
type Notifier interface {
	DeliverAsync(url string, event *webhook.Event) <-chan struct{}
}

// RenderFunc turns an extraction result into a PDF.
type RenderFunc func(result *models.ExtractionResult, sourceURL string) ([]byte, error)
