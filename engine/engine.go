package engine

import (
	"context"

	"github.com/use-agent/sitebrief/models"
)

// Extractor is one content-retrieval strategy in the chain.
type Extractor interface {
	// Name returns the strategy identifier (e.g. "inner_text", "ocr").
	Name() models.Strategy

	// Extract pulls candidate text for the target. Failures are reported in
	// the Outcome, never by panicking or returning early from the chain.
	Extract(ctx context.Context, t *Target) Outcome
}

// Page is the part of a live rendering session the strategies read from.
type Page interface {
	// InnerText returns the visible-text projection of the document body.
	InnerText(ctx context.Context) (string, error)

	// HTML returns the full serialized document.
	HTML(ctx context.Context) (string, error)

	// Screenshot writes a full-page PNG to path.
	Screenshot(ctx context.Context, path string) error
}

// Target is the request-local input shared by every strategy of one run.
type Target struct {
	URL  string
	Page Page
}

// Outcome is the result of a single strategy: either text or an error.
type Outcome struct {
	Text string
	Err  error
}

// Succeeded wraps extracted text.
func Succeeded(text string) Outcome { return Outcome{Text: text} }

// Failed wraps a strategy fault.
func Failed(err error) Outcome { return Outcome{Err: err} }

// OK reports whether the strategy completed without a fault.
func (o Outcome) OK() bool { return o.Err == nil }
