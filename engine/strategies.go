package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/use-agent/sitebrief/cleaner"
	"github.com/use-agent/sitebrief/models"
)

// Recognizer turns an image file into text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Reader fetches readable text for a URL from a remote service.
type Reader interface {
	Read(ctx context.Context, url string) (string, error)
}

// InnerText reads the rendered page's visible text.
type InnerText struct{}

// Name returns models.StrategyInnerText.
func (InnerText) Name() models.Strategy { return models.StrategyInnerText }

// Extract returns document.body.innerText of the rendered page.
func (InnerText) Extract(ctx context.Context, t *Target) Outcome {
	text, err := t.Page.InnerText(ctx)
	if err != nil {
		return Failed(fmt.Errorf("inner text: %w", err))
	}
	return Succeeded(text)
}

// RawHTML serializes the document and flattens its markup to text.
type RawHTML struct{}

// Name returns models.StrategyRawHTML.
func (RawHTML) Name() models.Strategy { return models.StrategyRawHTML }

// Extract serializes the live DOM and returns its flattened text nodes.
func (RawHTML) Extract(ctx context.Context, t *Target) Outcome {
	html, err := t.Page.HTML(ctx)
	if err != nil {
		return Failed(fmt.Errorf("serialize html: %w", err))
	}
	text, err := cleaner.FlattenText(html)
	if err != nil {
		return Failed(fmt.Errorf("flatten html: %w", err))
	}
	return Succeeded(text)
}

// OCR captures a full-page screenshot into a request-local temp file and
// runs optical character recognition over it.
type OCR struct {
	Recognizer Recognizer

	// TempDir holds the screenshot; empty selects os.TempDir().
	TempDir string
}

// Name returns models.StrategyOCR.
func (*OCR) Name() models.Strategy { return models.StrategyOCR }

// Extract screenshots the full page and recognizes its text. The
// screenshot is removed before returning.
func (o *OCR) Extract(ctx context.Context, t *Target) Outcome {
	if o.Recognizer == nil {
		return Failed(errors.New("ocr: no recognizer configured"))
	}

	f, err := os.CreateTemp(o.TempDir, "sitebrief-shot-*.png")
	if err != nil {
		return Failed(fmt.Errorf("ocr: create temp file: %w", err))
	}
	path := f.Name()
	_ = f.Close()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("ocr: failed to remove screenshot", "path", path, "error", rmErr)
		}
	}()

	if err := t.Page.Screenshot(ctx, path); err != nil {
		return Failed(fmt.Errorf("ocr: screenshot: %w", err))
	}

	text, err := o.Recognizer.Recognize(ctx, path)
	if err != nil {
		return Failed(fmt.Errorf("ocr: recognize: %w", err))
	}
	return Succeeded(text)
}

// RemoteReader asks a third-party reader service for the page text. It is
// the terminal fallback.
type RemoteReader struct {
	Reader Reader
}

// Name returns models.StrategyRemoteReader.
func (*RemoteReader) Name() models.Strategy { return models.StrategyRemoteReader }

// Extract returns the reader service's text for t.URL.
func (r *RemoteReader) Extract(ctx context.Context, t *Target) Outcome {
	if r.Reader == nil {
		return Failed(errors.New("remote reader: no client configured"))
	}
	text, err := r.Reader.Read(ctx, t.URL)
	if err != nil {
		return Failed(fmt.Errorf("remote reader: %w", err))
	}
	return Succeeded(text)
}
