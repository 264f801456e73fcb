package engine

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/use-agent/sitebrief/models"
)

// StepFunc is called right before a strategy runs.
type StepFunc func(strategy models.Strategy, index, total int)

// Chain runs extractors in fixed priority order and stops at the first one
// whose output the Detector accepts. The last extractor is terminal: its
// output is returned even when weak.
type Chain struct {
	extractors []Extractor
	detector   *Detector
}

// NewChain creates a Chain. A nil detector selects NewDetector(0).
func NewChain(detector *Detector, extractors ...Extractor) *Chain {
	if detector == nil {
		detector = NewDetector(0)
	}
	return &Chain{extractors: extractors, detector: detector}
}

// NewDefaultChain wires the standard order:
// inner text, flattened HTML, OCR over a screenshot, remote reader.
func NewDefaultChain(detector *Detector, rec Recognizer, rd Reader, tempDir string) *Chain {
	return NewChain(detector,
		InnerText{},
		RawHTML{},
		&OCR{Recognizer: rec, TempDir: tempDir},
		&RemoteReader{Reader: rd},
	)
}

// Strategies returns the chain order.
func (c *Chain) Strategies() []models.Strategy {
	names := make([]models.Strategy, len(c.extractors))
	for i, e := range c.extractors {
		names[i] = e.Name()
	}
	return names
}

// Run executes the chain for t. Content and Strategy are always set; Brand
// is left to the caller. Cancellation is checked between steps.
func (c *Chain) Run(ctx context.Context, t *Target, onStep StepFunc) *models.ExtractionResult {
	result := &models.ExtractionResult{Strategy: models.StrategyNone}
	var text string

	for i, ex := range c.extractors {
		if err := ctx.Err(); err != nil {
			slog.Warn("extraction chain cancelled",
				"url", t.URL, "next", ex.Name(), "error", err,
			)
			if i == 0 {
				result.Content = models.ErrorContentPrefix + err.Error()
				return result
			}
			break
		}
		if onStep != nil {
			onStep(ex.Name(), i, len(c.extractors))
		}

		out := ex.Extract(ctx, t)
		attempt := models.Attempt{Strategy: ex.Name()}
		if out.OK() {
			text = out.Text
		} else {
			// A faulty step counts as empty output.
			text = ""
			attempt.Error = out.Err.Error()
			slog.Warn("extraction strategy failed",
				"url", t.URL, "strategy", ex.Name(), "error", out.Err,
			)
		}

		weak := c.detector.IsWeak(text)
		attempt.Length = utf8.RuneCountInString(strings.TrimSpace(text))
		attempt.Weak = weak
		result.Attempts = append(result.Attempts, attempt)
		result.Strategy = ex.Name()

		if !weak {
			slog.Info("extraction strategy accepted",
				"url", t.URL, "strategy", ex.Name(), "length", attempt.Length,
			)
			break
		}
		if i < len(c.extractors)-1 {
			slog.Info("weak content, falling back",
				"url", t.URL,
				"strategy", ex.Name(),
				"length", attempt.Length,
				"keyword", c.detector.BlockKeyword(text),
			)
		}
	}

	result.Content = strings.TrimSpace(text)
	return result
}
