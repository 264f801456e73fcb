package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/use-agent/sitebrief/brand"
	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/engine"
	"github.com/use-agent/sitebrief/models"
)

// Reporter receives coarse progress for one extraction.
type Reporter interface {
	Report(percent int, message string)
}

type nopReporter struct{}

func (nopReporter) Report(int, string) {}

// Progress checkpoints emitted by Extract.
const (
	PercentLaunching  = 5
	PercentLoading    = 10
	PercentScrolling  = 25
	PercentExtracting = 40
	PercentBrand      = 80
	PercentExtracted  = 85
)

// Scraper runs the extraction pipeline: open a session, load the page,
// scroll lazy content into view, walk the strategy chain and resolve the
// brand. It is safe for concurrent use.
type Scraper struct {
	opener         Opener
	chain          *engine.Chain
	lazy           LazyLoadOptions
	removeOverlays bool

	slots  chan struct{}
	active atomic.Int32
}

// New creates a Scraper. maxSessions caps concurrent browser sessions;
// values below 1 are treated as 1.
func New(opener Opener, chain *engine.Chain, cfg config.ScraperConfig, maxSessions int) *Scraper {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &Scraper{
		opener:         opener,
		chain:          chain,
		lazy:           LazyLoadOptionsFrom(cfg),
		removeOverlays: cfg.RemoveOverlays,
		slots:          make(chan struct{}, maxSessions),
	}
}

// Stats returns a snapshot of session usage.
func (s *Scraper) Stats() models.SessionStats {
	return models.SessionStats{
		MaxSessions:    cap(s.slots),
		ActiveSessions: int(s.active.Load()),
	}
}

// Extract runs the full pipeline for req. It never returns nil and never
// panics: failures before extraction yield diagnostic content starting
// with models.ErrorContentPrefix. The session is closed exactly once on
// every path.
func (s *Scraper) Extract(ctx context.Context, req models.ExtractionRequest, rep Reporter) (result *models.ExtractionResult) {
	if rep == nil {
		rep = nopReporter{}
	}
	log := slog.With("url", req.URL, "session", req.SessionID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("extraction panicked", "panic", r)
			result = failure(fmt.Errorf("internal error: %v", r))
		}
	}()

	// ── 1. Acquire a session slot ────────────────────────────────────
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return failure(categorizeError(ctx.Err(), "waiting for a browser session"))
	}
	defer func() { <-s.slots }()
	s.active.Add(1)
	defer s.active.Add(-1)

	// ── 2. Open the session ──────────────────────────────────────────
	rep.Report(PercentLaunching, "Launching browser")
	sess, err := s.opener.Open(ctx)
	if err != nil {
		log.Error("failed to open browser session", "error", err)
		return failure(err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("failed to close browser session", "error", err)
		}
	}()

	// ── 3. Navigate ──────────────────────────────────────────────────
	rep.Report(PercentLoading, "Loading page")
	if err := sess.Navigate(ctx, req.URL); err != nil {
		log.Warn("page failed to load", "error", err)
		return failure(err)
	}

	// ── 4. Lazy-load ─────────────────────────────────────────────────
	rep.Report(PercentScrolling, "Scrolling to load lazy content")
	if scrolled, err := TriggerLazyLoad(ctx, sess, s.lazy); err != nil {
		log.Warn("lazy-load incomplete, extracting what is rendered", "scrolled", scrolled, "error", err)
	}
	if s.removeOverlays {
		if err := sess.RemoveOverlays(ctx); err != nil {
			log.Debug("overlay removal failed", "error", err)
		}
	}

	// ── 5. Strategy chain ────────────────────────────────────────────
	result = s.chain.Run(ctx, &engine.Target{URL: req.URL, Page: sess},
		func(strategy models.Strategy, index, total int) {
			span := PercentBrand - PercentExtracting
			rep.Report(PercentExtracting+span*index/total, "Extracting content ("+string(strategy)+")")
		},
	)
	if result.Failed() {
		return result
	}

	// ── 6. Brand ─────────────────────────────────────────────────────
	rep.Report(PercentBrand, "Identifying brand")
	result.Brand = brand.Resolve(ctx, sess)

	rep.Report(PercentExtracted, "Content extracted")
	log.Info("extraction finished",
		"strategy", result.Strategy,
		"length", len(result.Content),
		"brand", result.Brand,
	)
	return result
}

func failure(err error) *models.ExtractionResult {
	return &models.ExtractionResult{
		Content:  models.ErrorContentPrefix + err.Error(),
		Strategy: models.StrategyNone,
	}
}
