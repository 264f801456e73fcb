package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/sitebrief/config"
)

// scroller is the part of a Session the lazy-load loop drives.
type scroller interface {
	ScrollBy(ctx context.Context, distance int) (int, error)
}

// LazyLoadOptions tunes the incremental scroll.
type LazyLoadOptions struct {
	Step        int
	Interval    time.Duration
	Settle      time.Duration
	MaxDuration time.Duration // 0 disables the guard
}

// LazyLoadOptionsFrom reads the scroll settings from config.
func LazyLoadOptionsFrom(cfg config.ScraperConfig) LazyLoadOptions {
	return LazyLoadOptions{
		Step:        cfg.ScrollStep,
		Interval:    cfg.ScrollInterval,
		Settle:      cfg.ScrollSettle,
		MaxDuration: cfg.ScrollMaxDuration,
	}
}

// TriggerLazyLoad scrolls Step pixels every Interval until the cumulative
// distance reaches the document height reported after the latest scroll,
// then waits Settle for late content. Pages that keep growing are cut off
// after MaxDuration. It returns the total distance scrolled.
func TriggerLazyLoad(ctx context.Context, s scroller, opts LazyLoadOptions) (int, error) {
	if opts.Step <= 0 {
		opts.Step = 100
	}
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if opts.MaxDuration > 0 {
		guard := time.NewTimer(opts.MaxDuration)
		defer guard.Stop()
		deadline = guard.C
	}

	total := 0
loop:
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-deadline:
			slog.Warn("lazy-load: max scroll duration reached", "scrolled", total)
			break loop
		case <-ticker.C:
		}

		height, err := s.ScrollBy(ctx, opts.Step)
		if err != nil {
			return total, fmt.Errorf("lazy-load: scroll: %w", err)
		}
		total += opts.Step
		if total >= height {
			break loop
		}
	}

	if opts.Settle > 0 {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(opts.Settle):
		}
	}
	return total, nil
}
