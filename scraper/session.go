package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/use-agent/sitebrief/brand"
	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/engine"
	"github.com/use-agent/sitebrief/models"
)

// Session is one open rendering session: a single page in its own browser.
type Session interface {
	engine.Page
	brand.PageView

	// Navigate loads url and waits for the document body.
	Navigate(ctx context.Context, url string) error

	// ScrollBy scrolls the viewport down and returns the document height.
	ScrollBy(ctx context.Context, distance int) (int, error)

	// RemoveOverlays strips fixed banners and modals from the page.
	RemoveOverlays(ctx context.Context) error

	// Close releases the page, context and browser process. Safe to call
	// more than once.
	Close() error
}

// Opener opens rendering sessions.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

type rodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	router   *rod.HijackRouter
	cfg      config.ScraperConfig
	locale   string

	closeOnce sync.Once
	closeErr  error
}

var _ Session = (*rodSession)(nil)

// Navigate loads url under the navigation timeout, then waits for the body
// element under the DOM-ready timeout.
func (s *rodSession) Navigate(ctx context.Context, url string) error {
	headers := map[string]string{
		"Referer": "https://www.google.com/",
	}
	if s.locale != "" {
		headers["Accept-Language"] = s.locale
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}).Call(s.page); err != nil {
		slog.Warn("failed to set extra headers", "error", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return categorizeError(err, "navigation to target URL failed")
	}
	if err := p.WaitLoad(); err != nil {
		return categorizeError(err, "page did not finish loading")
	}
	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not settle, continuing", "url", url, "error", err)
	}

	readyCtx, cancelReady := context.WithTimeout(ctx, s.cfg.DOMReadyTimeout)
	defer cancelReady()
	if _, err := s.page.Context(readyCtx).Element("body"); err != nil {
		return categorizeError(err, "document body never became ready")
	}
	return nil
}

// Evaluate runs a JavaScript function in the page and returns its result.
func (s *rodSession) Evaluate(ctx context.Context, js string, args ...interface{}) (gson.JSON, error) {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

func (s *rodSession) evalString(ctx context.Context, js string, args ...interface{}) (string, error) {
	v, err := s.Evaluate(ctx, js, args...)
	if err != nil {
		return "", err
	}
	if v.Nil() {
		return "", nil
	}
	return v.Str(), nil
}

func (s *rodSession) InnerText(ctx context.Context) (string, error) {
	return s.evalString(ctx, `() => document.body ? document.body.innerText : ""`)
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

// Screenshot captures the full page as PNG into path.
func (s *rodSession) Screenshot(ctx context.Context, path string) error {
	data, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func (s *rodSession) Title(ctx context.Context) (string, error) {
	return s.evalString(ctx, `() => document.title || ""`)
}

func (s *rodSession) MetaContent(ctx context.Context, selector string) (string, error) {
	return s.evalString(ctx, `(sel) => {
		const m = document.querySelector(sel);
		return m ? m.getAttribute("content") : null;
	}`, selector)
}

func (s *rodSession) FindImage(ctx context.Context, selector string) (brand.Image, bool, error) {
	v, err := s.Evaluate(ctx, `(sel) => {
		const img = document.querySelector(sel);
		return img ? { alt: img.getAttribute("alt") || "", src: img.getAttribute("src") || "" } : null;
	}`, selector)
	if err != nil {
		return brand.Image{}, false, err
	}
	if v.Nil() {
		return brand.Image{}, false, nil
	}
	return brand.Image{Alt: v.Get("alt").Str(), Src: v.Get("src").Str()}, true, nil
}

func (s *rodSession) FooterText(ctx context.Context) (string, error) {
	return s.evalString(ctx, `() => {
		const f = document.querySelector("footer");
		return f ? f.innerText : "";
	}`)
}

func (s *rodSession) ScrollBy(ctx context.Context, distance int) (int, error) {
	v, err := s.Evaluate(ctx, `(d) => {
		window.scrollBy(0, d);
		return document.body ? document.body.scrollHeight : 0;
	}`, distance)
	if err != nil {
		return 0, err
	}
	return v.Int(), nil
}

// RemoveOverlays removes fixed or sticky elements with a high z-index and
// common consent/popup containers, then restores body scrolling.
func (s *rodSession) RemoveOverlays(ctx context.Context) error {
	const js = `() => {
		for (const el of document.querySelectorAll("*")) {
			const style = window.getComputedStyle(el);
			if (style.position !== "fixed" && style.position !== "sticky") continue;
			const z = parseInt(style.zIndex, 10);
			if (z >= 900) el.remove();
		}
		const selectors = [
			'[class*="cookie"]', '[id*="cookie"]',
			'[class*="consent"]', '[id*="consent"]',
			'[class*="gdpr"]', '[id*="gdpr"]',
			'[class*="popup"]', '[id*="popup"]',
		];
		for (const sel of selectors) {
			document.querySelectorAll(sel).forEach(el => {
				const pos = window.getComputedStyle(el).position;
				if (pos === "fixed" || pos === "sticky" || pos === "absolute") el.remove();
			});
		}
		document.documentElement.style.overflow = "";
		if (document.body) document.body.style.overflow = "";
	}`
	_, err := s.Evaluate(ctx, js)
	return err
}

// Close tears down the page, the browser and the launcher's process.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		if s.router != nil {
			if err := s.router.Stop(); err != nil {
				slog.Debug("hijack router stop failed", "error", err)
			}
		}
		if err := s.browser.Close(); err != nil {
			s.closeErr = fmt.Errorf("close browser: %w", err)
			s.launcher.Kill()
		}
		s.launcher.Cleanup()
	})
	return s.closeErr
}

// toHeadersMap converts a plain string map to proto.NetworkHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
