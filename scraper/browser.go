package scraper

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/models"
)

// Browser opens one dedicated Chromium process per session. Nothing is
// pooled or shared between requests.
type Browser struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
}

// NewBrowser creates a Browser opener.
func NewBrowser(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *Browser {
	return &Browser{browserCfg: browserCfg, scraperCfg: scraperCfg}
}

// Open launches Chromium and prepares an isolated stealth page. Every
// countermeasure is installed before the first navigation. On failure all
// acquired resources are released before returning.
func (b *Browser) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, categorizeError(err, "session open canceled")
	}

	// ── 1. Launch ────────────────────────────────────────────────────
	l := launcher.New().
		Headless(b.browserCfg.Headless).
		NoSandbox(b.browserCfg.NoSandbox)

	if b.browserCfg.BrowserBin != "" {
		l = l.Bin(b.browserCfg.BrowserBin)
	}
	if b.browserCfg.DefaultProxy != "" {
		l = l.Proxy(b.browserCfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("no-first-run"))
	if b.browserCfg.Locale != "" {
		l.Set(flags.Flag("lang"), b.browserCfg.Locale)
	}

	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	// ── 2. Connect ───────────────────────────────────────────────────
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	s := &rodSession{
		browser:  browser,
		launcher: l,
		cfg:      b.scraperCfg,
		locale:   b.browserCfg.Locale,
	}
	fail := func(msg string, err error) (Session, error) {
		_ = s.Close()
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, msg, err)
	}

	// ── 3. Isolated context + stealth page ───────────────────────────
	incognito, err := browser.Incognito()
	if err != nil {
		return fail("failed to create browser context", err)
	}
	page, err := stealth.Page(incognito)
	if err != nil {
		return fail("failed to create stealth page", err)
	}
	s.page = page

	// ── 4. Identity: user agent, locale, viewport ────────────────────
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      b.browserCfg.UserAgent,
		AcceptLanguage: b.browserCfg.Locale,
	}); err != nil {
		return fail("failed to set user agent", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.browserCfg.ViewportWidth,
		Height:            b.browserCfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fail("failed to set viewport", err)
	}
	if b.browserCfg.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: b.browserCfg.Locale}).Call(page); err != nil {
			slog.Warn("locale override failed, proceeding with browser default", "error", err)
		}
	}

	// ── 5. Request interception ──────────────────────────────────────
	s.router = setupHijack(page, b.scraperCfg.BlockedResourceTypes, b.scraperCfg.BlockAds)

	return s, nil
}
