package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "*", cfg.Server.FrontendURL)
	assert.Equal(t, 4, cfg.Browser.MaxSessions)
	assert.Equal(t, 90*time.Second, cfg.Scraper.NavigationTimeout)
	assert.Equal(t, 100, cfg.Scraper.ScrollStep)
	assert.Equal(t, 4*time.Second, cfg.Scraper.ScrollSettle)
	assert.Equal(t, 200, cfg.Scraper.MinContentLength)
	assert.Equal(t, []string{"Media"}, cfg.Scraper.BlockedResourceTypes)
	assert.True(t, cfg.Scraper.BlockAds)
	assert.False(t, cfg.Scraper.RemoveOverlays)
	assert.Equal(t, "tesseract", cfg.OCR.Binary)
	assert.Equal(t, "pdfs", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.UseSupabase())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITEBRIEF_PORT", "9090")
	t.Setenv("SITEBRIEF_MAX_SESSIONS", "2")
	t.Setenv("SITEBRIEF_SCROLL_SETTLE", "1500ms")
	t.Setenv("SITEBRIEF_EXTRA_BLOCK_KEYWORDS", " security check , ,bot wall")
	t.Setenv("SITEBRIEF_BLOCK_ADS", "false")
	t.Setenv("SITEBRIEF_RATE_RPS", "2.5")
	t.Setenv("SUPABASE_URL", "https://x.supabase.co/")
	t.Setenv("SUPABASE_KEY", "k")
	t.Setenv("SITEBRIEF_PUBLIC_BASE_URL", "https://briefs.example.com/")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Browser.MaxSessions)
	assert.Equal(t, 1500*time.Millisecond, cfg.Scraper.ScrollSettle)
	assert.Equal(t, []string{"security check", "bot wall"}, cfg.Scraper.ExtraBlockKeywords)
	assert.False(t, cfg.Scraper.BlockAds)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 1e-9)
	assert.Equal(t, "https://x.supabase.co", cfg.Storage.SupabaseURL)
	assert.True(t, cfg.Storage.UseSupabase())
	assert.Equal(t, "https://briefs.example.com", cfg.Storage.PublicBaseURL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SITEBRIEF_PORT", "not-a-port")
	t.Setenv("SITEBRIEF_NAV_TIMEOUT", "soon")
	t.Setenv("SITEBRIEF_HEADLESS", "maybe")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Scraper.NavigationTimeout)
	assert.True(t, cfg.Browser.Headless)
}
