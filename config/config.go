package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	OCR       OCRConfig
	Reader    ReaderConfig
	Storage   StorageConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Progress  ProgressConfig
	Webhook   WebhookConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// FrontendURL is the CORS allowed origin. "*" allows any origin.
	FrontendURL string // default: "*"
}

// BrowserConfig controls the per-request Chromium instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxSessions caps concurrently running browsers.
	MaxSessions int // default: 4

	// DefaultProxy is the proxy URL passed to Chromium.
	DefaultProxy string

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	UserAgent      string
	Locale         string // default: "en-US"
	ViewportWidth  int    // default: 1280
	ViewportHeight int    // default: 800
}

// ScraperConfig controls navigation, lazy-loading and the quality gate.
type ScraperConfig struct {
	// NavigationTimeout bounds page.Navigate plus the load event.
	NavigationTimeout time.Duration // default: 90s

	// DOMReadyTimeout bounds the wait for the body element.
	DOMReadyTimeout time.Duration // default: 15s

	ScrollStep        int           // default: 100 (px)
	ScrollInterval    time.Duration // default: 100ms
	ScrollSettle      time.Duration // default: 4s
	ScrollMaxDuration time.Duration // default: 30s

	// MinContentLength is the character floor below which content is weak.
	MinContentLength int // default: 200

	// ExtraBlockKeywords are appended to the built-in blocking keywords.
	ExtraBlockKeywords []string

	// BlockedResourceTypes lists resource types to abort
	// (e.g. "Media", "Font"). Images are left alone: OCR needs them.
	BlockedResourceTypes []string // default: ["Media"]

	// BlockAds aborts requests to known ad and tracking domains.
	BlockAds bool // default: true

	// RemoveOverlays strips fixed cookie banners and modals after scrolling.
	RemoveOverlays bool // default: false
}

// OCRConfig controls the local tesseract invocation.
type OCRConfig struct {
	Binary   string        // default: "tesseract"
	Language string        // default: "eng"
	Timeout  time.Duration // default: 60s
}

// ReaderConfig controls the remote reader-service fallback.
type ReaderConfig struct {
	Endpoint string        // default: "https://reader.jina.ai/api/v1/read"
	APIKey   string        // optional bearer token
	Timeout  time.Duration // default: 30s
}

// StorageConfig selects where generated PDFs are uploaded.
type StorageConfig struct {
	// SupabaseURL and SupabaseKey enable Supabase Storage when both are set.
	SupabaseURL string
	SupabaseKey string
	Bucket      string // default: "pdfs"

	// OutputDir and PublicBaseURL configure the local fallback.
	OutputDir     string // default: "outputs"
	PublicBaseURL string // default: "http://localhost:8080"
}

// StoreConfig controls the submission log database.
type StoreConfig struct {
	Path string // default: "sitebrief.db"
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per client.
	Burst int // default: 5
}

// CacheConfig controls the extraction result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results.
	MaxEntries int // default: 500
}

// ProgressConfig controls progress tracker lifetimes.
type ProgressConfig struct {
	// Retention keeps a finished tracker around for late subscribers.
	Retention time.Duration // default: 2m

	// IdleTimeout ends an SSE stream that received no event for this long.
	IdleTimeout time.Duration // default: 5m
}

// WebhookConfig controls completion callbacks.
type WebhookConfig struct {
	// Secret signs webhook bodies with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("config: failed to load .env file", "error", err)
	}

	return &Config{
		Server: ServerConfig{
			Host:        envOr("SITEBRIEF_HOST", "0.0.0.0"),
			Port:        envIntOr("SITEBRIEF_PORT", envIntOr("PORT", 8080)),
			Mode:        envOr("SITEBRIEF_MODE", "release"),
			FrontendURL: strings.TrimSpace(envOr("FRONTEND_URL", "*")),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("SITEBRIEF_HEADLESS", true),
			MaxSessions:    envIntOr("SITEBRIEF_MAX_SESSIONS", 4),
			DefaultProxy:   os.Getenv("SITEBRIEF_PROXY"),
			NoSandbox:      envBoolOr("SITEBRIEF_NO_SANDBOX", true),
			BrowserBin:     os.Getenv("SITEBRIEF_BROWSER_BIN"),
			UserAgent:      envOr("SITEBRIEF_USER_AGENT", DefaultUserAgent),
			Locale:         envOr("SITEBRIEF_LOCALE", "en-US"),
			ViewportWidth:  envIntOr("SITEBRIEF_VIEWPORT_WIDTH", 1280),
			ViewportHeight: envIntOr("SITEBRIEF_VIEWPORT_HEIGHT", 800),
		},
		Scraper: ScraperConfig{
			NavigationTimeout:  envDurationOr("SITEBRIEF_NAV_TIMEOUT", 90*time.Second),
			DOMReadyTimeout:    envDurationOr("SITEBRIEF_DOM_READY_TIMEOUT", 15*time.Second),
			ScrollStep:         envIntOr("SITEBRIEF_SCROLL_STEP", 100),
			ScrollInterval:     envDurationOr("SITEBRIEF_SCROLL_INTERVAL", 100*time.Millisecond),
			ScrollSettle:       envDurationOr("SITEBRIEF_SCROLL_SETTLE", 4*time.Second),
			ScrollMaxDuration:  envDurationOr("SITEBRIEF_SCROLL_MAX_DURATION", 30*time.Second),
			MinContentLength:   envIntOr("SITEBRIEF_MIN_CONTENT_LENGTH", 200),
			ExtraBlockKeywords: envSliceOr("SITEBRIEF_EXTRA_BLOCK_KEYWORDS", nil),

			BlockedResourceTypes: envSliceOr("SITEBRIEF_BLOCKED_RESOURCE_TYPES", []string{"Media"}),
			BlockAds:             envBoolOr("SITEBRIEF_BLOCK_ADS", true),
			RemoveOverlays:       envBoolOr("SITEBRIEF_REMOVE_OVERLAYS", false),
		},
		OCR: OCRConfig{
			Binary:   envOr("SITEBRIEF_OCR_BIN", "tesseract"),
			Language: envOr("SITEBRIEF_OCR_LANG", "eng"),
			Timeout:  envDurationOr("SITEBRIEF_OCR_TIMEOUT", 60*time.Second),
		},
		Reader: ReaderConfig{
			Endpoint: envOr("SITEBRIEF_READER_ENDPOINT", "https://reader.jina.ai/api/v1/read"),
			APIKey:   os.Getenv("SITEBRIEF_READER_API_KEY"),
			Timeout:  envDurationOr("SITEBRIEF_READER_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			SupabaseURL:   strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			SupabaseKey:   os.Getenv("SUPABASE_KEY"),
			Bucket:        envOr("SITEBRIEF_BUCKET", "pdfs"),
			OutputDir:     envOr("SITEBRIEF_OUTPUT_DIR", "outputs"),
			PublicBaseURL: strings.TrimRight(envOr("SITEBRIEF_PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		Store: StoreConfig{
			Path: envOr("SITEBRIEF_DB_PATH", "sitebrief.db"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SITEBRIEF_RATE_RPS", 1.0),
			Burst:             envIntOr("SITEBRIEF_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("SITEBRIEF_CACHE_MAX_ENTRIES", 500),
		},
		Progress: ProgressConfig{
			Retention:   envDurationOr("SITEBRIEF_PROGRESS_RETENTION", 2*time.Minute),
			IdleTimeout: envDurationOr("SITEBRIEF_PROGRESS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("SITEBRIEF_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("SITEBRIEF_LOG_LEVEL", "info"),
			Format: envOr("SITEBRIEF_LOG_FORMAT", "json"),
		},
	}
}

// DefaultUserAgent is a desktop Chrome user agent string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// UseSupabase reports whether Supabase Storage credentials are configured.
func (c StorageConfig) UseSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
