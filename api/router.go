package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitebrief/api/handler"
	"github.com/use-agent/sitebrief/api/middleware"
	"github.com/use-agent/sitebrief/cache"
	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/progress"
	"github.com/use-agent/sitebrief/storage"
)

// Pipeline is the extraction pipeline as seen by the router.
type Pipeline interface {
	handler.Extractor
	handler.StatsSource
}

// Deps are the collaborators wired into the router. Cache, Recorder and
// Notifier may be nil.
type Deps struct {
	Pipeline  Pipeline
	Hub       *progress.Hub
	Uploader  storage.Uploader
	Cache     *cache.Cache
	Recorder  handler.Recorder
	Notifier  handler.Notifier
	StartTime time.Time
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:            Recovery → Logger → CORS
//	submit / extract:  RateLimit
//
// Health, root and progress streams are not rate limited.
func NewRouter(d Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(cfg.Server.FrontendURL))

	limited := middleware.RateLimit(cfg.RateLimit)

	r.GET("/", handler.Root())
	r.GET("/progress/:session_id", handler.Progress(d.Hub, cfg.Progress.IdleTimeout))
	r.POST("/submit", limited, handler.Submit(handler.SubmitDeps{
		Extractor: d.Pipeline,
		Hub:       d.Hub,
		Uploader:  d.Uploader,
		Cache:     d.Cache,
		Recorder:  d.Recorder,
		Notifier:  d.Notifier,
	}))

	// Locally stored PDFs are served by the API itself.
	if local, ok := d.Uploader.(*storage.Local); ok {
		r.Static(storage.FilesRoute, local.Dir())
	}

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(d.Pipeline, d.StartTime))
	v1.POST("/extract", limited, handler.Extract(d.Pipeline, d.Hub, d.Cache))

	return r
}
