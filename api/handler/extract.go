package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/sitebrief/cache"
	"github.com/use-agent/sitebrief/models"
	"github.com/use-agent/sitebrief/progress"
	"github.com/use-agent/sitebrief/scraper"
)

// Cache status values reported in ExtractResponse.
const (
	cacheHit  = "hit"
	cacheMiss = "miss"
)

// Extract returns a handler for POST /api/v1/extract: the extraction
// pipeline without PDF rendering. Progress is published when a session
// id is supplied.
func Extract(ex Extractor, hub *progress.Hub, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		var tracker *progress.Tracker
		var rep scraper.Reporter
		if req.SessionID != "" && hub != nil {
			tracker = hub.Start(req.SessionID)
			rep = tracker
		}

		result, cacheStatus := lookupOrExtract(c, ex, cc, models.ExtractionRequest{
			URL:       req.URL,
			SessionID: req.SessionID,
		}, req.MaxAge, rep)

		if tracker != nil {
			if result.Failed() {
				tracker.Fail(errors.New(result.Content))
			} else {
				tracker.Complete("Content extracted")
			}
		}

		resp := models.ExtractResponse{
			Success:     !result.Failed(),
			Result:      result,
			CacheStatus: cacheStatus,
			Timing:      models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
		}
		status := http.StatusOK
		if result.Failed() {
			resp.Error = &models.ErrorDetail{Code: models.ErrCodeNavigation, Message: result.Content}
			status = http.StatusBadGateway
		}
		c.JSON(status, resp)
	}
}

// lookupOrExtract serves req from cc when maxAgeMs allows, otherwise runs
// the pipeline and caches the result. The cache status is empty when the
// cache was not consulted.
func lookupOrExtract(c *gin.Context, ex Extractor, cc *cache.Cache, req models.ExtractionRequest, maxAgeMs int, rep scraper.Reporter) (*models.ExtractionResult, string) {
	if cc == nil || maxAgeMs <= 0 {
		return ex.Extract(c.Request.Context(), req, rep), ""
	}

	key := cache.Key(req.URL)
	if cached, hit := cc.Get(key, maxAgeMs); hit {
		if rep != nil {
			rep.Report(scraper.PercentExtracted, "Content extracted (cached)")
		}
		return cached, cacheHit
	}

	ctx := c.Request.Context()
	result := ex.Extract(ctx, req, rep)
	// A cancelled run stops mid-chain; its text is not the page's answer.
	if ctx.Err() == nil {
		cc.Set(key, result)
	}
	return result, cacheMiss
}
