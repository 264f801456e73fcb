package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/use-agent/sitebrief/cache"
	"github.com/use-agent/sitebrief/models"
	"github.com/use-agent/sitebrief/progress"
	"github.com/use-agent/sitebrief/report"
	"github.com/use-agent/sitebrief/storage"
	"github.com/use-agent/sitebrief/store"
	"github.com/use-agent/sitebrief/webhook"
)

// SubmitDeps are the collaborators of POST /submit. Cache, Recorder and
// Notifier are optional.
type SubmitDeps struct {
	Extractor Extractor
	Hub       *progress.Hub
	Uploader  storage.Uploader
	Cache     *cache.Cache
	Recorder  Recorder
	Notifier  Notifier
	Render    RenderFunc
}

// Submit returns a handler for POST /submit.
//
// Flow:
//  1. Parse & validate SubmitRequest, assign a session id.
//  2. Extract (or reuse a cached result), reporting progress.
//  3. Render the PDF.
//  4. Upload it and record the submission.
//  5. Respond with the public PDF URL and fire the webhook.
//
// Diagnostic extraction results still produce a PDF; only rendering,
// upload and validation failures fail the request.
func Submit(d SubmitDeps) gin.HandlerFunc {
	render := d.Render
	if render == nil {
		render = report.Render
	}

	return func(c *gin.Context) {
		start := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.FailureResponse{
				Message: "Invalid request: " + err.Error(),
			})
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}
		objectName := req.SessionID + ".pdf"
		if err := storage.ValidateName(objectName); err != nil {
			c.JSON(http.StatusBadRequest, models.FailureResponse{
				Message: "Invalid request: session_id may only contain letters, digits, '-', '_' and '.'",
			})
			return
		}

		log := slog.With("session_id", req.SessionID, "url", req.URL)
		log.Info("processing submission", "name", req.Name, "email", req.Email)

		tracker := d.Hub.Start(req.SessionID)
		ctx := c.Request.Context()

		fail := func(err error) {
			log.Error("submission failed", "error", err)
			tracker.Fail(err)
			if d.Notifier != nil && req.CallbackURL != "" {
				d.Notifier.DeliverAsync(req.CallbackURL, &webhook.Event{
					Type:      webhook.EventFailed,
					SessionID: req.SessionID,
					Timestamp: time.Now().Unix(),
					Data:      webhook.FailedData{URL: req.URL, Error: err.Error()},
				})
			}
			c.JSON(http.StatusInternalServerError, models.FailureResponse{
				Message: "Failed to process request: " + err.Error(),
			})
		}

		// ── 2. Extract ──────────────────────────────────────────────
		result, _ := lookupOrExtract(c, d.Extractor, d.Cache, models.ExtractionRequest{
			URL:       req.URL,
			SessionID: req.SessionID,
		}, req.MaxAge, tracker)

		// ── 3. Render ───────────────────────────────────────────────
		tracker.Report(90, "Generating PDF")
		pdf, err := render(result, req.URL)
		if err != nil {
			fail(err)
			return
		}

		// ── 4. Upload + record ──────────────────────────────────────
		tracker.Report(95, "Uploading PDF")
		pdfURL, err := d.Uploader.Upload(ctx, objectName, pdf)
		if err != nil {
			fail(err)
			return
		}

		if d.Recorder != nil {
			if _, err := d.Recorder.Insert(ctx, store.Submission{
				SessionID: req.SessionID,
				Name:      req.Name,
				Email:     req.Email,
				URL:       req.URL,
				Brand:     result.Brand,
				Strategy:  string(result.Strategy),
				PDFURL:    pdfURL,
			}); err != nil {
				log.Warn("failed to record submission", "error", err)
			}
		}

		// ── 5. Respond ──────────────────────────────────────────────
		tracker.Complete("PDF ready")
		if d.Notifier != nil && req.CallbackURL != "" {
			d.Notifier.DeliverAsync(req.CallbackURL, &webhook.Event{
				Type:      webhook.EventCompleted,
				SessionID: req.SessionID,
				Timestamp: time.Now().Unix(),
				Data: webhook.CompletedData{
					URL:      req.URL,
					PDFURL:   pdfURL,
					Brand:    result.Brand,
					Strategy: string(result.Strategy),
				},
			})
		}

		log.Info("submission completed",
			"pdf_url", pdfURL,
			"strategy", result.Strategy,
			"total_ms", time.Since(start).Milliseconds(),
		)
		c.JSON(http.StatusOK, models.SubmitResponse{PDFURL: pdfURL, SessionID: req.SessionID})
	}
}
