package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/models"
)

// Supabase uploads objects to a Supabase Storage bucket.
type Supabase struct {
	http    *resty.Client
	baseURL string
	bucket  string
}

// NewSupabase creates a Supabase uploader from config.
func NewSupabase(cfg config.StorageConfig) *Supabase {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "pdfs"
	}
	c := resty.New().
		SetBaseURL(cfg.SupabaseURL).
		SetTimeout(60*time.Second).
		SetAuthToken(cfg.SupabaseKey).
		SetHeader("apikey", cfg.SupabaseKey)
	return &Supabase{http: c, baseURL: cfg.SupabaseURL, bucket: bucket}
}

// Upload stores data under name, overwriting any existing object.
func (s *Supabase) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/pdf").
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(s.objectPath(name))
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeStorage, "upload request failed", err)
	}
	if res.StatusCode() < http.StatusOK || res.StatusCode() >= http.StatusMultipleChoices {
		return "", models.NewScrapeError(models.ErrCodeStorage,
			fmt.Sprintf("upload rejected with status %d: %s", res.StatusCode(), res.String()), nil)
	}
	return s.PublicURL(name), nil
}

// PublicURL is the unauthenticated download URL of name.
func (s *Supabase) PublicURL(name string) string {
	return s.baseURL + "/storage/v1/object/public/" + s.bucket + "/" + url.PathEscape(name)
}

func (s *Supabase) objectPath(name string) string {
	return "/storage/v1/object/" + s.bucket + "/" + url.PathEscape(name)
}
