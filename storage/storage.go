// Package storage uploads generated PDFs and returns their public URLs.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/models"
)

// Uploader stores an object and returns a URL where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (publicURL string, err error)
}

var validName = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// ValidateName rejects object names that could escape the bucket or the
// output directory.
func ValidateName(name string) error {
	if len(name) > 200 || !validName.MatchString(name) {
		return models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("invalid object name %q", name), nil)
	}
	return nil
}

// New returns the Supabase uploader when credentials are configured and
// the local directory uploader otherwise.
func New(cfg config.StorageConfig) Uploader {
	if cfg.UseSupabase() {
		slog.Info("storage: using Supabase", "bucket", cfg.Bucket)
		return NewSupabase(cfg)
	}
	slog.Info("storage: using local directory", "dir", cfg.OutputDir)
	return NewLocal(cfg)
}
