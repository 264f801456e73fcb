package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/models"
)

// FilesRoute is where the API serves the local output directory.
const FilesRoute = "/files"

// Local writes objects into a directory served by the API under FilesRoute.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates a Local uploader from config.
func NewLocal(cfg config.StorageConfig) *Local {
	dir := cfg.OutputDir
	if dir == "" {
		dir = "outputs"
	}
	return &Local{dir: dir, baseURL: cfg.PublicBaseURL}
}

// Dir returns the output directory.
func (l *Local) Dir() string { return l.dir }

// Upload writes data to dir/name and returns its URL under FilesRoute.
func (l *Local) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", models.NewScrapeError(models.ErrCodeStorage, "upload canceled", err)
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", models.NewScrapeError(models.ErrCodeStorage, "failed to create output directory", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", models.NewScrapeError(models.ErrCodeStorage, "failed to write file", err)
	}
	return l.baseURL + FilesRoute + "/" + url.PathEscape(name), nil
}
