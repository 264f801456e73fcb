// Package ocr recognises text in page screenshots with a local tesseract
// installation.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/models"
)

// Tesseract runs the tesseract CLI against an image file.
type Tesseract struct {
	binary   string
	language string
	timeout  time.Duration
}

// NewTesseract creates a Tesseract from config. Empty fields fall back to
// "tesseract", "eng" and one minute.
func NewTesseract(cfg config.OCRConfig) *Tesseract {
	t := &Tesseract{binary: cfg.Binary, language: cfg.Language, timeout: cfg.Timeout}
	if t.binary == "" {
		t.binary = "tesseract"
	}
	if t.language == "" {
		t.language = "eng"
	}
	if t.timeout <= 0 {
		t.timeout = time.Minute
	}
	return t
}

// Args returns the command line used for imagePath (output goes to stdout).
func (t *Tesseract) Args(imagePath string) []string {
	return []string{imagePath, "stdout", "-l", t.language}
}

// Recognize returns the text tesseract finds in the image.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.binary, t.Args(imagePath)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "tesseract failed"
		}
		return "", models.NewScrapeError(models.ErrCodeOCR, msg, err)
	}
	return stdout.String(), nil
}

// Available reports whether the configured binary can be found in PATH.
func (t *Tesseract) Available() error {
	if _, err := exec.LookPath(t.binary); err != nil {
		return fmt.Errorf("ocr: %s not found: %w", t.binary, err)
	}
	return nil
}
