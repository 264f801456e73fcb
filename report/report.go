// Package report renders an extraction result as a PDF document.
package report

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/use-agent/sitebrief/models"
)

const (
	font       = "Arial"
	margin     = 15.0
	bodySize   = 10.0
	lineHeight = 5.0
)

// Render lays out the brand heading, the source URL and the extracted
// content on A4 pages and returns the PDF bytes. Text is translated to
// cp1252; runes outside it are dropped by the core fonts.
func Render(result *models.ExtractionResult, sourceURL string) ([]byte, error) {
	if result == nil {
		return nil, models.NewScrapeError(models.ErrCodeReport, "nothing to render", nil)
	}

	heading := Heading(result, sourceURL)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(heading, true)
	pdf.SetCreator("sitebrief", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(font, "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(font, "B", 16)
	pdf.MultiCell(0, 8, tr(heading), "", "L", false)

	pdf.SetFont(font, "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, lineHeight, tr("Source: "+sourceURL), "", "L", false)
	if !result.Failed() {
		pdf.MultiCell(0, lineHeight, tr("Extracted via: "+string(result.Strategy)), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(font, "", bodySize)
	for _, line := range strings.Split(result.Content, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			pdf.Ln(lineHeight / 2)
			continue
		}
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeReport, "failed to lay out PDF", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeReport, "failed to write PDF", err)
	}
	return buf.Bytes(), nil
}

// Heading is the document title: the brand, else the source host without
// a leading "www.", else a generic title.
func Heading(result *models.ExtractionResult, sourceURL string) string {
	if result != nil && result.Brand != "" {
		return result.Brand
	}
	if u, err := url.Parse(sourceURL); err == nil && u.Hostname() != "" {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return "Website summary"
}
