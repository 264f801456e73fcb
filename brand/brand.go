// Package brand recovers a human-readable site or brand name from a rendered
// page. Each heuristic is independent; Resolve tries them in priority order
// and stops at the first non-empty answer.
package brand

import (
	"context"
	"log/slog"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// Selectors used against the live page.
const (
	MetaSelector = `meta[property="og:site_name"], meta[name="application-name"]`
	LogoSelector = `img[alt*="logo"], img[src*="logo"]`
)

// TitleDelimiters are checked in this order; the first one present in the
// title splits it.
var TitleDelimiters = []string{"|", "-", "»", ":"}

var (
	copyrightPattern = regexp.MustCompile(`©\s*(.*?)\s*\d{4}`)
	nonLetters       = regexp.MustCompile(`[^a-zA-Z ]`)
)

// Image is the subset of an <img> element the logo heuristic needs.
type Image struct {
	Alt string
	Src string
}

// PageView is the read-only page capability the heuristics operate on.
type PageView interface {
	Title(ctx context.Context) (string, error)

	// MetaContent returns the content attribute of the first element
	// matching selector, or "" when none matches.
	MetaContent(ctx context.Context, selector string) (string, error)

	// FindImage returns the first <img> matching selector.
	FindImage(ctx context.Context, selector string) (Image, bool, error)

	// FooterText returns the rendered text of the first <footer>, or "".
	FooterText(ctx context.Context) (string, error)
}

// Resolve runs the heuristics in order: meta tags, title, logo, footer.
// It never fails: a fault in any step is logged and yields "".
func Resolve(ctx context.Context, v PageView) string {
	name, err := resolve(ctx, v)
	if err != nil {
		slog.Warn("brand extraction failed", "error", err)
		return ""
	}
	return name
}

func resolve(ctx context.Context, v PageView) (string, error) {
	meta, err := v.MetaContent(ctx, MetaSelector)
	if err != nil {
		return "", err
	}
	if name := strings.TrimSpace(meta); name != "" {
		return name, nil
	}

	title, err := v.Title(ctx)
	if err != nil {
		return "", err
	}
	if name := FromTitle(title); name != "" {
		return name, nil
	}

	img, found, err := v.FindImage(ctx, LogoSelector)
	if err != nil {
		return "", err
	}
	if found {
		if name := FromLogo(img); name != "" {
			return name, nil
		}
	}

	footer, err := v.FooterText(ctx)
	if err != nil {
		return "", err
	}
	return FromFooter(footer), nil
}

// FromTitle returns the part of title before the first delimiter found, or
// the whole trimmed title when it has none.
func FromTitle(title string) string {
	for _, sep := range TitleDelimiters {
		if before, _, ok := strings.Cut(title, sep); ok {
			return strings.TrimSpace(before)
		}
	}
	return strings.TrimSpace(title)
}

// FromLogo prefers the alt text and otherwise derives a name from the image
// filename: extension dropped, non-letters replaced by spaces.
func FromLogo(img Image) string {
	if alt := strings.TrimSpace(img.Alt); alt != "" {
		return alt
	}
	if img.Src == "" {
		return ""
	}

	p := img.Src
	if u, err := url.Parse(img.Src); err == nil {
		p = u.Path
	}
	stem, _, _ := strings.Cut(path.Base(p), ".")
	return strings.Join(strings.Fields(nonLetters.ReplaceAllString(stem, " ")), " ")
}

// FromFooter extracts the holder of a "© Name 2023" style notice.
func FromFooter(text string) string {
	m := copyrightPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
