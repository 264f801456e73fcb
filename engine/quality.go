package engine

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinLength is the trimmed character count below which content is weak.
const DefaultMinLength = 200

// DefaultBlockKeywords mark anti-bot interstitials. Matching is
// case-insensitive substring matching.
var DefaultBlockKeywords = []string{
	"captcha",
	"verify you are human",
	"access denied",
	"unusual traffic",
	"blocked",
}

// Detector classifies candidate content as weak or strong. It is the only
// gate deciding whether the chain advances to the next strategy.
type Detector struct {
	MinLength int
	Keywords  []string
}

// NewDetector builds a Detector with the default keyword set plus extra.
// A non-positive minLength selects DefaultMinLength.
func NewDetector(minLength int, extra ...string) *Detector {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	keywords := make([]string, 0, len(DefaultBlockKeywords)+len(extra))
	keywords = append(keywords, DefaultBlockKeywords...)
	for _, k := range extra {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &Detector{MinLength: minLength, Keywords: keywords}
}

// IsWeak reports whether text is too short or looks like a blocking page.
func (d *Detector) IsWeak(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < d.MinLength {
		return true
	}
	return d.BlockKeyword(trimmed) != ""
}

// BlockKeyword returns the first blocking keyword found in text, or "".
func (d *Detector) BlockKeyword(text string) string {
	lower := strings.ToLower(text)
	for _, k := range d.Keywords {
		if strings.Contains(lower, k) {
			return k
		}
	}
	return ""
}
