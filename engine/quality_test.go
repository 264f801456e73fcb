package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strongText() string {
	return strings.Repeat("lorem ipsum dolor sit amet ", 10)
}

func TestDetector_ShortTextIsWeak(t *testing.T) {
	d := NewDetector(0)

	tests := []string{
		"",
		"   \n\t ",
		"short",
		strings.Repeat("a", 199),
		"  " + strings.Repeat("a", 199) + "    ",
		"captcha",
	}
	for _, text := range tests {
		assert.True(t, d.IsWeak(text), "expected weak for %q", text)
	}
}

func TestDetector_LengthFloorCountsCharacters(t *testing.T) {
	d := NewDetector(0)

	// 200 multi-byte runes pass even though len() in bytes is larger.
	assert.False(t, d.IsWeak(strings.Repeat("é", 200)))
	assert.True(t, d.IsWeak(strings.Repeat("é", 199)))
}

func TestDetector_BlockKeywordsAreWeak(t *testing.T) {
	d := NewDetector(0)
	base := strongText()
	assert.False(t, d.IsWeak(base))

	for _, kw := range []string{"CAPTCHA", "Verify You Are Human", "access denied", "Unusual Traffic", "BLOCKED"} {
		text := base + " " + kw + " " + base
		assert.True(t, d.IsWeak(text), "keyword %q should make content weak", kw)
		assert.Equal(t, strings.ToLower(kw), d.BlockKeyword(text))
	}
}

func TestDetector_ExtraKeywords(t *testing.T) {
	text := strongText() + " Security Check in progress"

	assert.False(t, NewDetector(0).IsWeak(text))
	assert.True(t, NewDetector(0, " Security Check ").IsWeak(text))
}

func TestDetector_CustomMinLength(t *testing.T) {
	d := NewDetector(10)
	assert.True(t, d.IsWeak("123456789"))
	assert.False(t, d.IsWeak("1234567890"))
}
