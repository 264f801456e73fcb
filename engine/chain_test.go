package engine

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sitebrief/models"
)

type fakePage struct {
	innerText string
	innerErr  error
	html      string
	htmlErr   error
	shotErr   error

	innerCalls int
	htmlCalls  int
	shotCalls  int
	shotPaths  []string
}

func (p *fakePage) InnerText(context.Context) (string, error) {
	p.innerCalls++
	return p.innerText, p.innerErr
}

func (p *fakePage) HTML(context.Context) (string, error) {
	p.htmlCalls++
	return p.html, p.htmlErr
}

func (p *fakePage) Screenshot(_ context.Context, path string) error {
	p.shotCalls++
	p.shotPaths = append(p.shotPaths, path)
	if p.shotErr != nil {
		return p.shotErr
	}
	return os.WriteFile(path, []byte("png"), 0o600)
}

type fakeRecognizer struct {
	text  string
	err   error
	calls int
	saw   []string
}

func (r *fakeRecognizer) Recognize(_ context.Context, path string) (string, error) {
	r.calls++
	if _, err := os.Stat(path); err == nil {
		r.saw = append(r.saw, path)
	}
	return r.text, r.err
}

type fakeReader struct {
	text string
	err  error
	urls []string
}

func (r *fakeReader) Read(_ context.Context, url string) (string, error) {
	r.urls = append(r.urls, url)
	return r.text, r.err
}

func newTestChain(t *testing.T, rec *fakeRecognizer, rd *fakeReader) *Chain {
	return NewDefaultChain(NewDetector(0), rec, rd, t.TempDir())
}

func TestChain_Order(t *testing.T) {
	c := newTestChain(t, &fakeRecognizer{}, &fakeReader{})
	assert.Equal(t, []models.Strategy{
		models.StrategyInnerText,
		models.StrategyRawHTML,
		models.StrategyOCR,
		models.StrategyRemoteReader,
	}, c.Strategies())
}

func TestChain_ShortCircuitsOnStrongInnerText(t *testing.T) {
	page := &fakePage{innerText: "\n  " + strongText() + "  \n"}
	rec := &fakeRecognizer{}
	rd := &fakeReader{}
	c := newTestChain(t, rec, rd)

	res := c.Run(context.Background(), &Target{URL: "https://example.com", Page: page}, nil)

	assert.Equal(t, models.StrategyInnerText, res.Strategy)
	assert.Equal(t, strings.TrimSpace(strongText()), res.Content)
	assert.Equal(t, 1, page.innerCalls)
	assert.Zero(t, page.htmlCalls)
	assert.Zero(t, page.shotCalls)
	assert.Zero(t, rec.calls)
	assert.Empty(t, rd.urls)
	require.Len(t, res.Attempts, 1)
	assert.False(t, res.Attempts[0].Weak)
}

func TestChain_FallsBackToRawHTML(t *testing.T) {
	page := &fakePage{
		innerText: "tiny",
		html:      "<html><body><script>x()</script><p>" + strongText() + "</p></body></html>",
	}
	rec := &fakeRecognizer{}
	rd := &fakeReader{}
	c := newTestChain(t, rec, rd)

	res := c.Run(context.Background(), &Target{URL: "https://example.com", Page: page}, nil)

	assert.Equal(t, models.StrategyRawHTML, res.Strategy)
	assert.NotContains(t, res.Content, "x()")
	assert.Zero(t, page.shotCalls)
	assert.Empty(t, rd.urls)
}

func TestChain_KeywordOnStrongLengthStillFallsBack(t *testing.T) {
	blocked := strongText() + " Please complete the CAPTCHA to continue."
	page := &fakePage{
		innerText: blocked,
		html:      "<p>" + blocked + "</p>",
	}
	rec := &fakeRecognizer{text: strongText()}
	rd := &fakeReader{}
	c := newTestChain(t, rec, rd)

	res := c.Run(context.Background(), &Target{URL: "https://example.com", Page: page}, nil)

	assert.Equal(t, models.StrategyOCR, res.Strategy)
	assert.Equal(t, 1, rec.calls)
	assert.Empty(t, rd.urls)
	require.Len(t, res.Attempts, 3)
	assert.True(t, res.Attempts[0].Weak)
	assert.True(t, res.Attempts[1].Weak)
	assert.False(t, res.Attempts[2].Weak)
}

func TestChain_FullFallbackInvokesReaderOnce(t *testing.T) {
	page := &fakePage{innerText: "weak", html: "<p>also weak</p>"}
	rec := &fakeRecognizer{text: "ocr weak"}
	rd := &fakeReader{text: "  reader text  "}
	c := newTestChain(t, rec, rd)

	res := c.Run(context.Background(), &Target{URL: "https://example.com/a", Page: page}, nil)

	assert.Equal(t, []string{"https://example.com/a"}, rd.urls)
	assert.Equal(t, models.StrategyRemoteReader, res.Strategy)
	// Terminal step output is returned even though it is weak.
	assert.Equal(t, "reader text", res.Content)
	require.Len(t, res.Attempts, 4)
	assert.True(t, res.Attempts[3].Weak)
}

func TestChain_FaultyStepsCountAsEmpty(t *testing.T) {
	page := &fakePage{
		innerErr: errors.New("evaluation failed"),
		htmlErr:  errors.New("target closed"),
		shotErr:  errors.New("disk full"),
	}
	rec := &fakeRecognizer{}
	rd := &fakeReader{err: errors.New("connection refused")}
	c := newTestChain(t, rec, rd)

	res := c.Run(context.Background(), &Target{URL: "https://example.com", Page: page}, nil)

	assert.Equal(t, models.StrategyRemoteReader, res.Strategy)
	assert.Equal(t, "", res.Content)
	assert.Zero(t, rec.calls, "recognizer must not run without a screenshot")
	assert.Len(t, rd.urls, 1)
	require.Len(t, res.Attempts, 4)
	for _, a := range res.Attempts {
		assert.NotEmpty(t, a.Error, "strategy %s", a.Strategy)
		assert.True(t, a.Weak)
	}
}

func TestChain_OCRScreenshotIsTemporary(t *testing.T) {
	page := &fakePage{innerText: "weak", html: "<p>weak</p>"}
	rec := &fakeRecognizer{text: strongText()}
	c := newTestChain(t, rec, &fakeReader{})

	res := c.Run(context.Background(), &Target{URL: "https://example.com", Page: page}, nil)

	require.Equal(t, models.StrategyOCR, res.Strategy)
	require.Len(t, page.shotPaths, 1)
	assert.Equal(t, page.shotPaths, rec.saw, "recognizer reads the screenshot file")
	_, err := os.Stat(page.shotPaths[0])
	assert.True(t, os.IsNotExist(err), "screenshot must be removed after OCR")
}

func TestChain_StepCallback(t *testing.T) {
	page := &fakePage{innerText: "weak", html: "<p>" + strongText() + "</p>"}
	c := newTestChain(t, &fakeRecognizer{}, &fakeReader{})

	var steps []models.Strategy
	c.Run(context.Background(), &Target{URL: "https://example.com", Page: page},
		func(s models.Strategy, index, total int) {
			assert.Equal(t, 4, total)
			assert.Equal(t, len(steps), index)
			steps = append(steps, s)
		})

	assert.Equal(t, []models.Strategy{models.StrategyInnerText, models.StrategyRawHTML}, steps)
}

func TestChain_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &fakePage{innerText: strongText()}
	c := newTestChain(t, &fakeRecognizer{}, &fakeReader{})
	res := c.Run(ctx, &Target{URL: "https://example.com", Page: page}, nil)

	assert.Equal(t, models.StrategyNone, res.Strategy)
	assert.Contains(t, res.Content, models.ErrorContentPrefix)
	assert.Zero(t, page.innerCalls)
}

func TestChain_IdempotentSelection(t *testing.T) {
	c := newTestChain(t, &fakeRecognizer{text: "weak"}, &fakeReader{})

	run := func() *models.ExtractionResult {
		page := &fakePage{innerText: "weak", html: "<p>" + strongText() + "</p>"}
		return c.Run(context.Background(), &Target{URL: "https://example.com", Page: page}, nil)
	}

	first, second := run(), run()
	assert.Equal(t, first.Strategy, second.Strategy)
	assert.Equal(t, first.Content, second.Content)
}
