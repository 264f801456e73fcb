package scraper

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sitebrief/brand"
	"github.com/use-agent/sitebrief/config"
	"github.com/use-agent/sitebrief/engine"
	"github.com/use-agent/sitebrief/models"
)

type fakeSession struct {
	mu sync.Mutex

	navErr    error
	innerText string
	html      string
	siteName  string
	height    int
	panicText bool

	navigated []string
	scrolls   int
	overlays  int
	closes    int
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigated = append(f.navigated, url)
	return f.navErr
}

func (f *fakeSession) ScrollBy(_ context.Context, _ int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls++
	return f.height, nil
}

func (f *fakeSession) RemoveOverlays(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overlays++
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeSession) InnerText(context.Context) (string, error) {
	if f.panicText {
		panic("renderer crashed")
	}
	return f.innerText, nil
}

func (f *fakeSession) HTML(context.Context) (string, error) { return f.html, nil }

func (f *fakeSession) Screenshot(context.Context, string) error {
	return errors.New("no screenshots in tests")
}

func (f *fakeSession) Title(context.Context) (string, error) { return "", nil }

func (f *fakeSession) MetaContent(context.Context, string) (string, error) {
	return f.siteName, nil
}

func (f *fakeSession) FindImage(context.Context, string) (brand.Image, bool, error) {
	return brand.Image{}, false, nil
}

func (f *fakeSession) FooterText(context.Context) (string, error) { return "", nil }

func (f *fakeSession) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

type fakeOpener struct {
	sess  *fakeSession
	err   error
	opens int
}

func (o *fakeOpener) Open(context.Context) (Session, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.sess, nil
}

type recordingReporter struct {
	mu       sync.Mutex
	percents []int
	messages []string
}

func (r *recordingReporter) Report(percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percents = append(r.percents, percent)
	r.messages = append(r.messages, message)
}

func strongText() string {
	return strings.Repeat("lorem ipsum dolor sit amet ", 10)
}

func newTestScraper(opener Opener, maxSessions int) *Scraper {
	chain := engine.NewChain(engine.NewDetector(0), engine.InnerText{}, engine.RawHTML{})
	cfg := config.ScraperConfig{
		ScrollStep:        100,
		ScrollInterval:    time.Millisecond,
		ScrollMaxDuration: time.Second,
		RemoveOverlays:    true,
	}
	return New(opener, chain, cfg, maxSessions)
}

func TestExtract_Success(t *testing.T) {
	sess := &fakeSession{innerText: strongText(), siteName: "Acme", height: 300}
	s := newTestScraper(&fakeOpener{sess: sess}, 2)
	rep := &recordingReporter{}

	res := s.Extract(context.Background(), models.ExtractionRequest{URL: "https://acme.test", SessionID: "s1"}, rep)

	require.NotNil(t, res)
	assert.Equal(t, models.StrategyInnerText, res.Strategy)
	assert.Equal(t, strings.TrimSpace(strongText()), res.Content)
	assert.Equal(t, "Acme", res.Brand)
	assert.Equal(t, []string{"https://acme.test"}, sess.navigated)
	assert.Equal(t, 3, sess.scrolls)
	assert.Equal(t, 1, sess.overlays)
	assert.Equal(t, 1, sess.closeCount())

	require.NotEmpty(t, rep.percents)
	assert.IsNonDecreasing(t, rep.percents)
	assert.Equal(t, PercentExtracted, rep.percents[len(rep.percents)-1])
	assert.Equal(t, models.SessionStats{MaxSessions: 2, ActiveSessions: 0}, s.Stats())
}

func TestExtract_FallsBackToRawHTML(t *testing.T) {
	sess := &fakeSession{
		innerText: "Loading...",
		html:      "<html><body><p>" + strongText() + "</p></body></html>",
		height:    100,
	}
	s := newTestScraper(&fakeOpener{sess: sess}, 1)

	res := s.Extract(context.Background(), models.ExtractionRequest{URL: "https://spa.test"}, nil)

	assert.Equal(t, models.StrategyRawHTML, res.Strategy)
	assert.Contains(t, res.Content, "lorem ipsum")
	require.Len(t, res.Attempts, 2)
	assert.True(t, res.Attempts[0].Weak)
	assert.Equal(t, 1, sess.closeCount())
}

func TestExtract_NavigationFailureClosesSessionOnce(t *testing.T) {
	sess := &fakeSession{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	s := newTestScraper(&fakeOpener{sess: sess}, 1)

	res := s.Extract(context.Background(), models.ExtractionRequest{URL: "https://nope.invalid"}, nil)

	assert.True(t, res.Failed())
	assert.True(t, strings.HasPrefix(res.Content, models.ErrorContentPrefix))
	assert.Contains(t, res.Content, "ERR_NAME_NOT_RESOLVED")
	assert.Empty(t, res.Brand)
	assert.Zero(t, sess.scrolls)
	assert.Equal(t, 1, sess.closeCount())
}

func TestExtract_OpenFailure(t *testing.T) {
	opener := &fakeOpener{err: models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", errors.New("exec: chromium"))}
	s := newTestScraper(opener, 1)

	res := s.Extract(context.Background(), models.ExtractionRequest{URL: "https://acme.test"}, nil)

	assert.True(t, res.Failed())
	assert.True(t, strings.HasPrefix(res.Content, models.ErrorContentPrefix))
	assert.Contains(t, res.Content, "failed to launch browser")
	assert.Equal(t, 1, opener.opens)
}

func TestExtract_PanicIsContained(t *testing.T) {
	sess := &fakeSession{panicText: true, height: 100}
	s := newTestScraper(&fakeOpener{sess: sess}, 1)

	var res *models.ExtractionResult
	require.NotPanics(t, func() {
		res = s.Extract(context.Background(), models.ExtractionRequest{URL: "https://acme.test"}, nil)
	})

	assert.True(t, res.Failed())
	assert.Contains(t, res.Content, "renderer crashed")
	assert.Equal(t, 1, sess.closeCount())
	assert.Equal(t, 0, s.Stats().ActiveSessions)
}

func TestExtract_CancelledWhileWaitingForSlot(t *testing.T) {
	opener := &fakeOpener{sess: &fakeSession{}}
	s := newTestScraper(opener, 1)
	s.slots <- struct{}{} // occupy the only slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.Extract(ctx, models.ExtractionRequest{URL: "https://acme.test"}, nil)

	assert.True(t, res.Failed())
	assert.Zero(t, opener.opens)
}
