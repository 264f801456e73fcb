package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScroller struct {
	height int
	err    error
	calls  int
}

func (s *stubScroller) ScrollBy(context.Context, int) (int, error) {
	s.calls++
	return s.height, s.err
}

func TestTriggerLazyLoad_StopsAtDocumentHeight(t *testing.T) {
	s := &stubScroller{height: 250}

	total, err := TriggerLazyLoad(context.Background(), s, LazyLoadOptions{Step: 100, Interval: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 3, s.calls)
	assert.Equal(t, 300, total)
}

func TestTriggerLazyLoad_MaxDurationGuard(t *testing.T) {
	s := &stubScroller{height: 1 << 30}

	start := time.Now()
	total, err := TriggerLazyLoad(context.Background(), s, LazyLoadOptions{
		Step:        100,
		Interval:    time.Millisecond,
		MaxDuration: 30 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.Positive(t, total)
	assert.Less(t, total, 1<<30)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestTriggerLazyLoad_ScrollError(t *testing.T) {
	s := &stubScroller{err: errors.New("target closed")}

	_, err := TriggerLazyLoad(context.Background(), s, LazyLoadOptions{Step: 100, Interval: time.Millisecond})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "target closed")
	assert.Equal(t, 1, s.calls)
}

func TestTriggerLazyLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TriggerLazyLoad(ctx, &stubScroller{height: 1000}, LazyLoadOptions{Interval: time.Hour})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestTriggerLazyLoad_Settles(t *testing.T) {
	s := &stubScroller{height: 50}

	start := time.Now()
	_, err := TriggerLazyLoad(context.Background(), s, LazyLoadOptions{
		Step:     100,
		Interval: time.Millisecond,
		Settle:   30 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}
