package progress

import (
	"log/slog"
	"sync"
	"time"
)

// Hub owns the trackers of in-flight sessions. Trackers are created on
// first use and removed Retention after their terminal event, or by the
// sweep once abandoned.
type Hub struct {
	mu        sync.Mutex
	trackers  map[string]*Tracker
	retention time.Duration
	idle      time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHub creates a Hub and starts its sweep loop. Call Stop on shutdown.
func NewHub(retention, idle time.Duration) *Hub {
	if retention <= 0 {
		retention = 2 * time.Minute
	}
	if idle <= 0 {
		idle = 5 * time.Minute
	}
	h := &Hub{
		trackers:  make(map[string]*Tracker),
		retention: retention,
		idle:      idle,
		stopCh:    make(chan struct{}),
	}
	go h.sweepLoop()
	return h
}

// Acquire returns the tracker for id, creating it when absent. Progress
// subscribers use it so they can attach before the run starts.
func (h *Hub) Acquire(id string) *Tracker {
	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.trackers[id]; ok {
		return t
	}
	return h.newLocked(id)
}

// Start returns the tracker for a run that is starting under id. A tracker
// left over from a finished run with the same id is replaced, so a retry
// does not publish into a tracker that already saw its terminal event.
func (h *Hub) Start(id string) *Tracker {
	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.trackers[id]; ok && !t.Done() {
		return t
	}
	return h.newLocked(id)
}

func (h *Hub) newLocked(id string) *Tracker {
	var t *Tracker
	t = newTracker(id, func() {
		time.AfterFunc(h.retention, func() { h.remove(id, t) })
	})
	h.trackers[id] = t
	return t
}

// Get returns the tracker for id without creating one.
func (h *Hub) Get(id string) (*Tracker, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	t, ok := h.trackers[id]
	return t, ok
}

// Len returns the number of live trackers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.trackers)
}

// remove drops id only while it still maps to t, so a tracker re-created
// under the same id survives an older tracker's teardown.
func (h *Hub) remove(id string, t *Tracker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.trackers[id]; ok && cur == t {
		delete(h.trackers, id)
	}
}

// Sweep removes trackers with no subscribers and no event since cutoff.
// It returns how many were removed.
func (h *Hub) Sweep(cutoff time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for id, t := range h.trackers {
		if t.idleSince(cutoff) {
			delete(h.trackers, id)
			n++
		}
	}
	return n
}

// Stop ends the sweep loop.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

func (h *Hub) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			if n := h.Sweep(time.Now().Add(-h.idle)); n > 0 {
				slog.Debug("progress: swept idle trackers", "count", n)
			}
		}
	}
}
