// Package progress tracks per-session pipeline progress and fans it out to
// stream subscribers.
package progress

import (
	"sync"
	"time"
)

// Stage values carried by Event.
const (
	StageRunning   = "running"
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// Event is one progress update.
type Event struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
	Stage   string `json:"stage"`
	Error   string `json:"error,omitempty"`
}

// Terminal reports whether no further events follow e.
func (e Event) Terminal() bool {
	return e.Percent >= 100 || e.Stage == StageFailed
}

// Tracker holds the latest event for one session. Each subscriber sees
// the most recent event; intermediate events may be coalesced for slow
// readers, the terminal event never is.
type Tracker struct {
	id string

	mu        sync.Mutex
	last      *Event
	done      bool
	updatedAt time.Time
	subs      map[chan Event]struct{}
	onDone    func()
}

func newTracker(id string, onDone func()) *Tracker {
	return &Tracker{
		id:        id,
		updatedAt: time.Now(),
		subs:      make(map[chan Event]struct{}),
		onDone:    onDone,
	}
}

// ID returns the session id.
func (t *Tracker) ID() string { return t.id }

// Report publishes a running event. It satisfies scraper.Reporter.
func (t *Tracker) Report(percent int, message string) {
	stage := StageRunning
	if percent >= 100 {
		stage = StageCompleted
	}
	t.Publish(Event{Percent: percent, Message: message, Stage: stage})
}

// Complete publishes the terminal success event.
func (t *Tracker) Complete(message string) {
	t.Publish(Event{Percent: 100, Message: message, Stage: StageCompleted})
}

// Fail publishes the terminal failure event.
func (t *Tracker) Fail(err error) {
	t.Publish(Event{Percent: 100, Message: "Failed", Stage: StageFailed, Error: err.Error()})
}

// Publish records e and delivers it to every subscriber. Events after the
// terminal one are dropped.
func (t *Tracker) Publish(e Event) {
	if e.Percent < 0 {
		e.Percent = 0
	}
	if e.Percent > 100 {
		e.Percent = 100
	}

	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.last = &e
	t.updatedAt = time.Now()
	for ch := range t.subs {
		deliver(ch, e)
	}

	var onDone func()
	if e.Terminal() {
		t.done = true
		for ch := range t.subs {
			close(ch)
			delete(t.subs, ch)
		}
		onDone = t.onDone
	}
	t.mu.Unlock()

	if onDone != nil {
		onDone()
	}
}

// deliver replaces any unread event in ch with e. ch has capacity 1 and is
// only written under the tracker lock.
func deliver(ch chan Event, e Event) {
	select {
	case <-ch:
	default:
	}
	ch <- e
}

// Subscribe returns a channel carrying the latest event followed by every
// later one. The channel is closed after the terminal event; a subscriber
// arriving after it receives that event and a closed channel. Call cancel
// to stop early.
func (t *Tracker) Subscribe() (events <-chan Event, cancel func()) {
	ch := make(chan Event, 1)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil {
		ch <- *t.last
	}
	if t.done {
		close(ch)
		return ch, func() {}
	}
	t.subs[ch] = struct{}{}

	return ch, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.subs[ch]; ok {
			delete(t.subs, ch)
			close(ch)
		}
	}
}

// Last returns the latest event, if any.
func (t *Tracker) Last() (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return Event{}, false
	}
	return *t.last, true
}

// Done reports whether the terminal event was published.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// idleSince reports whether t has no subscribers and no update since cutoff.
func (t *Tracker) idleSince(cutoff time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs) == 0 && t.updatedAt.Before(cutoff)
}
