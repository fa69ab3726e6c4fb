package encounter

import (
	"sort"
	"sync"
	"time"
)

// Handle identifies a scheduled timeline entry so it can be cancelled.
type Handle uint64

// Timeline is a monotonic logical clock for sequencing delayed callbacks
// against simulation time rather than wall time. It owns no goroutines and
// no timers; entries only fire when Advance is called, so suspending the
// tick loop freezes the timeline with it.
//
// All methods are safe for concurrent use. Callbacks run outside the
// timeline's lock, on the goroutine that called Advance, and must not call
// back into the Experience that drives the timeline.
type Timeline struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  Handle
	entries []*timelineEntry
}

type timelineEntry struct {
	id  Handle
	due time.Duration
	seq uint64
	fn  func()
}

// NewTimeline creates an empty timeline at logical time zero.
func NewTimeline() *Timeline {
	return &Timeline{nextID: 1}
}

// Schedule registers fn to fire once delay of logical time has been
// advanced. A non-positive delay fires on the next Advance call.
//
// Precondition: fn must be non-nil.
// Postcondition: Returns a handle usable with Cancel until fn fires.
func (t *Timeline) Schedule(delay time.Duration, fn func()) Handle {
	if fn == nil {
		panic("encounter: timeline callback must not be nil")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.entries = append(t.entries, &timelineEntry{
		id:  id,
		due: t.now + delay,
		seq: uint64(id),
		fn:  fn,
	})
	return id
}

// Cancel discards a pending entry. It reports whether the entry was still
// pending; cancelling an already-fired or unknown handle is a no-op.
func (t *Timeline) Cancel(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.entries {
		if e.id == h {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAll discards every pending entry without firing it. Entries already
// collected by an in-flight Advance still fire.
func (t *Timeline) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

// Pending reports how many entries are scheduled but not yet fired.
func (t *Timeline) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Now returns the timeline's logical time, the sum of all advanced deltas.
func (t *Timeline) Now() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

// Advance moves logical time forward by dt and fires every entry that has
// come due, ordered by due time with ties broken by scheduling order.
// Entries scheduled from inside a firing callback wait for the next
// Advance even if their delay is non-positive.
//
// Precondition: dt must be >= 0.
func (t *Timeline) Advance(dt time.Duration) {
	if dt < 0 {
		panic("encounter: timeline cannot advance backwards")
	}

	t.mu.Lock()
	t.now += dt
	var due []*timelineEntry
	remaining := t.entries[:0]
	for _, e := range t.entries {
		if e.due <= t.now {
			due = append(due, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	t.entries = remaining
	t.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, e := range due {
		e.fn()
	}
}
