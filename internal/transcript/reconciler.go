// Package transcript turns decoded stream events into mutations of exactly
// one assistant message, coalescing rapid token arrival into throttled
// commits so the presentation layer is never flooded.
package transcript

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sharondevs/echo-chat/internal/model/chat"
)

// DefaultCommitInterval caps how often accumulated state is pushed out while
// a stream is live. The trailing commit on stream end is always forced.
const DefaultCommitInterval = 100 * time.Millisecond

// StreamError is an in-band failure signaled by the backend after streaming
// began. Whatever partial content had accumulated is preserved alongside it.
type StreamError struct {
	Partial string
	Reason  string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream failed: %s", e.Reason)
}

// Commit is one flush of accumulated state for the target message. The
// generation lets the owner discard commits from abandoned streams.
type Commit struct {
	MessageID  string
	Generation uint64
	Content    string
	Sources    []string
	Metadata   *chat.StreamMetadata
}

// Reconciler accumulates one stream's output. Apply is driven by the stream
// consumer goroutine; the commit callback fires either from the throttle
// timer or from Finish, never more than once per interval while events flow.
type Reconciler struct {
	mu sync.Mutex

	// deliverMu is held across snapshot and callback delivery so commits
	// reach the owner in snapshot order. Without it a timer flush that
	// snapshotted before Finish could deliver after the trailing commit and
	// regress the message to a stale prefix.
	deliverMu sync.Mutex

	messageID  string
	generation uint64
	interval   time.Duration
	commit     func(Commit)

	text     strings.Builder
	sources  []string
	metadata *chat.StreamMetadata

	gotFirstToken bool
	failed        bool
	finished      bool
	timer         *time.Timer
}

// New binds a reconciler to the message it owns. A nil commit callback or a
// non-positive interval are normalized to safe values.
func New(messageID string, generation uint64, interval time.Duration, commit func(Commit)) *Reconciler {
	if interval <= 0 {
		interval = DefaultCommitInterval
	}
	if commit == nil {
		commit = func(Commit) {}
	}
	return &Reconciler{
		messageID:  messageID,
		generation: generation,
		interval:   interval,
		commit:     commit,
	}
}

// Apply folds one event into the accumulated state. It returns a
// *StreamError when the event carries an inline backend failure; the caller
// should stop consuming the stream at that point. Events applied after a
// failure or after Finish are ignored.
func (r *Reconciler) Apply(event chat.StreamEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failed || r.finished {
		return nil
	}

	if event.Err != "" {
		r.failed = true
		r.stopTimerLocked()
		return &StreamError{Partial: r.text.String(), Reason: event.Err}
	}

	if event.Text != "" {
		// The first token replaces the placeholder; everything after appends.
		if !r.gotFirstToken {
			r.gotFirstToken = true
			r.text.Reset()
		}
		r.text.WriteString(event.Text)
	}
	if len(event.Sources) > 0 {
		// Whole-list replacement: the backend sends complete lists, not deltas.
		r.sources = append([]string(nil), event.Sources...)
	}
	if event.Metadata != nil {
		r.metadata = event.Metadata
	}

	r.scheduleLocked()
	return nil
}

// Finish forces the trailing commit so the final accumulated state is never
// lost inside the last throttle window. A stream that produced no text
// commits empty content, clearing the placeholder. Idempotent.
func (r *Reconciler) Finish() {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return
	}
	r.finished = true
	r.stopTimerLocked()
	commit := r.snapshotLocked()
	r.mu.Unlock()

	r.commit(commit)
}

// scheduleLocked arms the single outstanding throttle timer. Rescheduling on
// every event means a commit lands one interval after the latest burst, and
// at most once per interval during sustained arrival.
func (r *Reconciler) scheduleLocked() {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.interval, r.flush)
}

func (r *Reconciler) flush() {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	r.mu.Lock()
	if r.failed || r.finished {
		r.mu.Unlock()
		return
	}
	commit := r.snapshotLocked()
	r.mu.Unlock()

	r.commit(commit)
}

func (r *Reconciler) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Reconciler) snapshotLocked() Commit {
	return Commit{
		MessageID:  r.messageID,
		Generation: r.generation,
		Content:    r.text.String(),
		Sources:    append([]string(nil), r.sources...),
		Metadata:   r.metadata,
	}
}
