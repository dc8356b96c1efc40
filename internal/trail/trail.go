// Package trail keeps a bounded in-memory record of completed catcher chain
// passes so tooling can answer "what happened to that report" after the
// fact. The recorder rotates out the oldest entries when full.
package trail

import (
	"sync"
	"time"

	"github.com/accellera-official/uvm-core/catchers"
)

// Entry is one recorded chain pass.
type Entry struct {
	Seq       uint64
	Timestamp time.Time
	Pass      catchers.PassRecord
}

// Recorder implements catchers.TrailRecorder over a rotating in-memory
// buffer with trace and scope indexes.
type Recorder struct {
	mu            sync.RWMutex
	entries       []*Entry
	byTraceID     map[string][]*Entry
	byScope       map[string][]*Entry
	maxEntries    int
	rotatePercent float64
	seq           uint64
}

// RecorderOption configures the recorder.
type RecorderOption func(*Recorder)

// WithMaxEntries sets the buffer capacity.
func WithMaxEntries(max int) RecorderOption {
	return func(r *Recorder) {
		r.maxEntries = max
	}
}

// WithRotatePercent sets the fraction of entries dropped when the buffer is
// full.
func WithRotatePercent(percent float64) RecorderOption {
	return func(r *Recorder) {
		r.rotatePercent = percent
	}
}

// NewRecorder creates a recorder holding up to 4096 passes by default.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		byTraceID:     make(map[string][]*Entry),
		byScope:       make(map[string][]*Entry),
		maxEntries:    4096,
		rotatePercent: 0.2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordPass implements catchers.TrailRecorder.
func (r *Recorder) RecordPass(rec catchers.PassRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.maxEntries {
		r.rotate()
	}

	r.seq++
	entry := &Entry{
		Seq:       r.seq,
		Timestamp: time.Now().UTC(),
		Pass:      rec,
	}
	r.entries = append(r.entries, entry)

	if rec.TraceID != "" {
		r.byTraceID[rec.TraceID] = append(r.byTraceID[rec.TraceID], entry)
	}
	if rec.Scope != "" {
		r.byScope[rec.Scope] = append(r.byScope[rec.Scope], entry)
	}
}

// Len returns the number of buffered passes.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ByTraceID returns every buffered pass of the given report trace, oldest
// first.
func (r *Recorder) ByTraceID(traceID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyEntries(r.byTraceID[traceID], 0)
}

// ByScope returns the most recent passes for an owner scope, oldest first.
// A limit of zero returns them all.
func (r *Recorder) ByScope(scope string, limit int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyEntries(r.byScope[scope], limit)
}

// Recent returns the most recent passes, oldest first. A limit of zero
// returns the whole buffer.
func (r *Recorder) Recent(limit int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyEntries(r.entries, limit)
}

// CaughtRecent returns the most recent passes whose report was caught,
// oldest first.
func (r *Recorder) CaughtRecent(limit int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var caught []*Entry
	for _, e := range r.entries {
		if e.Pass.Caught {
			caught = append(caught, e)
		}
	}
	return copyEntries(caught, limit)
}

// Clear drops entries older than the given age and returns how many went.
func (r *Recorder) Clear(olderThan time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	kept := make([]*Entry, 0, len(r.entries))
	removed := 0
	for _, e := range r.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		} else {
			removed++
		}
	}
	r.entries = kept
	r.rebuildIndexes()
	return removed
}

func (r *Recorder) rotate() {
	removeCount := int(float64(r.maxEntries) * r.rotatePercent)
	if removeCount < 1 {
		removeCount = 1
	}
	r.entries = r.entries[removeCount:]
	r.rebuildIndexes()
}

func (r *Recorder) rebuildIndexes() {
	r.byTraceID = make(map[string][]*Entry)
	r.byScope = make(map[string][]*Entry)
	for _, e := range r.entries {
		if e.Pass.TraceID != "" {
			r.byTraceID[e.Pass.TraceID] = append(r.byTraceID[e.Pass.TraceID], e)
		}
		if e.Pass.Scope != "" {
			r.byScope[e.Pass.Scope] = append(r.byScope[e.Pass.Scope], e)
		}
	}
}

func copyEntries(entries []*Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return out
}

var _ catchers.TrailRecorder = (*Recorder)(nil)
