package memory

import (
	"math"
	"strings"
	"time"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// Ref identifies a product in the log. Entries recorded by hand may carry
// only a name, so a Ref matches by ID when both sides have one and by name
// (case-insensitively) otherwise.
type Ref struct {
	ID   string
	Name string
}

func (r Ref) matches(e *storage.Entry) bool {
	if r.ID != "" && e.ProductID != "" {
		return r.ID == e.ProductID
	}
	return r.Name != "" && strings.EqualFold(r.Name, e.ProductName)
}

// Snapshot is a read-only view of the log taken at the start of a run.
type Snapshot struct {
	entries       []*storage.Entry
	err           error
	pendingWindow time.Duration
}

// NewSnapshot builds a snapshot from entries in chronological order.
func NewSnapshot(entries []*storage.Entry, pendingWindow time.Duration) *Snapshot {
	if pendingWindow <= 0 {
		pendingWindow = DefaultPendingWindow
	}
	return &Snapshot{entries: entries, pendingWindow: pendingWindow}
}

// Err returns why the snapshot is empty, or nil when the log loaded.
func (s *Snapshot) Err() error {
	return s.err
}

// Entries returns every entry in chronological order.
func (s *Snapshot) Entries() []*storage.Entry {
	return s.entries
}

// Latest returns the most recent entry of a product.
func (s *Snapshot) Latest(ref Ref) (*storage.Entry, bool) {
	return s.latest(ref, "")
}

// LastMove returns the most recent planned move of a product.
func (s *Snapshot) LastMove(ref Ref) (*storage.Entry, bool) {
	return s.latest(ref, storage.KindPlanned)
}

func (s *Snapshot) latest(ref Ref, kind storage.EntryKind) (*storage.Entry, bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if kind != "" && e.Kind != kind {
			continue
		}
		if ref.matches(e) {
			return e, true
		}
	}
	return nil, false
}

// Penalty returns -1/(days+1), where days is the number of whole days since
// the product's most recent entry, or 0 when the product has no entry.
// Entries stamped in the future count as zero days old.
func (s *Snapshot) Penalty(ref Ref, now time.Time) float64 {
	e, ok := s.Latest(ref)
	if !ok {
		return 0
	}
	return -1 / (DaysSince(e.Timestamp, now) + 1)
}

// Pending reports whether the product's most recent entry is a planned move
// younger than the pending window, i.e. its outcome is still awaited.
func (s *Snapshot) Pending(ref Ref, now time.Time) bool {
	e, ok := s.Latest(ref)
	if !ok || e.Kind != storage.KindPlanned {
		return false
	}
	return now.Sub(e.Timestamp) < s.pendingWindow
}

// DaysSince returns the whole days elapsed from t to now, never negative.
func DaysSince(t, now time.Time) float64 {
	d := now.Sub(t)
	if d <= 0 {
		return 0
	}
	return math.Floor(d.Hours() / 24)
}
