// Package memory implements the Memory Store: the append-only history of
// relocation decisions and recorded outcomes, and the signals derived from it.
//
// A Store wraps one storage.DecisionStore backend. Reads never fail the
// caller's run: when the backend is missing or its data is corrupt, a Snapshot
// reads as an empty log and reports the reason through Err.
package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// ErrUnavailable indicates that the store has no usable backend.
var ErrUnavailable = errors.New("decision log unavailable")

// DefaultPendingWindow is how long a planned move counts as awaiting its
// outcome.
const DefaultPendingWindow = 24 * time.Hour

// Store is the Memory Store.
type Store struct {
	// backend persists entries; nil means memory is disabled.
	backend storage.DecisionStore

	// node generates entry IDs.
	node *snowflake.Node

	pendingWindow time.Duration
	now           func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPendingWindow sets how long a planned move stays pending.
func WithPendingWindow(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pendingWindow = d
		}
	}
}

// WithClock overrides the clock used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store over a backend.
//
// A nil backend is allowed: reads then see an empty log and writes fail with
// ErrUnavailable, so a planner can still run without memory.
//
// Parameters:
//   - backend: Decision log backend (may be nil)
//   - opts: Optional configuration
//
// Returns the store, or an error if the ID generator cannot be created.
func New(backend storage.DecisionStore, opts ...Option) (*Store, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("memory.New: %w", err)
	}

	s := &Store{
		backend:       backend,
		node:          node,
		pendingWindow: DefaultPendingWindow,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Available reports whether a backend is configured.
func (s *Store) Available() bool {
	return s.backend != nil
}

// PendingWindow returns the configured pending window.
func (s *Store) PendingWindow() time.Duration {
	return s.pendingWindow
}

// Append records one entry. It assigns the ID and, when unset, the timestamp.
// History is never overwritten.
func (s *Store) Append(ctx context.Context, entry *storage.Entry) error {
	if s.backend == nil {
		return ErrUnavailable
	}
	if entry.ID == 0 {
		entry.ID = s.node.Generate().Int64()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if entry.Kind == "" {
		entry.Kind = storage.KindOutcome
	}
	return s.backend.Append(ctx, entry)
}

// Filter selects entries in Query. Zero-valued fields match everything.
type Filter struct {
	// ProductID matches one product code.
	ProductID string

	// ProductName matches one product name, case-insensitively.
	ProductName string

	// Zone matches entries moving a product out of or into the zone.
	Zone string

	// Window keeps entries younger than the window (e.g. 30 days).
	Window time.Duration

	// Limit keeps only the most recent entries.
	Limit int
}

// Query returns the matching entries in chronological order.
//
// Unlike Snapshot, Query reports backend errors, including ErrCorrupt.
func (s *Store) Query(ctx context.Context, f Filter) ([]*storage.Entry, error) {
	if s.backend == nil {
		return nil, nil
	}
	opts := &storage.ListOptions{
		ProductID:   f.ProductID,
		ProductName: f.ProductName,
		Zone:        f.Zone,
		Limit:       f.Limit,
	}
	if f.Window > 0 {
		opts.Since = s.now().Add(-f.Window)
	}
	return s.backend.List(ctx, opts)
}

// Snapshot loads the whole log for one planning run.
//
// It never fails: a missing backend or a backend error yields an empty
// snapshot whose Err explains why.
func (s *Store) Snapshot(ctx context.Context) *Snapshot {
	snap := &Snapshot{pendingWindow: s.pendingWindow}
	if s.backend == nil {
		snap.err = ErrUnavailable
		return snap
	}
	entries, err := s.backend.List(ctx, nil)
	if err != nil {
		snap.err = err
		return snap
	}
	snap.entries = entries
	return snap
}

// Penalty returns the recency penalty of one product at now.
func (s *Store) Penalty(ctx context.Context, productID string, now time.Time) float64 {
	return s.Snapshot(ctx).Penalty(Ref{ID: productID}, now)
}

// Close closes the backend.
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
