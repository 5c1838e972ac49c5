// Package storage provides interfaces and types for decision log backends.
//
// It defines the DecisionStore interface that all log implementations must
// satisfy (JSON file, SQLite, PostgreSQL, OceanBase), along with the entry
// type and query options.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrCorrupt indicates that persisted log data exists but cannot be parsed.
// Backends never delete or overwrite corrupt data.
var ErrCorrupt = errors.New("decision log corrupt")

// EntryKind distinguishes planner decisions from recorded outcomes.
type EntryKind string

const (
	// KindPlanned is written by the planner when it assigns a product.
	KindPlanned EntryKind = "planned"

	// KindOutcome is written when a relocation outcome is recorded.
	KindOutcome EntryKind = "outcome"
)

// Entry is one immutable decision log record.
type Entry struct {
	// ID is the unique identifier of the entry (snowflake).
	ID int64 `json:"id"`

	// Kind tells planner decisions and recorded outcomes apart.
	Kind EntryKind `json:"kind"`

	// ProductID is the stable product code. Entries recorded by name only
	// leave it empty.
	ProductID string `json:"product_id,omitempty"`

	// ProductName is the display name of the product.
	ProductName string `json:"product_name"`

	// OldZone is the zone the product was moved from.
	OldZone string `json:"old_zone"`

	// NewZone is the zone the product was moved to.
	NewZone string `json:"new_zone"`

	// SalesSnapshot is the destination zone's sales at decision time.
	SalesSnapshot float64 `json:"sales_snapshot,omitempty"`

	// Outcome is the free-text outcome description.
	Outcome string `json:"outcome_description"`

	// Timestamp is when the decision or outcome was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// DecisionStore defines the interface for decision log backends.
//
// Stores are append-only: there is no update or delete.
type DecisionStore interface {
	// Append persists one entry. The entry must already carry its ID and
	// timestamp.
	Append(ctx context.Context, entry *Entry) error

	// List returns the entries matching opts in chronological order (ties by
	// ID). A nil opts matches everything.
	//
	// Backends return an error wrapping ErrCorrupt when the persisted log
	// cannot be parsed.
	List(ctx context.Context, opts *ListOptions) ([]*Entry, error)

	// Close closes the store and releases resources.
	Close() error
}

// ListOptions filters List results. Zero-valued fields match everything.
type ListOptions struct {
	// ProductID matches entries of one product code.
	ProductID string

	// ProductName matches entries of one product name, case-insensitively.
	ProductName string

	// Zone matches entries whose old or new zone equals the given zone.
	Zone string

	// Since drops entries recorded before this instant.
	Since time.Time

	// Limit keeps only the most recent Limit entries (0 means no limit).
	Limit int
}

// Match reports whether an entry satisfies the filter.
//
// Backends that cannot express every filter in their query language apply
// Match to the rows they load.
func (o *ListOptions) Match(e *Entry) bool {
	if o == nil {
		return true
	}
	if o.ProductID != "" && e.ProductID != o.ProductID {
		return false
	}
	if o.ProductName != "" && !strings.EqualFold(e.ProductName, o.ProductName) {
		return false
	}
	if o.Zone != "" && e.OldZone != o.Zone && e.NewZone != o.Zone {
		return false
	}
	if !o.Since.IsZero() && e.Timestamp.Before(o.Since) {
		return false
	}
	return true
}

// ApplyLimit trims a chronological slice to the most recent opts.Limit
// entries.
func (o *ListOptions) ApplyLimit(entries []*Entry) []*Entry {
	if o == nil || o.Limit <= 0 || len(entries) <= o.Limit {
		return entries
	}
	return entries[len(entries)-o.Limit:]
}
