// Package jsonfile provides a JSON file implementation of the decision log.
//
// The whole log is one JSON array. Every Append is a read-modify-write of the
// file; the new content is written to a temporary sibling and renamed into
// place so a crash never leaves a truncated log behind. The store is meant for
// a single writer process.
package jsonfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// Client implements DecisionStore on top of a JSON file.
type Client struct {
	mu   sync.Mutex
	path string
}

// Config contains configuration for creating a JSON file DecisionStore.
type Config struct {
	// Path is the path to the JSON log file (e.g. agent_memory/decision_log.json).
	Path string
}

// record is the on-disk form of an entry. Timestamps are kept as strings so
// logs written by older tooling (naive ISO timestamps, date-only values) still
// load.
type record struct {
	ID            int64             `json:"id,omitempty"`
	Kind          storage.EntryKind `json:"kind,omitempty"`
	ProductID     string            `json:"product_id,omitempty"`
	ProductName   string            `json:"product_name"`
	OldZone       string            `json:"old_zone"`
	NewZone       string            `json:"new_zone"`
	SalesSnapshot float64           `json:"sales_snapshot,omitempty"`
	Outcome       string            `json:"outcome_description"`
	Timestamp     string            `json:"timestamp,omitempty"`
	Date          string            `json:"date,omitempty"`
}

// NewClient creates a new JSON file DecisionStore client.
//
// The parent directory is created if needed. The file itself is created on
// the first Append.
//
// Parameters:
//   - cfg: Configuration containing the log file path
//
// Returns:
//   - *Client: The JSON file client instance
//   - error: Error if the path is empty or the directory cannot be created
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, fmt.Errorf("NewJSONFileClient: path is required")
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("NewJSONFileClient: failed to create directory: %w", err)
		}
	}

	return &Client{path: cfg.Path}, nil
}

// Path returns the log file path.
func (c *Client) Path() string {
	return c.path
}

// Append adds an entry to the log.
//
// A corrupt log is never overwritten: Append fails with ErrCorrupt and leaves
// the file untouched for manual inspection.
func (c *Client) Append(ctx context.Context, entry *storage.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load()
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	records = append(records, toRecord(entry))

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	if err := writeAtomic(c.path, data); err != nil {
		return fmt.Errorf("Append: %w", err)
	}
	return nil
}

// List returns the matching entries in chronological order.
func (c *Client) List(ctx context.Context, opts *storage.ListOptions) ([]*storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	records, err := c.load()
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	var entries []*storage.Entry
	for _, r := range records {
		e := fromRecord(r)
		if opts.Match(e) {
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return opts.ApplyLimit(entries), nil
}

// Close is a no-op; the file is opened per operation.
func (c *Client) Close() error {
	return nil
}

// load reads every record. A missing or empty file is an empty log.
func (c *Client) load() ([]record, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrCorrupt, c.path, err)
	}
	return records, nil
}

func toRecord(e *storage.Entry) record {
	return record{
		ID:            e.ID,
		Kind:          e.Kind,
		ProductID:     e.ProductID,
		ProductName:   e.ProductName,
		OldZone:       e.OldZone,
		NewZone:       e.NewZone,
		SalesSnapshot: e.SalesSnapshot,
		Outcome:       e.Outcome,
		Timestamp:     e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func fromRecord(r record) *storage.Entry {
	ts, ok := table.ParseTime(r.Timestamp)
	if !ok {
		ts, _ = table.ParseTime(r.Date)
	}
	kind := r.Kind
	if kind == "" {
		// Entries without a kind predate the planner write-back and were
		// recorded by hand.
		kind = storage.KindOutcome
	}
	return &storage.Entry{
		ID:            r.ID,
		Kind:          kind,
		ProductID:     r.ProductID,
		ProductName:   r.ProductName,
		OldZone:       r.OldZone,
		NewZone:       r.NewZone,
		SalesSnapshot: r.SalesSnapshot,
		Outcome:       r.Outcome,
		Timestamp:     ts,
	}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
