// Package sqlite provides SQLite implementation for the decision log.
//
// SQLite is a lightweight, file-based database suitable for a single store
// running the engine locally. Entries live in one append-only table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// DefaultTableName is the table used when Config.TableName is empty.
const DefaultTableName = "decision_log"

// Client implements DecisionStore using SQLite as the backend.
type Client struct {
	// db is the SQLite database connection.
	db *sql.DB

	// tableName is the name of the table storing entries.
	tableName string
}

// Config contains configuration for creating a SQLite DecisionStore.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName is the name of the table to use.
	TableName string
}

// NewClient creates a new SQLite DecisionStore client.
//
// Parameters:
//   - cfg: Configuration containing database path and table name
//
// Returns:
//   - *Client: The SQLite client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	// Create parent directory if it doesn't exist
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	tableName := cfg.TableName
	if tableName == "" {
		tableName = DefaultTableName
	}

	client := &Client{
		db:        db,
		tableName: tableName,
	}

	// Initialize table structure
	if err := client.initTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			product_id TEXT,
			product_name TEXT NOT NULL,
			old_zone TEXT,
			new_zone TEXT,
			sales_snapshot REAL DEFAULT 0,
			outcome_description TEXT,
			created_at DATETIME NOT NULL
		)
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	// Create index
	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_product_time ON %s(product_id, created_at)
	`, c.tableName, c.tableName)
	_, err = c.db.ExecContext(ctx, indexQuery)
	if err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Append inserts an entry into the SQLite database.
func (c *Client) Append(ctx context.Context, entry *storage.Entry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, kind, product_id, product_name, old_zone, new_zone, sales_snapshot, outcome_description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.Kind),
		entry.ProductID,
		entry.ProductName,
		entry.OldZone,
		entry.NewZone,
		entry.SalesSnapshot,
		entry.Outcome,
		entry.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("Append: %w", err)
	}

	return nil
}

// List retrieves entries in chronological order with optional filtering.
func (c *Client) List(ctx context.Context, opts *storage.ListOptions) ([]*storage.Entry, error) {
	whereClause, args := buildWhereClause(opts)

	query := fmt.Sprintf(`
		SELECT id, kind, product_id, product_name, old_zone, new_zone,
		       sales_snapshot, outcome_description, created_at
		FROM %s
		%s
		ORDER BY created_at, id
	`, c.tableName, whereClause)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*storage.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	return opts.ApplyLimit(entries), nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// scanEntry scans one row into an entry.
func scanEntry(rows *sql.Rows) (*storage.Entry, error) {
	var (
		entry              storage.Entry
		kind               string
		productID, oldZone sql.NullString
		newZone, outcome   sql.NullString
		salesSnapshot      sql.NullFloat64
	)

	err := rows.Scan(
		&entry.ID,
		&kind,
		&productID,
		&entry.ProductName,
		&oldZone,
		&newZone,
		&salesSnapshot,
		&outcome,
		&entry.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	entry.Kind = storage.EntryKind(kind)
	entry.ProductID = productID.String
	entry.OldZone = oldZone.String
	entry.NewZone = newZone.String
	entry.SalesSnapshot = salesSnapshot.Float64
	entry.Outcome = outcome.String
	return &entry, nil
}
