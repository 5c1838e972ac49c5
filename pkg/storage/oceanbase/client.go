// Package oceanbase provides an OceanBase implementation for the decision log.
//
// OceanBase speaks the MySQL protocol, so the same client also serves plain
// MySQL deployments.
package oceanbase

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// DefaultTableName is the table used when Config.TableName is empty.
const DefaultTableName = "decision_log"

// Client is an OceanBase client.
type Client struct {
	db        *sql.DB
	config    *Config
	tableName string
}

// Config contains OceanBase configuration.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
}

// NewClient creates a new OceanBase client.
func NewClient(cfg *Config) (*Client, error) {
	db, err := sql.Open("mysql", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("NewOceanBaseClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("NewOceanBaseClient: %w", err)
	}

	tableName := cfg.TableName
	if tableName == "" {
		tableName = DefaultTableName
	}

	client := &Client{
		db:        db,
		config:    cfg,
		tableName: tableName,
	}

	// Initialize table structure
	if err := client.initTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			kind VARCHAR(16) NOT NULL,
			product_id VARCHAR(64),
			product_name VARCHAR(255) NOT NULL,
			old_zone VARCHAR(32),
			new_zone VARCHAR(32),
			sales_snapshot DOUBLE DEFAULT 0,
			outcome_description TEXT,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_product_time (product_id, created_at)
		)
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Append inserts an entry.
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

	entries, err := c.scanEntries(rows)
	if err != nil {
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

// scanEntries scans every row of a result set.
func (c *Client) scanEntries(rows *sql.Rows) ([]*storage.Entry, error) {
	var entries []*storage.Entry
	for rows.Next() {
		var (
			entry              storage.Entry
			kind               string
			productID, oldZone sql.NullString
			newZone, outcome   sql.NullString
			salesSnapshot      sql.NullFloat64
		)
		if err := rows.Scan(
			&entry.ID, &kind, &productID, &entry.ProductName, &oldZone, &newZone,
			&salesSnapshot, &outcome, &entry.Timestamp,
		); err != nil {
			return nil, err
		}
		entry.Kind = storage.EntryKind(kind)
		entry.ProductID = productID.String
		entry.OldZone = oldZone.String
		entry.NewZone = newZone.String
		entry.SalesSnapshot = salesSnapshot.Float64
		entry.Outcome = outcome.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
