// Package core provides the ShelfSense relocation engine and its operations.
package core

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
	"github.com/shelfsense/shelfsense-go/pkg/storage/jsonfile"
	"github.com/shelfsense/shelfsense-go/pkg/storage/oceanbase"
	postgresStore "github.com/shelfsense/shelfsense-go/pkg/storage/postgres"
	sqliteStore "github.com/shelfsense/shelfsense-go/pkg/storage/sqlite"
)

// initStorage opens the decision log backend. Provider "none" returns a nil
// store and no error.
func initStorage(cfg MemoryConfig) (storage.DecisionStore, error) {
	c := providerConfig(cfg.Config)

	switch cfg.Provider {
	case "", "json":
		return jsonfile.NewClient(&jsonfile.Config{
			Path: c.getString("path", filepath.Join("agent_memory", "decision_log.json")),
		})
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:    c.getString("db_path", "./shelfsense.db"),
			TableName: c.getString("table_name", sqliteStore.DefaultTableName),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:      c.getString("host", "localhost"),
			Port:      c.getInt("port", 5432),
			User:      c.getString("user", "postgres"),
			Password:  c.getString("password", ""),
			DBName:    c.getString("db_name", "shelfsense"),
			TableName: c.getString("table_name", postgresStore.DefaultTableName),
			SSLMode:   c.getString("ssl_mode", "disable"),
		})
	case "oceanbase", "mysql":
		return oceanbase.NewClient(&oceanbase.Config{
			Host:      c.getString("host", "127.0.0.1"),
			Port:      c.getInt("port", 2881),
			User:      c.getString("user", "root@sys"),
			Password:  c.getString("password", ""),
			DBName:    c.getString("db_name", "shelfsense"),
			TableName: c.getString("table_name", oceanbase.DefaultTableName),
		})
	case "none":
		return nil, nil
	default:
		return nil, NewEngineError("initStorage", fmt.Errorf("%w: unknown memory provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// providerConfig reads provider settings that may come from env, JSON
// (numbers as float64) or YAML (numbers as int).
type providerConfig map[string]interface{}

func (c providerConfig) getString(key, def string) string {
	switch v := c[key].(type) {
	case string:
		if v != "" {
			return v
		}
	case fmt.Stringer:
		return v.String()
	}
	return def
}

func (c providerConfig) getInt(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
