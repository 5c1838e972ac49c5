package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loaded is the outcome of LoadOrDefault.
//
// Table is never nil. When Defaulted is true the table is the schema's empty
// table and Reason explains why the file could not be used (it wraps one of
// ErrMissing, ErrMalformed or ErrSchema).
type Loaded struct {
	// Path is the file the table was loaded from.
	Path string

	// Table is the loaded table, or the schema's empty table.
	Table *Table

	// Defaulted reports whether the empty table was substituted.
	Defaulted bool

	// Reason explains the substitution (nil when Defaulted is false).
	Reason error
}

// Read parses CSV data into a table, canonicalizing headers against the schema.
func Read(r io.Reader, schema Schema) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) == 0 {
		return nil, ErrMissing
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = schema.canonical(h)
	}

	t := &Table{Name: schema.Name, Header: header}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}

	if missing := t.missingRequired(schema); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s lacks %s", ErrSchema, schema.Name, strings.Join(missing, ", "))
	}
	return t, nil
}

// LoadOrDefault loads a CSV table from path.
//
// A missing, empty, unparseable or schema-incompatible file never fails the
// caller: the schema's empty table is substituted and the result is marked
// Defaulted so the caller can tell "loaded" from "substituted".
//
// Parameters:
//   - path: CSV file path
//   - schema: Expected schema of the file
//
// Returns the load outcome.
func LoadOrDefault(path string, schema Schema) Loaded {
	defaulted := func(reason error) Loaded {
		return Loaded{Path: path, Table: schema.Empty(), Defaulted: true, Reason: reason}
	}

	info, err := os.Stat(path)
	if err != nil {
		return defaulted(fmt.Errorf("%w: %s", ErrMissing, path))
	}
	if info.Size() == 0 {
		return defaulted(fmt.Errorf("%w: %s is empty", ErrMissing, path))
	}

	f, err := os.Open(path)
	if err != nil {
		return defaulted(fmt.Errorf("%w: %v", ErrMissing, err))
	}
	defer func() { _ = f.Close() }()

	t, err := Read(f, schema)
	if err != nil {
		return defaulted(fmt.Errorf("%s: %w", path, err))
	}
	return Loaded{Path: path, Table: t}
}

// Write serializes a table as CSV.
func Write(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteFile writes a table to path, replacing any previous content.
//
// The parent directory is created if needed, and the file is written to a
// temporary sibling first and renamed into place so readers never observe a
// half-written table.
func WriteFile(path string, t *Table) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("WriteFile: failed to create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("WriteFile: %w", err)
	}
	tmpName := tmp.Name()

	if err := Write(tmp, t); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("WriteFile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("WriteFile: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("WriteFile: %w", err)
	}
	return nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
