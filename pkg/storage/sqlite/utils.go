package sqlite

import (
	"strings"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// buildWhereClause builds a WHERE clause from list options.
func buildWhereClause(opts *storage.ListOptions) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	if opts == nil {
		return "", args
	}

	if opts.ProductID != "" {
		conditions = append(conditions, "product_id = ?")
		args = append(args, opts.ProductID)
	}

	if opts.ProductName != "" {
		conditions = append(conditions, "LOWER(product_name) = LOWER(?)")
		args = append(args, opts.ProductName)
	}

	if opts.Zone != "" {
		conditions = append(conditions, "(old_zone = ? OR new_zone = ?)")
		args = append(args, opts.Zone, opts.Zone)
	}

	if !opts.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, opts.Since.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
