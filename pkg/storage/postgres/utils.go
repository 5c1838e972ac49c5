package postgres

import (
	"fmt"
	"strings"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// buildWhereClause builds a WHERE clause starting from $1.
func buildWhereClause(opts *storage.ListOptions) (string, []interface{}) {
	return buildWhereClauseWithOffset(opts, 1)
}

// buildWhereClauseWithOffset builds a WHERE clause starting from a specific parameter index.
func buildWhereClauseWithOffset(opts *storage.ListOptions, startIndex int) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := startIndex

	if opts == nil {
		return "", args
	}

	if opts.ProductID != "" {
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argIndex))
		args = append(args, opts.ProductID)
		argIndex++
	}

	if opts.ProductName != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(product_name) = LOWER($%d)", argIndex))
		args = append(args, opts.ProductName)
		argIndex++
	}

	if opts.Zone != "" {
		conditions = append(conditions, fmt.Sprintf("(old_zone = $%d OR new_zone = $%d)", argIndex, argIndex))
		args = append(args, opts.Zone)
		argIndex++
	}

	if !opts.Since.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIndex))
		args = append(args, opts.Since.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
