package oceanbase

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// dsn builds the driver DSN. Times are read back as UTC time.Time values.
func dsn(cfg *Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	port := cfg.Port
	if port <= 0 {
		port = 2881
	}
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN()
}

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
