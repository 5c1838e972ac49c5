package oceanbase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

func TestBuildWhereClause(t *testing.T) {
	where, args := buildWhereClause(&storage.ListOptions{ProductName: "Tea", Zone: "B2"})
	assert.Equal(t, "WHERE LOWER(product_name) = LOWER(?) AND (old_zone = ? OR new_zone = ?)", where)
	assert.Equal(t, []interface{}{"Tea", "B2", "B2"}, args)
}

func TestDSN(t *testing.T) {
	got := dsn(&Config{Host: "127.0.0.1", Port: 2881, User: "root@sys", Password: "pw", DBName: "shelfsense"})
	assert.Contains(t, got, "root@sys:pw@tcp(127.0.0.1:2881)/shelfsense")
	assert.Contains(t, got, "parseTime=true")
}
