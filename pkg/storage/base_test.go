package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

func TestListOptions_Match(t *testing.T) {
	now := time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC)
	entry := &storage.Entry{
		ProductID:   "P010",
		ProductName: "Basmati Rice",
		OldZone:     "B1",
		NewZone:     "C3",
		Timestamp:   now,
	}

	tests := []struct {
		name   string
		opts   *storage.ListOptions
		expect bool
	}{
		{name: "nil matches", opts: nil, expect: true},
		{name: "empty matches", opts: &storage.ListOptions{}, expect: true},
		{name: "product id", opts: &storage.ListOptions{ProductID: "P010"}, expect: true},
		{name: "other product id", opts: &storage.ListOptions{ProductID: "P011"}, expect: false},
		{name: "name case-insensitive", opts: &storage.ListOptions{ProductName: "basmati rice"}, expect: true},
		{name: "old zone", opts: &storage.ListOptions{Zone: "B1"}, expect: true},
		{name: "new zone", opts: &storage.ListOptions{Zone: "C3"}, expect: true},
		{name: "unrelated zone", opts: &storage.ListOptions{Zone: "A1"}, expect: false},
		{name: "since before", opts: &storage.ListOptions{Since: now.Add(-time.Hour)}, expect: true},
		{name: "since after", opts: &storage.ListOptions{Since: now.Add(time.Hour)}, expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.opts.Match(entry))
		})
	}
}

func TestListOptions_ApplyLimit(t *testing.T) {
	entries := []*storage.Entry{{ID: 1}, {ID: 2}, {ID: 3}}

	var nilOpts *storage.ListOptions
	assert.Len(t, nilOpts.ApplyLimit(entries), 3)

	got := (&storage.ListOptions{Limit: 2}).ApplyLimit(entries)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}
