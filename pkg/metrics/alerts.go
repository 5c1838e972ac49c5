package metrics

import (
	"sort"
	"time"

	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// DefaultLowStockThreshold is the stock level at or below which a product is
// flagged.
const DefaultLowStockThreshold = 10

// LowStock returns the products whose stock is at or below threshold, in
// input order.
func LowStock(stock []table.StockRow, threshold int) []table.StockRow {
	var out []table.StockRow
	for _, s := range stock {
		if s.Stock <= threshold {
			out = append(out, s)
		}
	}
	return out
}

// Decline describes a product whose recent sales fell against its baseline.
type Decline struct {
	ProductID string  `json:"product_id"`
	Baseline  float64 `json:"baseline"`
	Recent    float64 `json:"recent"`

	// Drop is (Baseline - Recent) / Baseline, with a zero baseline read as 1.
	Drop float64 `json:"drop"`
}

// Declines finds products whose sales in the trailing window dropped by more
// than dropPct against the sales before it.
//
// The window ends at the latest dated sale. Rows without a date or without a
// product are ignored. Results are ordered by descending Drop, ties by
// product ID.
func Declines(sales []table.SaleRow, window time.Duration, dropPct float64) []Decline {
	var latest time.Time
	for _, s := range sales {
		if s.ProductID != "" && s.Date.After(latest) {
			latest = s.Date
		}
	}
	if latest.IsZero() {
		return nil
	}
	cutoff := latest.Add(-window)

	baseline := make(map[string]float64)
	recent := make(map[string]float64)
	for _, s := range sales {
		if s.ProductID == "" || s.Date.IsZero() {
			continue
		}
		if s.Date.Before(cutoff) {
			baseline[s.ProductID] += s.Amount
		} else {
			recent[s.ProductID] += s.Amount
		}
	}

	seen := make(map[string]bool)
	var out []Decline
	check := func(pid string) {
		if seen[pid] {
			return
		}
		seen[pid] = true
		b, r := baseline[pid], recent[pid]
		denom := b
		if denom == 0 {
			denom = 1
		}
		if drop := (b - r) / denom; drop > dropPct {
			out = append(out, Decline{ProductID: pid, Baseline: b, Recent: r, Drop: drop})
		}
	}
	for pid := range baseline {
		check(pid)
	}
	for pid := range recent {
		check(pid)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Drop != out[j].Drop {
			return out[i].Drop > out[j].Drop
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}
