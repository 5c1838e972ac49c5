package metrics

import (
	"math"
	"strings"

	"github.com/shelfsense/shelfsense-go/pkg/normalize"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// ComplementaryAffinity rates, per product ID, how well placed the product's
// complements are. A complement sitting in a Hot zone counts 1, in a Warm
// zone 0.5, anywhere else 0; a product with several complements keeps the
// best one. Product names are matched case-insensitively against the layout.
//
// Returns nil when there are no pairs.
func ComplementaryAffinity(layout []table.LayoutRow, pairs []table.PairRow, categories map[string]Category) map[string]float64 {
	if len(pairs) == 0 {
		return nil
	}

	zoneOf := make(map[string]string, len(layout))
	for _, l := range layout {
		key := nameKey(l.ProductName)
		if _, ok := zoneOf[key]; !ok {
			zoneOf[key] = l.Zone
		}
	}

	best := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		zone, ok := zoneOf[nameKey(p.Complementary)]
		if !ok {
			continue
		}
		k := nameKey(p.Product)
		best[k] = math.Max(best[k], categoryAffinity(categories[zone]))
	}

	out := make(map[string]float64, len(layout))
	for _, l := range layout {
		if v, ok := best[nameKey(l.ProductName)]; ok {
			out[l.ProductID] = v
		}
	}
	return out
}

func categoryAffinity(c Category) float64 {
	switch c {
	case Hot:
		return 1
	case Warm:
		return 0.5
	default:
		return 0
	}
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SeasonalDemand turns online views into a seasonal signal per product ID:
// views are min-max normalized across products, multiplied by the seasonal
// multiplier and clamped to [0, 1].
//
// Returns nil when the multiplier is not positive or there are no rows.
func SeasonalDemand(online []table.OnlineRow, multiplier float64) map[string]float64 {
	if multiplier <= 0 || math.IsNaN(multiplier) || len(online) == 0 {
		return nil
	}

	views := make(map[string]float64, len(online))
	for _, o := range online {
		views[o.ProductID] = float64(o.OnlineViews)
	}

	out := normalize.MinMaxMap(views)
	for id, v := range out {
		out[id] = math.Min(1, v*multiplier)
	}
	return out
}
