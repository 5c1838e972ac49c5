package scoring

import "sort"

// SortProducts orders products by descending score. Equal scores keep their
// input order.
func SortProducts(products []ProductScore) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Score > products[j].Score
	})
}

// SortZones orders zones by descending desirability. Equal scores keep their
// input order.
func SortZones(zones []ZoneScore) {
	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].Score > zones[j].Score
	})
}
