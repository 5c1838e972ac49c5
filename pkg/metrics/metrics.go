// Package metrics computes the per-zone and per-product aggregates the
// relocation engine scores on: footfall, sales, conversion, online interest
// and revenue per area.
//
// All aggregators are pure functions over decoded table rows. Zones are plain
// labels; their metrics are recomputed on every run and carry no identity
// beyond the label.
package metrics

import "github.com/shelfsense/shelfsense-go/pkg/table"

// Footfall counts movement events per zone.
func Footfall(moves []table.Movement) map[string]int {
	out := make(map[string]int)
	for _, m := range moves {
		out[m.Zone]++
	}
	return out
}

// SalesAttribution holds sales totals after attributing every sale row to a
// zone and, when the row names one, to a product.
type SalesAttribution struct {
	// ByZone is the total sales attributed to each zone.
	ByZone map[string]float64

	// ByProduct is the total sales of each product named by a sale row.
	ByProduct map[string]float64

	// Unattributed counts product-level rows whose product is not in the
	// layout, so no zone could be credited.
	Unattributed int
}

// AttributeSales credits sale rows to zones.
//
// Zone-level rows are credited to their zone directly. Product-level rows are
// credited to the product's current zone in the layout. A row carrying both a
// zone and a product is credited to the stated zone.
func AttributeSales(sales []table.SaleRow, layout []table.LayoutRow) SalesAttribution {
	home := ProductZones(layout)
	attr := SalesAttribution{
		ByZone:    make(map[string]float64),
		ByProduct: make(map[string]float64),
	}

	for _, s := range sales {
		if s.ProductID != "" {
			attr.ByProduct[s.ProductID] += s.Amount
		}
		switch {
		case s.Zone != "":
			attr.ByZone[s.Zone] += s.Amount
		case home[s.ProductID] != "":
			attr.ByZone[home[s.ProductID]] += s.Amount
		default:
			attr.Unattributed++
		}
	}
	return attr
}

// Conversion returns sales per footfall event. Footfall below 1 counts as 1,
// so a zone nobody visited converts at its raw sales figure (0 when unsold).
func Conversion(sales float64, footfall int) float64 {
	return sales / float64(max(footfall, 1))
}

// OnlineViews indexes online view counts by product ID. Products absent from
// the table read as 0 from the returned map.
func OnlineViews(online []table.OnlineRow) map[string]int {
	out := make(map[string]int, len(online))
	for _, o := range online {
		out[o.ProductID] = o.OnlineViews
	}
	return out
}

// ProductZones maps each product to its current zone. When the layout lists a
// product twice the first placement wins.
func ProductZones(layout []table.LayoutRow) map[string]string {
	out := make(map[string]string, len(layout))
	for _, l := range layout {
		if _, ok := out[l.ProductID]; !ok {
			out[l.ProductID] = l.Zone
		}
	}
	return out
}

// Zones lists every known zone: layout zones in layout order, followed by
// zones that only appear in the movement log, in first-seen order.
func Zones(layout []table.LayoutRow, moves []table.Movement) []string {
	seen := make(map[string]bool)
	var zones []string
	add := func(z string) {
		if z != "" && !seen[z] {
			seen[z] = true
			zones = append(zones, z)
		}
	}
	for _, l := range layout {
		add(l.Zone)
	}
	for _, m := range moves {
		add(m.Zone)
	}
	return zones
}

// RevenuePerArea divides zone sales by zone floor area. Unknown or
// non-positive areas count as one unit cell.
func RevenuePerArea(sales, area float64) float64 {
	if area <= 0 {
		area = 1
	}
	return sales / area
}
