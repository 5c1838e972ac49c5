package metrics

import "github.com/shelfsense/shelfsense-go/pkg/table"

// DefaultSlack is the number of extra products a zone may receive on top of
// its current occupants.
const DefaultSlack = 5

// ZoneMetrics is the per-zone aggregate of one planning run.
type ZoneMetrics struct {
	Zone     string   `json:"zone"`
	Footfall int      `json:"footfall"`
	Sales    float64  `json:"sales"`
	Category Category `json:"category"`

	// Conversion is Sales / max(Footfall, 1).
	Conversion float64 `json:"conversion"`

	// Area is the zone floor area; 1 when the layout does not say.
	Area           float64 `json:"area"`
	RevenuePerArea float64 `json:"revenue_per_area"`

	// Occupants is the number of products currently placed in the zone.
	Occupants int `json:"occupants"`

	// Capacity is Occupants plus the configured slack.
	Capacity int `json:"capacity"`
}

// ZoneInputs collects everything BuildZoneMetrics needs.
type ZoneInputs struct {
	Layout     []table.LayoutRow
	Movements  []table.Movement
	Sales      map[string]float64
	Classifier Classifier

	// Slack is added to the occupant count to get capacity. Negative values
	// are treated as 0.
	Slack int
}

// BuildZoneMetrics assembles one ZoneMetrics row per known zone, in the order
// returned by Zones.
func BuildZoneMetrics(in ZoneInputs) []ZoneMetrics {
	zones := Zones(in.Layout, in.Movements)
	footfall := Footfall(in.Movements)
	categories := in.Classifier.Classify(footfall, zones)
	slack := max(in.Slack, 0)

	occupants := make(map[string]int)
	area := make(map[string]float64)
	for _, l := range in.Layout {
		occupants[l.Zone]++
		if l.Area > area[l.Zone] {
			area[l.Zone] = l.Area
		}
	}

	out := make([]ZoneMetrics, 0, len(zones))
	for _, z := range zones {
		a := area[z]
		if a <= 0 {
			a = 1
		}
		sales := in.Sales[z]
		out = append(out, ZoneMetrics{
			Zone:           z,
			Footfall:       footfall[z],
			Sales:          sales,
			Category:       categories[z],
			Conversion:     Conversion(sales, footfall[z]),
			Area:           a,
			RevenuePerArea: RevenuePerArea(sales, a),
			Occupants:      occupants[z],
			Capacity:       occupants[z] + slack,
		})
	}
	return out
}

// Index maps zone labels to their metrics.
func Index(zones []ZoneMetrics) map[string]ZoneMetrics {
	out := make(map[string]ZoneMetrics, len(zones))
	for _, z := range zones {
		out[z.Zone] = z
	}
	return out
}
