package scoring

import (
	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/normalize"
)

// ZoneScore is the desirability of one zone as a destination.
type ZoneScore struct {
	Zone string `json:"zone"`

	// Score is the desirability in [0, 1].
	Score   float64             `json:"score"`
	Metrics metrics.ZoneMetrics `json:"metrics"`
}

// ScoreZones computes the desirability of every zone from normalized
// footfall, conversion and revenue per area. The result keeps input order.
func ScoreZones(zones []metrics.ZoneMetrics, w ZoneWeights) []ZoneScore {
	n := len(zones)
	footfall := make([]float64, n)
	conversion := make([]float64, n)
	rpa := make([]float64, n)
	for i, z := range zones {
		footfall[i] = float64(z.Footfall)
		conversion[i] = z.Conversion
		rpa[i] = z.RevenuePerArea
	}

	nFootfall := normalize.MinMax(footfall)
	nConversion := normalize.MinMax(conversion)
	nRPA := normalize.MinMax(rpa)

	out := make([]ZoneScore, n)
	for i, z := range zones {
		score := w.Footfall*nFootfall[i] + w.Conversion*nConversion[i] + w.RevenuePerArea*nRPA[i]
		out[i] = ZoneScore{Zone: z.Zone, Score: clamp(score, 0, 1), Metrics: z}
	}
	return out
}
