package metrics

import "math/rand"

// Default bounds of synthetic placeholder sales.
const (
	DefaultSyntheticMin = 50.0
	DefaultSyntheticMax = 200.0
)

// SyntheticSales generates placeholder zone sales, uniform in [lo, hi).
//
// It is the fallback used when no sales table exists, so scoring never sees
// undefined sales. The same seed always yields the same figures. Callers must
// report its use as a warning.
func SyntheticSales(zones []string, lo, hi float64, seed int64) map[string]float64 {
	if hi < lo {
		lo, hi = hi, lo
	}
	rng := rand.New(rand.NewSource(seed))
	out := make(map[string]float64, len(zones))
	for _, z := range zones {
		out[z] = lo + rng.Float64()*(hi-lo)
	}
	return out
}
