// Package normalize scales heterogeneous signal series onto [0, 1] so they can
// be combined in one weighted sum.
package normalize

import (
	"math"
	"sort"
)

// MinMax scales a series to [0, 1] using (v - min) / (max - min).
//
// A constant series (max == min) maps every value to 0. An empty series is
// returned as an empty series. NaN values are treated as 0.
//
// The input slice is not modified.
func MinMax(series []float64) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range series {
		v = clean(v)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range series {
		out[i] = (clean(v) - lo) / span
	}
	return out
}

// MinMaxMap scales a keyed series. Keys are processed in sorted order so the
// result never depends on map iteration order.
func MinMaxMap(series map[string]float64) map[string]float64 {
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i] = series[k]
	}

	scaled := MinMax(values)
	out := make(map[string]float64, len(keys))
	for i, k := range keys {
		out[k] = scaled[i]
	}
	return out
}

func clean(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
