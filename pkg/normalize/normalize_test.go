package normalize_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfsense/shelfsense-go/pkg/normalize"
)

func TestMinMax(t *testing.T) {
	tests := []struct {
		name   string
		input  []float64
		expect []float64
	}{
		{name: "empty", input: []float64{}, expect: []float64{}},
		{name: "single value", input: []float64{7}, expect: []float64{0}},
		{name: "constant series", input: []float64{3, 3, 3}, expect: []float64{0, 0, 0}},
		{name: "ascending", input: []float64{0, 5, 10}, expect: []float64{0, 0.5, 1}},
		{name: "negative values", input: []float64{-2, 0, 2}, expect: []float64{0, 0.5, 1}},
		{name: "footfall", input: []float64{3, 1}, expect: []float64{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize.MinMax(tt.input)
			assert.InDeltaSlice(t, tt.expect, got, 1e-9)
		})
	}
}

func TestMinMaxRange(t *testing.T) {
	series := []float64{12.5, -3, 400, 0, 0, 99.9, 1e6, 42}
	for _, v := range normalize.MinMax(series) {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestMinMaxDoesNotModifyInput(t *testing.T) {
	series := []float64{1, 2, 3}
	_ = normalize.MinMax(series)
	assert.Equal(t, []float64{1, 2, 3}, series)
}

func TestMinMaxNaN(t *testing.T) {
	got := normalize.MinMax([]float64{math.NaN(), 10})
	assert.InDeltaSlice(t, []float64{0, 1}, got, 1e-9)
}

func TestMinMaxMap(t *testing.T) {
	got := normalize.MinMaxMap(map[string]float64{"A1": 3, "B2": 1, "C3": 2})
	assert.InDelta(t, 1.0, got["A1"], 1e-9)
	assert.InDelta(t, 0.0, got["B2"], 1e-9)
	assert.InDelta(t, 0.5, got["C3"], 1e-9)

	assert.Empty(t, normalize.MinMaxMap(nil))
}
