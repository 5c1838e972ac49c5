// Package scoring combines normalized signals into a relocation score per
// product and a desirability score per zone.
//
// Every component signal entering a weighted sum lies in [0, 1], except the
// recency penalty which lies in [-1, 0]. Weight vectors must sum to 1.0 so a
// score keeps the same scale no matter which optional signals are supplied.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights indicates a weight vector that is negative or does not sum
// to 1.0.
var ErrInvalidWeights = errors.New("invalid weights")

// weightTolerance is the accepted deviation of a weight sum from 1.0.
const weightTolerance = 1e-6

// Component names one signal of the relocation score.
type Component string

const (
	Footfall        Component = "footfall"
	Sales           Component = "sales"
	Online          Component = "online"
	Velocity        Component = "velocity"
	Conversion      Component = "conversion"
	ColdZoneBonus   Component = "cold_zone_bonus"
	RecencyPenalty  Component = "recency_penalty"
	Seasonal        Component = "seasonal"
	Complementary   Component = "complementary"
	PriceVisibility Component = "price_visibility"
	ABTest          Component = "ab_test"
)

// Components lists every component in its fixed reporting order. Explanation
// ties are broken by this order.
var Components = []Component{
	Footfall, Sales, Online, Velocity, Conversion, ColdZoneBonus,
	RecencyPenalty, Seasonal, Complementary, PriceVisibility, ABTest,
}

// Weights is the weight vector of the relocation score.
//
// The last four weights belong to extension signals. Their mass stays
// reserved when an extension is not supplied: the signal reads 0 and the
// remaining weights are not rescaled.
type Weights struct {
	Footfall        float64 `json:"footfall" yaml:"footfall" validate:"gte=0"`
	Sales           float64 `json:"sales" yaml:"sales" validate:"gte=0"`
	Online          float64 `json:"online" yaml:"online" validate:"gte=0"`
	Velocity        float64 `json:"velocity" yaml:"velocity" validate:"gte=0"`
	Conversion      float64 `json:"conversion" yaml:"conversion" validate:"gte=0"`
	ColdZoneBonus   float64 `json:"cold_zone_bonus" yaml:"cold_zone_bonus" validate:"gte=0"`
	RecencyPenalty  float64 `json:"recency_penalty" yaml:"recency_penalty" validate:"gte=0"`
	Seasonal        float64 `json:"seasonal" yaml:"seasonal" validate:"gte=0"`
	Complementary   float64 `json:"complementary" yaml:"complementary" validate:"gte=0"`
	PriceVisibility float64 `json:"price_visibility" yaml:"price_visibility" validate:"gte=0"`
	ABTest          float64 `json:"ab_test" yaml:"ab_test" validate:"gte=0"`
}

// DefaultWeights returns the default relocation weights.
func DefaultWeights() Weights {
	return Weights{
		Footfall:        0.15,
		Sales:           0.15,
		Online:          0.15,
		Velocity:        0.10,
		Conversion:      0.10,
		ColdZoneBonus:   0.10,
		RecencyPenalty:  0.05,
		Seasonal:        0.05,
		Complementary:   0.05,
		PriceVisibility: 0.05,
		ABTest:          0.05,
	}
}

// Of returns the weight of one component.
func (w Weights) Of(c Component) float64 {
	switch c {
	case Footfall:
		return w.Footfall
	case Sales:
		return w.Sales
	case Online:
		return w.Online
	case Velocity:
		return w.Velocity
	case Conversion:
		return w.Conversion
	case ColdZoneBonus:
		return w.ColdZoneBonus
	case RecencyPenalty:
		return w.RecencyPenalty
	case Seasonal:
		return w.Seasonal
	case Complementary:
		return w.Complementary
	case PriceVisibility:
		return w.PriceVisibility
	case ABTest:
		return w.ABTest
	}
	return 0
}

// Sum returns the total weight mass.
func (w Weights) Sum() float64 {
	sum := 0.0
	for _, c := range Components {
		sum += w.Of(c)
	}
	return sum
}

// Validate checks that no weight is negative and the weights sum to 1.0.
func (w Weights) Validate() error {
	for _, c := range Components {
		if v := w.Of(c); v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s weight %v is negative", ErrInvalidWeights, c, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: relocation weights sum to %.6f, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// ZoneWeights is the weight vector of the zone desirability score.
type ZoneWeights struct {
	Footfall       float64 `json:"footfall" yaml:"footfall" validate:"gte=0"`
	Conversion     float64 `json:"conversion" yaml:"conversion" validate:"gte=0"`
	RevenuePerArea float64 `json:"revenue_per_area" yaml:"revenue_per_area" validate:"gte=0"`
}

// DefaultZoneWeights returns 0.5 footfall, 0.3 conversion, 0.2 revenue per area.
func DefaultZoneWeights() ZoneWeights {
	return ZoneWeights{Footfall: 0.5, Conversion: 0.3, RevenuePerArea: 0.2}
}

// Validate checks that no weight is negative and the weights sum to 1.0.
func (w ZoneWeights) Validate() error {
	if w.Footfall < 0 || w.Conversion < 0 || w.RevenuePerArea < 0 {
		return fmt.Errorf("%w: zone weights must not be negative", ErrInvalidWeights)
	}
	if sum := w.Footfall + w.Conversion + w.RevenuePerArea; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: zone weights sum to %.6f, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}
