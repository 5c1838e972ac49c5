package metrics

import (
	"fmt"
	"sort"
)

// Category is the traffic classification of a zone.
type Category string

const (
	// Hot zones draw at least the threshold footfall.
	Hot Category = "Hot"

	// Warm zones sit between the tiered cutoffs (tiered policy only).
	Warm Category = "Warm"

	// Cold zones draw less than the threshold footfall.
	Cold Category = "Cold"

	// Unknown is used for every zone when no movement data exists.
	Unknown Category = "Unknown"
)

// IsLowTraffic reports whether a product placed in this zone is considered to
// be in a low-traffic zone.
func (c Category) IsLowTraffic() bool {
	return c == Cold
}

// Policy selects the hot/cold classification rule.
type Policy string

const (
	// PolicyMean marks a zone Hot when its footfall is at or above the mean
	// footfall across all known zones.
	PolicyMean Policy = "mean"

	// PolicyMedian marks a zone Hot when its footfall is at or above the
	// median footfall across all known zones.
	PolicyMedian Policy = "median"

	// PolicyTiered applies fixed cutoffs: Hot at or above HotCutoff, Warm at
	// or above WarmCutoff, Cold below.
	PolicyTiered Policy = "tiered"
)

// Classifier assigns a Category to every zone under one explicit policy.
//
// The policies are alternatives and are never blended; pick one in
// configuration.
type Classifier struct {
	// Policy is the classification rule (mean, median or tiered).
	Policy Policy `json:"policy" yaml:"policy" validate:"omitempty,oneof=mean median tiered"`

	// HotCutoff is the Hot threshold of the tiered policy.
	HotCutoff float64 `json:"hot_cutoff,omitempty" yaml:"hot_cutoff,omitempty" validate:"gte=0"`

	// WarmCutoff is the Warm threshold of the tiered policy.
	WarmCutoff float64 `json:"warm_cutoff,omitempty" yaml:"warm_cutoff,omitempty" validate:"gte=0"`
}

// DefaultClassifier returns the mean-threshold classifier.
func DefaultClassifier() Classifier {
	return Classifier{Policy: PolicyMean, HotCutoff: 100, WarmCutoff: 50}
}

// Validate checks that the policy is known and the tiered cutoffs are ordered.
func (c Classifier) Validate() error {
	switch c.Policy {
	case "", PolicyMean, PolicyMedian:
		return nil
	case PolicyTiered:
		if c.WarmCutoff > c.HotCutoff {
			return fmt.Errorf("tiered classifier: warm cutoff %.2f above hot cutoff %.2f", c.WarmCutoff, c.HotCutoff)
		}
		return nil
	default:
		return fmt.Errorf("unknown classifier policy %q", c.Policy)
	}
}

// Classify categorizes every zone in zones by its footfall.
//
// Zones missing from footfall count as 0. When footfall holds no events at all
// every zone is Unknown, since no threshold can be derived.
func (c Classifier) Classify(footfall map[string]int, zones []string) map[string]Category {
	out := make(map[string]Category, len(zones))

	total := 0
	for _, z := range zones {
		total += footfall[z]
	}
	if total == 0 {
		for _, z := range zones {
			out[z] = Unknown
		}
		return out
	}

	if c.Policy == PolicyTiered {
		for _, z := range zones {
			f := float64(footfall[z])
			switch {
			case f >= c.HotCutoff:
				out[z] = Hot
			case f >= c.WarmCutoff:
				out[z] = Warm
			default:
				out[z] = Cold
			}
		}
		return out
	}

	threshold := c.threshold(footfall, zones)
	for _, z := range zones {
		if float64(footfall[z]) >= threshold {
			out[z] = Hot
		} else {
			out[z] = Cold
		}
	}
	return out
}

// threshold computes the mean or median footfall over zones.
func (c Classifier) threshold(footfall map[string]int, zones []string) float64 {
	values := make([]float64, len(zones))
	sum := 0.0
	for i, z := range zones {
		values[i] = float64(footfall[z])
		sum += values[i]
	}

	if c.Policy != PolicyMedian {
		return sum / float64(len(values))
	}

	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
