// Package explain renders a one-sentence justification of a relocation score
// from its per-component breakdown.
//
// Build is a pure function of the breakdown: identical scores always produce
// identical text, and no template state lives outside this package.
package explain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shelfsense/shelfsense-go/pkg/scoring"
)

// MaxReasons is the number of components named in one explanation.
const MaxReasons = 3

// NoDominantSignal is returned when no component contributed positively.
const NoDominantSignal = "No dominant signal; score driven by baseline factors."

// Build returns the explanation of one product score.
//
// The components with the largest positive weighted contributions are chosen,
// up to MaxReasons. Ties keep scoring.Components order. Each one is rendered
// as a short phrase and the phrases are joined into one sentence.
func Build(ps scoring.ProductScore) string {
	phrases := Phrases(ps)
	if len(phrases) == 0 {
		return NoDominantSignal
	}
	sentence := strings.Join(phrases, ", ")
	return strings.ToUpper(sentence[:1]) + sentence[1:] + "."
}

// Phrases returns the rendered phrases of the dominant components, most
// significant first.
func Phrases(ps scoring.ProductScore) []string {
	top := Dominant(ps, MaxReasons)
	out := make([]string, 0, len(top))
	for _, cs := range top {
		out = append(out, phrase(cs))
	}
	return out
}

// Dominant returns up to n components with a positive contribution, ordered
// by descending contribution.
func Dominant(ps scoring.ProductScore, n int) []scoring.ComponentScore {
	rank := make(map[scoring.Component]int, len(scoring.Components))
	for i, c := range scoring.Components {
		rank[c] = i
	}

	positive := make([]scoring.ComponentScore, 0, len(ps.Components))
	for _, cs := range ps.Components {
		if cs.Contribution > 0 && !math.IsNaN(cs.Contribution) {
			positive = append(positive, cs)
		}
	}
	sort.SliceStable(positive, func(i, j int) bool {
		if positive[i].Contribution != positive[j].Contribution {
			return positive[i].Contribution > positive[j].Contribution
		}
		return rank[positive[i].Component] < rank[positive[j].Component]
	})
	if n >= 0 && len(positive) > n {
		positive = positive[:n]
	}
	return positive
}

func phrase(cs scoring.ComponentScore) string {
	switch cs.Component {
	case scoring.Footfall:
		return "footfall " + amount(cs.Raw)
	case scoring.Sales:
		return "POS sales " + amount(cs.Raw)
	case scoring.Online:
		return "online views " + amount(cs.Raw)
	case scoring.Velocity:
		return "sales velocity " + amount(cs.Raw)
	case scoring.Conversion:
		return fmt.Sprintf("conversion %.2f", cs.Raw)
	case scoring.ColdZoneBonus:
		return "in a low-traffic zone"
	case scoring.Seasonal:
		return fmt.Sprintf("seasonal match %.2f", cs.Raw)
	case scoring.Complementary:
		return fmt.Sprintf("complementary affinity %.2f", cs.Raw)
	case scoring.PriceVisibility:
		return fmt.Sprintf("price visibility %.2f", cs.Raw)
	case scoring.ABTest:
		return fmt.Sprintf("A/B test lift %.2f", cs.Raw)
	}
	return string(cs.Component)
}

// amount prints whole numbers without decimals and everything else with two.
func amount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
