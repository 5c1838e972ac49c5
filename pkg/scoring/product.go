package scoring

import (
	"math"

	"github.com/shelfsense/shelfsense-go/pkg/normalize"
)

// ProductInput carries the raw signals of one product.
type ProductInput struct {
	ProductID   string
	ProductName string
	Zone        string

	// Footfall, ZoneSales and Conversion describe the product's current zone.
	Footfall   int
	ZoneSales  float64
	Conversion float64

	OnlineViews int

	// Velocity is the product's own attributed sales, or its zone's sales
	// when no product-level sales exist.
	Velocity float64

	// LowTraffic marks a product sitting in a Cold zone.
	LowTraffic bool

	// Penalty is the memory-derived recency penalty in [-1, 0].
	Penalty float64
}

// Extensions supplies the optional signals, keyed by product ID, each in
// [0, 1]. A nil map means the signal is unused.
type Extensions struct {
	Seasonal        map[string]float64
	Complementary   map[string]float64
	PriceVisibility map[string]float64
	ABTest          map[string]float64
}

// ComponentScore is one term of a relocation score.
type ComponentScore struct {
	Component Component `json:"component"`

	// Raw is the unnormalized value (count, currency or ratio) behind Signal.
	Raw float64 `json:"raw"`

	// Signal is the normalized value entering the weighted sum.
	Signal float64 `json:"signal"`

	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ProductScore is the scored form of one product.
type ProductScore struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	CurrentZone string `json:"current_zone"`

	// Score is the relocation score in [0, 100].
	Score float64 `json:"score"`

	// Components lists every term in Components order.
	Components []ComponentScore `json:"components"`
}

// Component returns the breakdown of one component.
func (p ProductScore) Component(c Component) (ComponentScore, bool) {
	for _, cs := range p.Components {
		if cs.Component == c {
			return cs, true
		}
	}
	return ComponentScore{}, false
}

// ScoreProducts computes the relocation score of every product.
//
// Footfall, zone sales, online views, velocity and conversion are min-max
// normalized across the given products. The result keeps input order.
func ScoreProducts(inputs []ProductInput, w Weights, ext Extensions) []ProductScore {
	n := len(inputs)
	footfall := make([]float64, n)
	sales := make([]float64, n)
	online := make([]float64, n)
	velocity := make([]float64, n)
	conversion := make([]float64, n)
	for i, in := range inputs {
		footfall[i] = float64(in.Footfall)
		sales[i] = in.ZoneSales
		online[i] = float64(in.OnlineViews)
		velocity[i] = in.Velocity
		conversion[i] = in.Conversion
	}

	nFootfall := normalize.MinMax(footfall)
	nSales := normalize.MinMax(sales)
	nOnline := normalize.MinMax(online)
	nVelocity := normalize.MinMax(velocity)
	nConversion := normalize.MinMax(conversion)

	out := make([]ProductScore, n)
	for i, in := range inputs {
		cold := 0.0
		if in.LowTraffic {
			cold = 1
		}
		penalty := clamp(in.Penalty, -1, 0)

		terms := []struct {
			c           Component
			raw, signal float64
		}{
			{Footfall, footfall[i], nFootfall[i]},
			{Sales, sales[i], nSales[i]},
			{Online, online[i], nOnline[i]},
			{Velocity, velocity[i], nVelocity[i]},
			{Conversion, conversion[i], nConversion[i]},
			{ColdZoneBonus, cold, cold},
			{RecencyPenalty, penalty, penalty},
			{Seasonal, ext.value(ext.Seasonal, in.ProductID), ext.value(ext.Seasonal, in.ProductID)},
			{Complementary, ext.value(ext.Complementary, in.ProductID), ext.value(ext.Complementary, in.ProductID)},
			{PriceVisibility, ext.value(ext.PriceVisibility, in.ProductID), ext.value(ext.PriceVisibility, in.ProductID)},
			{ABTest, ext.value(ext.ABTest, in.ProductID), ext.value(ext.ABTest, in.ProductID)},
		}

		ps := ProductScore{
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			CurrentZone: in.Zone,
			Components:  make([]ComponentScore, 0, len(terms)),
		}
		total := 0.0
		for _, t := range terms {
			weight := w.Of(t.c)
			contrib := weight * t.signal
			total += contrib
			ps.Components = append(ps.Components, ComponentScore{
				Component:    t.c,
				Raw:          t.raw,
				Signal:       t.signal,
				Weight:       weight,
				Contribution: contrib,
			})
		}
		ps.Score = clamp(100*total, 0, 100)
		out[i] = ps
	}
	return out
}

func (Extensions) value(m map[string]float64, productID string) float64 {
	if m == nil {
		return 0
	}
	return clamp(m[productID], 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
