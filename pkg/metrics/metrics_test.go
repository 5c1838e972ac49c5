package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

func moves(zones ...string) []table.Movement {
	out := make([]table.Movement, len(zones))
	for i, z := range zones {
		out[i] = table.Movement{CustomerID: "C0001", Zone: z}
	}
	return out
}

var scenarioLayout = []table.LayoutRow{
	{Zone: "A1", ProductID: "P001", ProductName: "Tea"},
	{Zone: "B2", ProductID: "P002", ProductName: "Sugar"},
}

func TestFootfall(t *testing.T) {
	f := metrics.Footfall(moves("A1", "A1", "A1", "B2"))
	assert.Equal(t, 3, f["A1"])
	assert.Equal(t, 1, f["B2"])
	assert.Equal(t, 0, f["C3"])
}

func TestClassifyMean(t *testing.T) {
	m := moves("A1", "A1", "A1", "B2")
	zones := metrics.Zones(scenarioLayout, m)
	got := metrics.DefaultClassifier().Classify(metrics.Footfall(m), zones)

	assert.Equal(t, metrics.Hot, got["A1"])
	assert.Equal(t, metrics.Cold, got["B2"])
}

func TestClassifyEmptyMovements(t *testing.T) {
	zones := metrics.Zones(scenarioLayout, nil)
	for _, c := range []metrics.Classifier{
		{Policy: metrics.PolicyMean},
		{Policy: metrics.PolicyMedian},
		{Policy: metrics.PolicyTiered, HotCutoff: 10, WarmCutoff: 5},
	} {
		got := c.Classify(metrics.Footfall(nil), zones)
		assert.Equal(t, metrics.Unknown, got["A1"], c.Policy)
		assert.Equal(t, metrics.Unknown, got["B2"], c.Policy)
	}
}

func TestClassifyPolicies(t *testing.T) {
	footfall := map[string]int{"A1": 10, "A2": 1, "A3": 1, "A4": 0}
	zones := []string{"A1", "A2", "A3", "A4"}

	tests := []struct {
		name   string
		c      metrics.Classifier
		expect []metrics.Category
	}{
		{
			name:   "mean 3",
			c:      metrics.Classifier{Policy: metrics.PolicyMean},
			expect: []metrics.Category{metrics.Hot, metrics.Cold, metrics.Cold, metrics.Cold},
		},
		{
			name:   "median 1",
			c:      metrics.Classifier{Policy: metrics.PolicyMedian},
			expect: []metrics.Category{metrics.Hot, metrics.Hot, metrics.Hot, metrics.Cold},
		},
		{
			name:   "tiered",
			c:      metrics.Classifier{Policy: metrics.PolicyTiered, HotCutoff: 10, WarmCutoff: 1},
			expect: []metrics.Category{metrics.Hot, metrics.Warm, metrics.Warm, metrics.Cold},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.c.Classify(footfall, zones)
			for i, z := range zones {
				assert.Equal(t, tt.expect[i], got[z], z)
			}
		})
	}
}

func TestClassifierValidate(t *testing.T) {
	assert.NoError(t, metrics.DefaultClassifier().Validate())
	assert.Error(t, metrics.Classifier{Policy: "percentile"}.Validate())
	assert.Error(t, metrics.Classifier{Policy: metrics.PolicyTiered, HotCutoff: 1, WarmCutoff: 2}.Validate())
}

func TestAttributeSales(t *testing.T) {
	sales := []table.SaleRow{
		{Zone: "A1", Amount: 100},
		{ProductID: "P002", Amount: 40},
		{ProductID: "P999", Amount: 10},
		{Zone: "B2", ProductID: "P001", Amount: 5},
	}
	attr := metrics.AttributeSales(sales, scenarioLayout)

	assert.Equal(t, 100.0, attr.ByZone["A1"])
	assert.Equal(t, 45.0, attr.ByZone["B2"])
	assert.Equal(t, 40.0, attr.ByProduct["P002"])
	assert.Equal(t, 5.0, attr.ByProduct["P001"])
	assert.Equal(t, 1, attr.Unattributed)
}

func TestConversion(t *testing.T) {
	assert.Equal(t, 0.0, metrics.Conversion(0, 0))
	assert.Equal(t, 120.0, metrics.Conversion(120, 0))
	assert.InDelta(t, 40.0, metrics.Conversion(120, 3), 1e-9)
}

func TestBuildZoneMetrics(t *testing.T) {
	layout := append([]table.LayoutRow{{Zone: "A1", ProductID: "P003", ProductName: "Rice", Area: 4}}, scenarioLayout...)
	zm := metrics.BuildZoneMetrics(metrics.ZoneInputs{
		Layout:     layout,
		Movements:  moves("A1", "A1", "A1", "B2", "Z9"),
		Sales:      map[string]float64{"A1": 120, "B2": 10},
		Classifier: metrics.DefaultClassifier(),
		Slack:      metrics.DefaultSlack,
	})

	require.Len(t, zm, 3)
	assert.Equal(t, []string{"A1", "B2", "Z9"}, []string{zm[0].Zone, zm[1].Zone, zm[2].Zone})

	a1 := zm[0]
	assert.Equal(t, 3, a1.Footfall)
	assert.Equal(t, 2, a1.Occupants)
	assert.Equal(t, 7, a1.Capacity)
	assert.InDelta(t, 40.0, a1.Conversion, 1e-9)
	assert.InDelta(t, 30.0, a1.RevenuePerArea, 1e-9)
	assert.Equal(t, metrics.Hot, a1.Category)

	z9 := zm[2]
	assert.Equal(t, 0, z9.Occupants)
	assert.Equal(t, 5, z9.Capacity)
	assert.Equal(t, 1.0, z9.Area)
}

func TestSyntheticSales(t *testing.T) {
	zones := []string{"A1", "B2", "C3"}
	a := metrics.SyntheticSales(zones, metrics.DefaultSyntheticMin, metrics.DefaultSyntheticMax, 7)
	b := metrics.SyntheticSales(zones, metrics.DefaultSyntheticMin, metrics.DefaultSyntheticMax, 7)

	assert.Equal(t, a, b)
	for _, z := range zones {
		assert.GreaterOrEqual(t, a[z], 50.0)
		assert.Less(t, a[z], 200.0)
	}
}

func TestLowStock(t *testing.T) {
	stock := []table.StockRow{
		{ProductID: "P001", Stock: 4},
		{ProductID: "P002", Stock: 30},
		{ProductID: "P003", Stock: 10},
	}
	got := metrics.LowStock(stock, metrics.DefaultLowStockThreshold)
	require.Len(t, got, 2)
	assert.Equal(t, "P001", got[0].ProductID)
	assert.Equal(t, "P003", got[1].ProductID)
}

func TestDeclines(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	sales := []table.SaleRow{
		{ProductID: "P001", Amount: 100, Date: day(1)},
		{ProductID: "P001", Amount: 20, Date: day(28)},
		{ProductID: "P002", Amount: 50, Date: day(2)},
		{ProductID: "P002", Amount: 50, Date: day(29)},
		{ProductID: "P003", Amount: 10, Date: day(30)},
		{Zone: "A1", Amount: 999, Date: day(3)},
	}

	got := metrics.Declines(sales, 7*24*time.Hour, 0.2)
	require.Len(t, got, 1)
	assert.Equal(t, "P001", got[0].ProductID)
	assert.InDelta(t, 0.8, got[0].Drop, 1e-9)

	assert.Nil(t, metrics.Declines([]table.SaleRow{{ProductID: "P001", Amount: 1}}, time.Hour, 0.2))
}

func TestComplementaryAffinity(t *testing.T) {
	layout := append([]table.LayoutRow{{Zone: "C3", ProductID: "P003", ProductName: "Coffee"}}, scenarioLayout...)
	categories := map[string]metrics.Category{"A1": metrics.Hot, "B2": metrics.Cold, "C3": metrics.Warm}
	pairs := []table.PairRow{
		{Product: "sugar", Complementary: "Tea"},
		{Product: "Sugar", Complementary: "Coffee"},
		{Product: "Tea", Complementary: "Coffee"},
		{Product: "Coffee", Complementary: "Sugar"},
		{Product: "Tea", Complementary: "Biscuits"},
	}

	got := metrics.ComplementaryAffinity(layout, pairs, categories)
	assert.Equal(t, map[string]float64{"P002": 1, "P001": 0.5, "P003": 0}, got)

	assert.Nil(t, metrics.ComplementaryAffinity(layout, nil, categories))
}

func TestSeasonalDemand(t *testing.T) {
	online := []table.OnlineRow{
		{ProductID: "P001", OnlineViews: 5000},
		{ProductID: "P002", OnlineViews: 100},
		{ProductID: "P003", OnlineViews: 2550},
	}

	got := metrics.SeasonalDemand(online, 1)
	assert.InDelta(t, 1.0, got["P001"], 1e-9)
	assert.InDelta(t, 0.0, got["P002"], 1e-9)
	assert.InDelta(t, 0.5, got["P003"], 1e-9)

	boosted := metrics.SeasonalDemand(online, 1.5)
	assert.InDelta(t, 1.0, boosted["P001"], 1e-9)
	assert.InDelta(t, 0.75, boosted["P003"], 1e-9)

	assert.Nil(t, metrics.SeasonalDemand(online, 0))
	assert.Nil(t, metrics.SeasonalDemand(nil, 1))
}
