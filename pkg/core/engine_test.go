package core_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shelfsense "github.com/shelfsense/shelfsense-go/pkg/core"
	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/planner"
	"github.com/shelfsense/shelfsense-go/pkg/scoring"
	"github.com/shelfsense/shelfsense-go/pkg/storage"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

var now = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

// scenarioA is the two-zone store: A1 draws three visits, B2 one.
var scenarioA = map[string]string{
	"movements.csv":                  "Customer_ID,Timestamp,Zone\nC1,2025-07-03 09:00:00,A1\nC2,2025-07-03 09:05:00,A1\nC3,2025-07-03 09:10:00,A1\nC4,2025-07-03 09:15:00,B2\n",
	"store_layout.csv":               "Zone,Product_ID,Product_Name\nA1,P001,Tea\nB2,P002,Sugar\n",
	"online_product_performance.csv": "Product_ID,Product_Name,Online_Views\nP001,Tea,5000\nP002,Sugar,100\n",
	"pos_sales.csv":                  "Zone,Sales\nA1,300\nB2,50\n",
}

// setup writes the data files into a temp dir and returns a config pointing
// at it, with a JSON decision log.
func setup(t *testing.T, files map[string]string) *shelfsense.Config {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o644))
	}

	cfg := shelfsense.DefaultConfig()
	cfg.Data.Dir = dataDir
	cfg.Data.InsightsDir = filepath.Join(dir, "insights")
	cfg.Memory.Config = map[string]interface{}{
		"path": filepath.Join(dir, "agent_memory", "decision_log.json"),
	}
	return cfg
}

func newEngine(t *testing.T, cfg *shelfsense.Config) *shelfsense.Engine {
	t.Helper()
	engine, err := shelfsense.NewEngine(cfg, shelfsense.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func kinds(ws []shelfsense.Warning) []shelfsense.WarningKind {
	out := make([]shelfsense.WarningKind, len(ws))
	for i, w := range ws {
		out[i] = w.Kind
	}
	return out
}

func TestEngine_Run_ScenarioA(t *testing.T) {
	cfg := setup(t, scenarioA)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	res, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, metrics.Hot, res.Insights.Categories["A1"])
	assert.Equal(t, metrics.Cold, res.Insights.Categories["B2"])
	require.Len(t, res.Insights.Rows, 2)
	assert.Equal(t, 3, res.Insights.Rows[0].Visits)

	require.Len(t, res.Scores.Products, 2)
	assert.Equal(t, "P001", res.Scores.Products[0].ProductID)
	assert.InDelta(t, 70.0, res.Scores.Products[0].Score, 1e-9)
	assert.InDelta(t, 10.0, res.Scores.Products[1].Score, 1e-9)
	assert.Equal(t, "A1", res.Scores.Zones[0].Zone)

	require.Len(t, res.Plan.Assignments, 2)
	assert.NotEmpty(t, res.Plan.RunID)
	assert.Equal(t, "P001", res.Plan.Assignments[0].ProductID)
	assert.Equal(t, "B2", res.Plan.Assignments[0].ToZone)
	assert.Equal(t, "P002", res.Plan.Assignments[1].ProductID)
	assert.Equal(t, "A1", res.Plan.Assignments[1].ToZone)
	assert.Equal(t, "In a low-traffic zone.", res.Plan.Assignments[1].Reason)

	// Output tables are written and cached.
	l := table.LoadOrDefault(res.PlanPath, table.PlanSchema)
	require.False(t, l.Defaulted, "%v", l.Reason)
	rows, _ := table.DecodePlan(l.Table)
	require.Len(t, rows, 2)
	assert.Equal(t, "A1", rows[1].DestinationZone)
	assert.FileExists(t, res.InsightsPath)

	// Every assignment is written back as a planned entry.
	report, err := engine.PastOutcomes(ctx)
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, storage.KindPlanned, report.Entries[0].Kind)
	assert.Equal(t, planner.PendingOutcome, report.Entries[0].Outcome)
	assert.Equal(t, 50.0, report.Entries[0].SalesSnapshot)
	assert.True(t, now.Equal(report.Entries[0].Timestamp))
}

func TestEngine_Run_PendingMovesAreSkipped(t *testing.T) {
	cfg := setup(t, scenarioA)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	_, err := engine.Run(ctx)
	require.NoError(t, err)

	res, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Plan.Assignments)
	require.Len(t, res.Plan.Skipped, 2)
	for _, s := range res.Plan.Skipped {
		assert.Equal(t, planner.SkipPendingOutcome, s.Reason)
	}
}

func TestEngine_PlanAssignments_OnlyUpgrades(t *testing.T) {
	cfg := setup(t, scenarioA)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	scored, err := engine.GenerateRelocationScores(ctx,
		[]table.LayoutRow{{Zone: "A1", ProductID: "P001", ProductName: "Tea"}, {Zone: "B2", ProductID: "P002", ProductName: "Sugar"}},
		[]table.Movement{{Zone: "A1"}, {Zone: "A1"}, {Zone: "A1"}, {Zone: "B2"}},
		[]table.OnlineRow{{ProductID: "P001", OnlineViews: 5000}, {ProductID: "P002", OnlineViews: 100}},
		[]table.SaleRow{{Zone: "A1", Amount: 300}, {Zone: "B2", Amount: 50}},
		nil, scoring.Extensions{})
	require.NoError(t, err)

	policy := engine.DefaultCapacityPolicy()
	policy.OnlyUpgrades = true
	plan, err := engine.PlanAssignments(ctx, scored, policy)
	require.NoError(t, err)

	require.Len(t, plan.Assignments, 1)
	assert.Equal(t, "P002", plan.Assignments[0].ProductID)
	assert.Equal(t, "A1", plan.Assignments[0].ToZone)
	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, "P001", plan.Skipped[0].ProductID)
	assert.Equal(t, planner.SkipNoEligibleZone, plan.Skipped[0].Reason)
}

func TestEngine_Run_ScenarioB_NoMovements(t *testing.T) {
	files := map[string]string{}
	for k, v := range scenarioA {
		files[k] = v
	}
	files["movements.csv"] = "Customer_ID,Timestamp,Zone\n"
	cfg := setup(t, files)
	engine := newEngine(t, cfg)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, metrics.Unknown, res.Insights.Categories["A1"])
	assert.Equal(t, metrics.Unknown, res.Insights.Categories["B2"])
	for _, z := range res.Scores.Zones {
		assert.Equal(t, 0, z.Metrics.Footfall)
	}
	assert.Empty(t, res.Plan.Assignments)
	assert.Contains(t, kinds(res.Plan.Warnings), shelfsense.WarnMissingData)
	assert.Contains(t, kinds(res.Warnings), shelfsense.WarnMissingData)
}

func TestEngine_Run_MissingLayout(t *testing.T) {
	cfg := setup(t, map[string]string{})
	engine := newEngine(t, cfg)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Insights.Rows)
	assert.Empty(t, res.Scores.Products)
	assert.Empty(t, res.Plan.Assignments)
	assert.Empty(t, res.PlanPath)
	assert.Contains(t, kinds(res.Warnings), shelfsense.WarnMissingData)

	_, statErr := os.Stat(cfg.InsightsPath(cfg.Data.Plan))
	assert.True(t, os.IsNotExist(statErr))
}

func TestEngine_Run_SyntheticSales(t *testing.T) {
	files := map[string]string{}
	for k, v := range scenarioA {
		if k != "pos_sales.csv" {
			files[k] = v
		}
	}
	cfg := setup(t, files)

	first, err := newEngine(t, cfg).GenerateRelocationScores(context.Background(), nil, nil, nil, nil,
		[]table.InsightRow{{Zone: "A1", ProductID: "P001", ProductName: "Tea", Visits: 3, OnlineViews: 5000}}, scoring.Extensions{})
	require.NoError(t, err)
	assert.Contains(t, kinds(first.Warnings), shelfsense.WarnSyntheticSales)
	require.Len(t, first.Products, 1)

	res, err := newEngine(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, kinds(res.Warnings), shelfsense.WarnSyntheticSales)
	assert.NotEmpty(t, res.Plan.Assignments)
}

func TestEngine_CorruptDecisionLog(t *testing.T) {
	cfg := setup(t, scenarioA)
	path := cfg.Memory.Config["path"].(string)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	engine := newEngine(t, cfg)
	ctx := context.Background()

	res, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Plan.Assignments, 2)
	assert.Contains(t, kinds(res.Warnings), shelfsense.WarnCorruptPersisted)
	assert.Contains(t, kinds(res.Warnings), shelfsense.WarnMemoryWrite)

	_, err = engine.RecordOutcome(ctx, "Sugar", "B2", "A1", "sales increased by 15%")
	assert.True(t, errors.Is(err, shelfsense.ErrCorruptPersisted))

	report, err := engine.PastOutcomes(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Entries)
	assert.Contains(t, kinds(report.Warnings), shelfsense.WarnCorruptPersisted)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "corrupt log must be left untouched")
}

func TestEngine_NoMemory(t *testing.T) {
	cfg := setup(t, scenarioA)
	cfg.Memory.Provider = "none"
	engine := newEngine(t, cfg)
	ctx := context.Background()

	res, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Plan.Assignments, 2)
	assert.Empty(t, res.Warnings)

	_, err = engine.RecordOutcome(ctx, "Sugar", "B2", "A1", "no change")
	assert.True(t, errors.Is(err, shelfsense.ErrStorageOperation))
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := shelfsense.DefaultConfig()
	cfg.Memory.Provider = "redis"
	_, err := shelfsense.NewEngine(cfg)
	assert.True(t, errors.Is(err, shelfsense.ErrInvalidConfig))

	cfg = shelfsense.DefaultConfig()
	cfg.Scoring.Weights.Footfall = 0.9
	_, err = shelfsense.NewEngine(cfg)
	assert.True(t, errors.Is(err, shelfsense.ErrInvalidConfig))
}

func TestEngine_RecordOutcome(t *testing.T) {
	cfg := setup(t, scenarioA)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	_, err := engine.Run(ctx)
	require.NoError(t, err)

	entry, err := engine.RecordOutcome(ctx, "Sugar", "B2", "A1", "sales increased by 15%")
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Equal(t, "P002", entry.ProductID)
	assert.Equal(t, storage.KindOutcome, entry.Kind)

	report, err := engine.PastOutcomes(ctx, shelfsense.WithOutcomeProduct("sugar"))
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "sales increased by 15%", report.Entries[1].Outcome)

	report, err = engine.PastOutcomes(ctx, shelfsense.WithOutcomeLimit(1))
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)

	_, err = engine.RecordOutcome(ctx, "  ", "B2", "A1", "x")
	assert.True(t, errors.Is(err, shelfsense.ErrInvalidInput))
}

func TestEngine_ExplainAssignment_FromPlan(t *testing.T) {
	cfg := setup(t, scenarioA)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	_, err := engine.Run(ctx)
	require.NoError(t, err)

	text, err := engine.ExplainAssignment(ctx, "tea")
	require.NoError(t, err)
	assert.Equal(t, "Tea will move from A1 to B2 (relocation score 70.00). Footfall 3, POS sales 300, online views 5000.", text)

	// A fresh engine falls back to the persisted plan table.
	fresh := newEngine(t, cfg)
	text, err = fresh.ExplainAssignment(ctx, "SUGAR")
	require.NoError(t, err)
	assert.Equal(t, "Sugar will move from B2 to A1 (relocation score 10.00). In a low-traffic zone.", text)
}

func TestEngine_ExplainAssignment_KeepsPlanReasonAfterRescoring(t *testing.T) {
	cfg := setup(t, scenarioA)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	_, err := engine.Run(ctx)
	require.NoError(t, err)

	// Rescoring with other inputs must not leak into the plan's explanation.
	_, err = engine.GenerateRelocationScores(ctx,
		[]table.LayoutRow{{Zone: "B2", ProductID: "P001", ProductName: "Tea"}, {Zone: "A1", ProductID: "P002", ProductName: "Sugar"}},
		[]table.Movement{{Zone: "B2"}, {Zone: "B2"}, {Zone: "A1"}},
		[]table.OnlineRow{{ProductID: "P001", OnlineViews: 10}, {ProductID: "P002", OnlineViews: 900}},
		[]table.SaleRow{{Zone: "A1", Amount: 20}, {Zone: "B2", Amount: 800}},
		nil, scoring.Extensions{})
	require.NoError(t, err)

	text, err := engine.ExplainAssignment(ctx, "tea")
	require.NoError(t, err)
	assert.Equal(t, "Tea will move from A1 to B2 (relocation score 70.00). Footfall 3, POS sales 300, online views 5000.", text)
}

func TestEngine_Run_ComplementaryPairs(t *testing.T) {
	files := map[string]string{"product_pairs.csv": "Product,Complementary\nSugar,Tea\nTea,Biscuits\n"}
	for k, v := range scenarioA {
		files[k] = v
	}
	cfg := setup(t, files)
	engine := newEngine(t, cfg)

	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	// Sugar's complement Tea sits in the hot zone A1.
	sugar, ok := res.Scores.Product("P002")
	require.True(t, ok)
	cs, ok := sugar.Component(scoring.Complementary)
	require.True(t, ok)
	assert.Equal(t, 1.0, cs.Signal)
	assert.InDelta(t, 0.05, cs.Contribution, 1e-9)
	assert.InDelta(t, 15.0, sugar.Score, 1e-9)

	tea, ok := res.Scores.Product("P001")
	require.True(t, ok)
	cs, _ = tea.Component(scoring.Complementary)
	assert.Equal(t, 0.0, cs.Contribution)
	seasonal, _ := tea.Component(scoring.Seasonal)
	assert.InDelta(t, 0.05, seasonal.Contribution, 1e-9)

	require.Len(t, res.Plan.Assignments, 2)
	assert.Equal(t, "P002", res.Plan.Assignments[1].ProductID)
	assert.Equal(t, "In a low-traffic zone, complementary affinity 1.00.", res.Plan.Assignments[1].Reason)

	text, err := engine.ExplainAssignment(context.Background(), "sugar")
	require.NoError(t, err)
	assert.Equal(t, "Sugar will move from B2 to A1 (relocation score 15.00). In a low-traffic zone, complementary affinity 1.00.", text)
}

// writeOutputs writes insights and plan tables without running the engine.
func writeOutputs(t *testing.T, cfg *shelfsense.Config) {
	t.Helper()
	insights := []table.InsightRow{
		{Zone: "A1", ProductID: "P001", ProductName: "Tea", Visits: 7, OnlineViews: 900, ZoneCategory: "Hot"},
		{Zone: "B2", ProductID: "P002", ProductName: "Sugar", Visits: 2, OnlineViews: 300, ZoneCategory: "Cold"},
		{Zone: "C3", ProductID: "P003", ProductName: "Sugar Free Gum", Visits: 1, OnlineViews: 40, ZoneCategory: "Cold"},
	}
	plan := []table.PlanRow{
		{ProductID: "P001", ProductName: "Tea", CurrentZone: "A1", DestinationZone: "B2", Score: 55, Reason: "Footfall 7."},
	}
	require.NoError(t, table.WriteFile(cfg.InsightsPath(cfg.Data.Insights), table.EncodeInsights(insights)))
	require.NoError(t, table.WriteFile(cfg.InsightsPath(cfg.Data.Plan), table.EncodePlan(plan)))
}

func TestEngine_ExplainAssignment_Lookup(t *testing.T) {
	cfg := setup(t, map[string]string{})
	writeOutputs(t, cfg)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    string
		expected string
		err      error
	}{
		{
			name:     "planned",
			query:    "Tea",
			expected: "Tea will move from A1 to B2 (relocation score 55.00). Footfall 7.",
		},
		{
			name:     "not planned, exact name wins",
			query:    "sugar",
			expected: "Sugar is not in the relocation plan. It is in zone B2 (cold), has 300 online views and 2 in-store visits, and may benefit from future relocation.",
		},
		{
			name:     "not planned, partial name",
			query:    "gum",
			expected: "Sugar Free Gum is not in the relocation plan. It is in zone C3 (cold), has 40 online views and 1 in-store visits, and may benefit from future relocation.",
		},
		{name: "ambiguous", query: "su", err: shelfsense.ErrAmbiguous},
		{name: "unknown", query: "caviar", err: shelfsense.ErrNotFound},
		{name: "empty", query: " ", err: shelfsense.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := engine.ExplainAssignment(ctx, tt.query)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}

	_, err := engine.ExplainAssignment(ctx, "su")
	var amb *shelfsense.AmbiguousError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, []string{"Sugar", "Sugar Free Gum"}, amb.Candidates)
}

func TestEngine_Lookups(t *testing.T) {
	cfg := setup(t, map[string]string{})
	writeOutputs(t, cfg)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	zone, err := engine.ZonePerformance(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "A1", zone.Zone)
	assert.Equal(t, metrics.Hot, zone.Category)
	assert.Equal(t, 7, zone.TotalVisits)
	require.Len(t, zone.Products, 1)

	_, err = engine.ZonePerformance(ctx, "Z9")
	assert.True(t, errors.Is(err, shelfsense.ErrNotFound))

	product, err := engine.ProductInsights(ctx, "tea")
	require.NoError(t, err)
	assert.Equal(t, "P001", product.Insight.ProductID)
	require.NotNil(t, product.Planned)
	assert.Equal(t, "B2", product.Planned.DestinationZone)

	product, err = engine.ProductInsights(ctx, "gum")
	require.NoError(t, err)
	assert.Nil(t, product.Planned)

	cats, err := engine.HotColdZones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, cats.Hot)
	assert.Equal(t, []string{"B2", "C3"}, cats.Cold)

	plan, err := engine.RelocationPlan(ctx)
	require.NoError(t, err)
	require.Len(t, plan.Rows, 1)
	assert.Equal(t, "Tea", plan.Rows[0].ProductName)
}

func TestEngine_Lookups_MissingInsights(t *testing.T) {
	cfg := setup(t, map[string]string{})
	engine := newEngine(t, cfg)
	ctx := context.Background()

	cats, err := engine.HotColdZones(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats.Hot)
	assert.Contains(t, kinds(cats.Warnings), shelfsense.WarnMissingData)

	zone, err := engine.ZonePerformance(ctx, "A1")
	require.NoError(t, err)
	assert.Empty(t, zone.Products)
	assert.Contains(t, kinds(zone.Warnings), shelfsense.WarnMissingData)

	_, err = engine.ProductInsights(ctx, "tea")
	assert.True(t, errors.Is(err, shelfsense.ErrMissingData))
}

func TestEngine_SimulatePlacement(t *testing.T) {
	cfg := setup(t, scenarioA)
	engine := newEngine(t, cfg)
	ctx := context.Background()

	_, err := engine.Run(ctx)
	require.NoError(t, err)

	sim, err := engine.SimulatePlacement(ctx, "sugar", "a1")
	require.NoError(t, err)
	assert.Equal(t, "B2", sim.From)
	assert.Equal(t, "A1", sim.To)
	assert.InDelta(t, 3.0, sim.FootfallRatio, 1e-9)
	assert.InDelta(t, 2.0, sim.ConversionRatio, 1e-9)
	assert.Equal(t, 1.0, sim.DwellRatio)
	assert.True(t, sim.EntranceZone)
	assert.InDelta(t, 2.53, sim.Factor, 1e-9)
	assert.InDelta(t, 153.0, sim.UpliftPct, 1e-6)
	assert.Equal(t, "Moving from B2 (visits 1) to A1 (visits 3) changes visibility by 3.00x. "+
		"Conversion shifts from 50.00 to 100.00. Dwell time data unavailable, assumed unchanged. "+
		"Entrance zone expected to boost impulse purchases.", sim.Reasoning)

	// An unknown zone gets the mean visits and the current conversion.
	sim, err = engine.SimulatePlacement(ctx, "Sugar", "Z9")
	require.NoError(t, err)
	assert.False(t, sim.EntranceZone)
	assert.InDelta(t, 1.5, sim.Factor, 1e-9)
	assert.Contains(t, kinds(sim.Warnings), shelfsense.WarnMissingData)

	_, err = engine.SimulatePlacement(ctx, "Sugar", "")
	assert.True(t, errors.Is(err, shelfsense.ErrInvalidInput))
}

func TestEngine_StockAlerts(t *testing.T) {
	cfg := setup(t, map[string]string{
		"stock_levels.csv": "Product_ID,Product_Name,Stock_Count\nP001,Tea,3\nP002,Sugar,25\nP003,Salt,10\n",
	})
	engine := newEngine(t, cfg)
	ctx := context.Background()

	report, path, err := engine.WriteStockAlerts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, metrics.DefaultLowStockThreshold, report.Threshold)
	require.Len(t, report.Alerts, 2)
	assert.Equal(t, "P001", report.Alerts[0].ProductID)
	assert.Equal(t, "P003", report.Alerts[1].ProductID)

	l := table.LoadOrDefault(path, table.StockSchema)
	require.False(t, l.Defaulted, "%v", l.Reason)
	assert.Equal(t, 2, l.Table.Len())

	report, err = engine.StockAlerts(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, report.Alerts)
}

func TestEngine_SalesDeclines(t *testing.T) {
	cfg := setup(t, map[string]string{
		"pos_sales.csv": "Product_ID,Sales,Date\nP001,100,2025-05-01\nP001,20,2025-06-28\nP002,50,2025-05-02\nP002,50,2025-06-27\n",
	})
	engine := newEngine(t, cfg)

	report, err := engine.SalesDeclines(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, report.Window)
	require.Len(t, report.Declines, 1)
	assert.Equal(t, "P001", report.Declines[0].ProductID)
	assert.InDelta(t, 0.8, report.Declines[0].Drop, 1e-9)
}
