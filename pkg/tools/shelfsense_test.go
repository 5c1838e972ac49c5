package tools_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsense/shelfsense-go/pkg/core"
	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/planner"
	"github.com/shelfsense/shelfsense-go/pkg/storage"
	"github.com/shelfsense/shelfsense-go/pkg/table"
	"github.com/shelfsense/shelfsense-go/pkg/tools"
)

// fakeEngine serves canned results. A non-nil err is returned by every
// operation.
type fakeEngine struct {
	err      error
	recorded []string
	outcomes []*storage.Entry
	opts     core.OutcomeOptions
}

var insight = table.InsightRow{Zone: "C3", ProductID: "P004", ProductName: "Dettol", Visits: 3, OnlineViews: 5000, ZoneCategory: "Cold"}

func (f *fakeEngine) ZonePerformance(ctx context.Context, zone string) (*core.ZoneReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &core.ZoneReport{Zone: "A1", Category: metrics.Hot, TotalVisits: 7, Products: []table.InsightRow{
		{Zone: "A1", ProductID: "P001", ProductName: "Tea", Visits: 7, OnlineViews: 100, ZoneCategory: "Hot"},
	}}, nil
}

func (f *fakeEngine) ProductInsights(ctx context.Context, name string) (*core.ProductReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &core.ProductReport{Insight: insight, Planned: &table.PlanRow{ProductID: "P004", CurrentZone: "C3", DestinationZone: "A1", Score: 61.5}}, nil
}

func (f *fakeEngine) RelocationPlan(ctx context.Context) (*core.PlanReport, error) {
	return &core.PlanReport{Rows: []table.PlanRow{
		{ProductName: "Dettol", CurrentZone: "C3", DestinationZone: "A1", Reason: "Online views 5000."},
	}}, f.err
}

func (f *fakeEngine) HotColdZones(ctx context.Context) (*core.ZoneCategories, error) {
	return &core.ZoneCategories{Hot: []string{"A1", "B2"}}, f.err
}

func (f *fakeEngine) PastOutcomes(ctx context.Context, opts ...core.OutcomeOption) (*core.OutcomeReport, error) {
	f.opts = core.OutcomeOptions{}
	for _, opt := range opts {
		opt(&f.opts)
	}
	return &core.OutcomeReport{Entries: f.outcomes}, f.err
}

func (f *fakeEngine) RecordOutcome(ctx context.Context, name, oldZone, newZone, desc string) (*storage.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.recorded = append(f.recorded, fmt.Sprintf("%s|%s|%s|%s", name, oldZone, newZone, desc))
	return &storage.Entry{ProductName: name}, nil
}

func (f *fakeEngine) ExplainAssignment(ctx context.Context, name string) (string, error) {
	return "Dettol will move from C3 to A1.", f.err
}

func (f *fakeEngine) SimulatePlacement(ctx context.Context, name, zone string) (*core.Simulation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &core.Simulation{Product: "Dettol", From: "C3", To: zone, UpliftPct: 42.4, Reasoning: "Busier zone."}, nil
}

func (f *fakeEngine) StockAlerts(ctx context.Context, threshold int) (*core.StockReport, error) {
	return &core.StockReport{Threshold: 10, Alerts: []table.StockRow{{ProductID: "P001", ProductName: "Tea", Stock: 3}}}, f.err
}

func (f *fakeEngine) SalesDeclines(ctx context.Context, window time.Duration, drop float64) (*core.DeclineReport, error) {
	return &core.DeclineReport{Window: 30 * 24 * time.Hour, DropPct: 0.2}, f.err
}

func (f *fakeEngine) Run(ctx context.Context) (*core.RunResult, error) {
	return &core.RunResult{
		Plan:     &core.PlanResult{Assignments: make([]planner.Assignment, 2)},
		PlanPath: "insights/relocation_plan.csv",
		Warnings: []core.Warning{{Kind: core.WarnSyntheticSales, Message: "synthetic sales"}},
	}, f.err
}

func dispatch(r *tools.Registry, name, args string) string {
	return r.Dispatch(context.Background(), openai.FunctionCall{Name: name, Arguments: args})
}

func TestForEngine_Definitions(t *testing.T) {
	r := tools.ForEngine(&fakeEngine{})
	defs := r.FunctionDefinitions()
	assert.Len(t, defs, 11)
	for _, d := range defs {
		assert.NotEmpty(t, d.Description, d.Name)
	}
}

func TestForEngine_Texts(t *testing.T) {
	f := &fakeEngine{outcomes: []*storage.Entry{{
		ProductName: "Dettol", OldZone: "C3", NewZone: "A1", Outcome: "sales increased by 15%",
		Timestamp: time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC),
	}}}
	r := tools.ForEngine(f)

	tests := []struct {
		name     string
		tool     string
		args     string
		expected string
	}{
		{
			name:     "zone performance",
			tool:     tools.ToolZonePerformance,
			args:     `{"zone_id":"a1"}`,
			expected: "Zone A1 is categorized as **Hot** with a total of **7 in-store visits**.\nProducts in this zone:\n- Tea (In-store visits: 7, Online views: 100)",
		},
		{
			name:     "product insights",
			tool:     tools.ToolProductInsights,
			args:     `{"product_name":"dett"}`,
			expected: "Product: Dettol\nCurrent Zone: C3 (Cold)\nIn-store Visits: 3\nOnline Views: 5000\nThis product is recommended for relocation to: A1 (relocation score 61.50).",
		},
		{
			name:     "plan summary",
			tool:     tools.ToolPlanSummary,
			expected: "Current Product Relocation Recommendations:\n- Move 'Dettol' (currently in C3) to A1: Online views 5000.",
		},
		{
			name:     "hot and cold zones",
			tool:     tools.ToolHotColdZones,
			expected: "Store Zone Categories:\nHot Zones (High Traffic): A1, B2\nNo Cold Zones identified.",
		},
		{
			name:     "past outcomes",
			tool:     tools.ToolPastOutcomes,
			args:     `{"product_name":"Dettol"}`,
			expected: "Past relocation outcomes for Dettol:\n- On 2025-07-03, Dettol was moved from C3 to A1. Outcome: sales increased by 15%.",
		},
		{
			name:     "what if",
			tool:     tools.ToolWhatIf,
			args:     `{"product_name":"Dettol","new_zone":"A1"}`,
			expected: "Moving Dettol from C3 to A1: predicted sales uplift +42%. Busier zone.",
		},
		{
			name:     "stock alerts",
			tool:     tools.ToolStockAlerts,
			expected: "Low stock alerts (threshold 10):\n- Tea (P001): 3 units left",
		},
		{
			name:     "no declines",
			tool:     tools.ToolSalesDeclines,
			expected: "No sales declines over 20% in the last 30 days.",
		},
		{
			name:     "run",
			tool:     tools.ToolRunPlanner,
			expected: "Planned 2 relocations (0 products skipped). Plan saved to insights/relocation_plan.csv.\n\nNote:\n- SyntheticSales: synthetic sales",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, dispatch(r, tt.tool, tt.args))
		})
	}
}

func TestForEngine_PastOutcomesFilters(t *testing.T) {
	f := &fakeEngine{}
	r := tools.ForEngine(f)

	out := dispatch(r, tools.ToolPastOutcomes, `{"zone":"A1","days":30,"limit":5}`)
	assert.Equal(t, "Agent memory is empty. No past relocation outcomes have been recorded yet.", out)
	assert.Equal(t, "A1", f.opts.Zone)
	assert.Equal(t, 30*24*time.Hour, f.opts.Window)
	assert.Equal(t, 5, f.opts.Limit)

	out = dispatch(r, tools.ToolPastOutcomes, `{"product_name":"Tea"}`)
	assert.Equal(t, "No past relocation outcomes found for product 'Tea' in agent memory.", out)
}

func TestForEngine_RecordOutcome(t *testing.T) {
	f := &fakeEngine{}
	r := tools.ForEngine(f)

	out := dispatch(r, tools.ToolRecordOutcome,
		`{"product_name":"Dettol","old_zone":"C3","new_zone":"A1","outcome_description":"sales increased by 15%"}`)
	assert.Contains(t, out, "Successfully recorded relocation outcome for Dettol from C3 to A1.")
	assert.Equal(t, []string{"Dettol|C3|A1|sales increased by 15%"}, f.recorded)

	out = dispatch(r, tools.ToolRecordOutcome, `{"product_name":"Dettol"}`)
	assert.Contains(t, out, "Invalid arguments")
	assert.Len(t, f.recorded, 1)
}

func TestForEngine_ErrorsBecomeText(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		tool     string
		args     string
		expected string
	}{
		{
			name:     "ambiguous product",
			err:      core.NewEngineError("ExplainAssignment", &core.AmbiguousError{Kind: "product", Query: "juice", Candidates: []string{"Apple Juice", "Orange Juice"}}),
			tool:     tools.ToolExplain,
			args:     `{"product_name":"juice"}`,
			expected: "Multiple products match 'juice'. Please be more specific. Matches: Apple Juice, Orange Juice",
		},
		{
			name:     "unknown product",
			err:      core.NewEngineError("ProductInsights", fmt.Errorf("%w: no product matches", core.ErrNotFound)),
			tool:     tools.ToolProductInsights,
			args:     `{"product_name":"Caviar"}`,
			expected: "No data found for product 'Caviar'. Please provide a valid product name.",
		},
		{
			name:     "unknown zone",
			err:      core.NewEngineError("ZonePerformance", core.ErrNotFound),
			tool:     tools.ToolZonePerformance,
			args:     `{"zone_id":"Z9"}`,
			expected: "No data found for zone 'Z9'. Please provide a valid zone ID (e.g., 'A1').",
		},
		{
			name:     "missing insights",
			err:      core.NewEngineError("SimulatePlacement", core.ErrMissingData),
			tool:     tools.ToolWhatIf,
			args:     `{"product_name":"Dettol","new_zone":"A1"}`,
			expected: "Final insights data not available. Run the relocation pipeline first.",
		},
		{
			name:     "storage failure",
			err:      core.NewEngineError("RecordOutcome", core.ErrStorageOperation),
			tool:     tools.ToolRecordOutcome,
			args:     `{"product_name":"Dettol","old_zone":"C3","new_zone":"A1","outcome_description":"ok"}`,
			expected: "Failed to run record_relocation_outcome due to an error: shelfsense: RecordOutcome: storage operation failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tools.ForEngine(&fakeEngine{err: tt.err})
			assert.Equal(t, tt.expected, dispatch(r, tt.tool, tt.args))
		})
	}

	require.True(t, errors.Is(core.NewEngineError("x", core.ErrStorageOperation), core.ErrStorageOperation))
}
