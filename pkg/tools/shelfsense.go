package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/shelfsense/shelfsense-go/pkg/core"
	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// Engine is the part of *core.Engine the tools call.
type Engine interface {
	ZonePerformance(ctx context.Context, zone string) (*core.ZoneReport, error)
	ProductInsights(ctx context.Context, productName string) (*core.ProductReport, error)
	RelocationPlan(ctx context.Context) (*core.PlanReport, error)
	HotColdZones(ctx context.Context) (*core.ZoneCategories, error)
	PastOutcomes(ctx context.Context, opts ...core.OutcomeOption) (*core.OutcomeReport, error)
	RecordOutcome(ctx context.Context, productName, oldZone, newZone, description string) (*storage.Entry, error)
	ExplainAssignment(ctx context.Context, productName string) (string, error)
	SimulatePlacement(ctx context.Context, productName, zone string) (*core.Simulation, error)
	StockAlerts(ctx context.Context, threshold int) (*core.StockReport, error)
	SalesDeclines(ctx context.Context, window time.Duration, dropPct float64) (*core.DeclineReport, error)
	Run(ctx context.Context) (*core.RunResult, error)
}

var _ Engine = (*core.Engine)(nil)

// Tool names.
const (
	ToolZonePerformance = "get_zone_performance"
	ToolProductInsights = "get_product_insights"
	ToolPlanSummary     = "get_relocation_plan_summary"
	ToolHotColdZones    = "get_hot_cold_zones"
	ToolPastOutcomes    = "get_past_relocation_outcomes"
	ToolRecordOutcome   = "record_relocation_outcome"
	ToolExplain         = "explain_relocation_reason"
	ToolWhatIf          = "what_if_placement"
	ToolStockAlerts     = "get_stock_alerts"
	ToolSalesDeclines   = "get_sales_declines"
	ToolRunPlanner      = "run_relocation_planner"
)

const noInsights = "Final insights data not available. Run the relocation pipeline first."

type zoneArgs struct {
	ZoneID string `json:"zone_id" validate:"required"`
}

type productArgs struct {
	ProductName string `json:"product_name" validate:"required"`
}

type outcomesArgs struct {
	ProductName string `json:"product_name,omitempty"`
	Zone        string `json:"zone,omitempty"`
	Days        int    `json:"days,omitempty" validate:"gte=0"`
	Limit       int    `json:"limit,omitempty" validate:"gte=0"`
}

type recordArgs struct {
	ProductName        string `json:"product_name" validate:"required"`
	OldZone            string `json:"old_zone" validate:"required"`
	NewZone            string `json:"new_zone" validate:"required"`
	OutcomeDescription string `json:"outcome_description" validate:"required"`
}

type whatIfArgs struct {
	ProductName string `json:"product_name" validate:"required"`
	NewZone     string `json:"new_zone" validate:"required"`
}

type stockArgs struct {
	Threshold int `json:"threshold,omitempty" validate:"gte=0"`
}

type declineArgs struct {
	WindowDays int     `json:"window_days,omitempty" validate:"gte=0"`
	DropPct    float64 `json:"drop_pct,omitempty" validate:"gte=0,lte=1"`
}

type noArgs struct{}

func str(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: desc}
}

func integer(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Integer, Description: desc}
}

func object(required []string, props map[string]jsonschema.Definition) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.Object, Properties: props, Required: required}
}

// ForEngine builds the registry of engine tools.
func ForEngine(e Engine) *Registry {
	r := NewRegistry()
	for _, t := range engineTools(e) {
		// Names are unique constants; Register cannot fail here.
		_ = r.Register(t)
	}
	return r
}

func engineTools(e Engine) []Tool {
	return []Tool{
		{
			Name:        ToolZonePerformance,
			Description: "Performance of one store zone (e.g. 'A1'): its category (Hot/Cold), total in-store visits and the products placed in it.",
			Category:    CategoryPerformance,
			Parameters:  object([]string{"zone_id"}, map[string]jsonschema.Definition{"zone_id": str("Zone identifier, e.g. 'A1'")}),
			Handler: Typed(func(ctx context.Context, in zoneArgs) (string, error) {
				report, err := e.ZonePerformance(ctx, in.ZoneID)
				if err != nil {
					return describe("zone", in.ZoneID, err)
				}
				return zonePerformanceText(report), nil
			}),
		},
		{
			Name:        ToolProductInsights,
			Description: "Insights for one product: current zone, in-store visits, online views and whether it is part of the relocation plan.",
			Category:    CategoryPerformance,
			Parameters:  object([]string{"product_name"}, map[string]jsonschema.Definition{"product_name": str("Full or partial product name")}),
			Handler: Typed(func(ctx context.Context, in productArgs) (string, error) {
				report, err := e.ProductInsights(ctx, in.ProductName)
				if err != nil {
					return describe("product", in.ProductName, err)
				}
				return productInsightsText(report), nil
			}),
		},
		{
			Name:        ToolPlanSummary,
			Description: "Summary of the recommended relocation plan: which products move from which zone to which zone, and why.",
			Category:    CategoryOptimization,
			Handler: Typed(func(ctx context.Context, _ noArgs) (string, error) {
				report, err := e.RelocationPlan(ctx)
				if err != nil {
					return describe("plan", "", err)
				}
				return planSummaryText(report), nil
			}),
		},
		{
			Name:        ToolHotColdZones,
			Description: "Lists the Hot (high traffic) and Cold (low traffic) zones of the store.",
			Category:    CategoryBehavior,
			Handler: Typed(func(ctx context.Context, _ noArgs) (string, error) {
				cats, err := e.HotColdZones(ctx)
				if err != nil {
					return describe("zone", "", err)
				}
				return hotColdText(cats), nil
			}),
		},
		{
			Name:        ToolPastOutcomes,
			Description: "Recorded outcomes of past relocations from the decision log, optionally filtered by product, zone or age.",
			Category:    CategoryGeneral,
			Parameters: object(nil, map[string]jsonschema.Definition{
				"product_name": str("Exact product name to filter by"),
				"zone":         str("Zone moved out of or into"),
				"days":         integer("Only entries from the last N days"),
				"limit":        integer("Only the N most recent entries"),
			}),
			Handler: Typed(func(ctx context.Context, in outcomesArgs) (string, error) {
				opts := []core.OutcomeOption{core.WithOutcomeProduct(in.ProductName), core.WithOutcomeZone(in.Zone), core.WithOutcomeLimit(in.Limit)}
				if in.Days > 0 {
					opts = append(opts, core.WithOutcomeWindow(time.Duration(in.Days)*24*time.Hour))
				}
				report, err := e.PastOutcomes(ctx, opts...)
				if err != nil {
					return describe("product", in.ProductName, err)
				}
				return outcomesText(in.ProductName, report), nil
			}),
		},
		{
			Name:        ToolRecordOutcome,
			Description: "Records the outcome of a product relocation in the decision log so future recommendations learn from it.",
			Category:    CategoryGeneral,
			Parameters: object([]string{"product_name", "old_zone", "new_zone", "outcome_description"}, map[string]jsonschema.Definition{
				"product_name":        str("Name of the relocated product, e.g. 'Dettol'"),
				"old_zone":            str("Zone the product was moved from, e.g. 'A1'"),
				"new_zone":            str("Zone the product was moved to, e.g. 'B5'"),
				"outcome_description": str("What happened, e.g. 'sales increased by 15%'"),
			}),
			Handler: Typed(func(ctx context.Context, in recordArgs) (string, error) {
				if _, err := e.RecordOutcome(ctx, in.ProductName, in.OldZone, in.NewZone, in.OutcomeDescription); err != nil {
					return describe("product", in.ProductName, err)
				}
				return fmt.Sprintf("Successfully recorded relocation outcome for %s from %s to %s. This outcome will inform future recommendations.",
					in.ProductName, in.OldZone, in.NewZone), nil
			}),
		},
		{
			Name:        ToolExplain,
			Description: "Explains why a product is or is not scheduled for relocation.",
			Category:    CategoryOptimization,
			Parameters:  object([]string{"product_name"}, map[string]jsonschema.Definition{"product_name": str("Full or partial product name")}),
			Handler: Typed(func(ctx context.Context, in productArgs) (string, error) {
				text, err := e.ExplainAssignment(ctx, in.ProductName)
				if err != nil {
					return describe("product", in.ProductName, err)
				}
				return text, nil
			}),
		},
		{
			Name:        ToolWhatIf,
			Description: "Predicts the sales uplift of moving a product to another zone.",
			Category:    CategoryPrediction,
			Parameters: object([]string{"product_name", "new_zone"}, map[string]jsonschema.Definition{
				"product_name": str("Full or partial product name"),
				"new_zone":     str("Target zone, e.g. 'A1'"),
			}),
			Handler: Typed(func(ctx context.Context, in whatIfArgs) (string, error) {
				sim, err := e.SimulatePlacement(ctx, in.ProductName, in.NewZone)
				if err != nil {
					return describe("product", in.ProductName, err)
				}
				return fmt.Sprintf("Moving %s from %s to %s: predicted sales uplift %+.0f%%. %s",
					sim.Product, sim.From, sim.To, sim.UpliftPct, sim.Reasoning), nil
			}),
		},
		{
			Name:        ToolStockAlerts,
			Description: "Lists products whose stock is at or below a threshold.",
			Category:    CategoryStock,
			Parameters:  object(nil, map[string]jsonschema.Definition{"threshold": integer("Stock level at or below which to alert (default 10)")}),
			Handler: Typed(func(ctx context.Context, in stockArgs) (string, error) {
				report, err := e.StockAlerts(ctx, in.Threshold)
				if err != nil {
					return describe("stock", "", err)
				}
				return stockText(report), nil
			}),
		},
		{
			Name:        ToolSalesDeclines,
			Description: "Lists products whose recent sales dropped against the period before.",
			Category:    CategoryPerformance,
			Parameters: object(nil, map[string]jsonschema.Definition{
				"window_days": integer("Length of the recent window in days (default 30)"),
				"drop_pct":    {Type: jsonschema.Number, Description: "Minimum drop as a fraction, e.g. 0.2 for 20%"},
			}),
			Handler: Typed(func(ctx context.Context, in declineArgs) (string, error) {
				report, err := e.SalesDeclines(ctx, time.Duration(in.WindowDays)*24*time.Hour, in.DropPct)
				if err != nil {
					return describe("sales", "", err)
				}
				return declinesText(report), nil
			}),
		},
		{
			Name:        ToolRunPlanner,
			Description: "Recomputes insights, scores and the relocation plan from the current data.",
			Category:    CategoryOptimization,
			Handler: Typed(func(ctx context.Context, _ noArgs) (string, error) {
				res, err := e.Run(ctx)
				if err != nil {
					return describe("plan", "", err)
				}
				return runText(res), nil
			}),
		},
	}
}

// describe turns the expected lookup failures into answers. Other errors are
// returned for Dispatch to report.
func describe(kind, query string, err error) (string, error) {
	var amb *core.AmbiguousError
	switch {
	case errors.As(err, &amb):
		return fmt.Sprintf("Multiple %ss match '%s'. Please be more specific. Matches: %s",
			amb.Kind, amb.Query, strings.Join(amb.Candidates, ", ")), nil
	case errors.Is(err, core.ErrNotFound) && kind == "zone":
		return fmt.Sprintf("No data found for zone '%s'. Please provide a valid zone ID (e.g., 'A1').", query), nil
	case errors.Is(err, core.ErrNotFound):
		return fmt.Sprintf("No data found for %s '%s'. Please provide a valid %s name.", kind, query, kind), nil
	case errors.Is(err, core.ErrMissingData):
		return noInsights, nil
	case errors.Is(err, core.ErrInvalidInput):
		return fmt.Sprintf("Invalid request: %v", err), nil
	default:
		return "", err
	}
}
