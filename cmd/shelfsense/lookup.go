package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfsense/shelfsense-go/pkg/core"
	"github.com/shelfsense/shelfsense-go/pkg/tools"
)

var (
	outcomeProduct string
	outcomeZone    string
	outcomeDays    int
	outcomeLimit   int

	stockThreshold int
	stockWrite     bool

	declineWindowDays int
	declineDropPct    float64
)

var zoneCmd = &cobra.Command{
	Use:     "zone ZONE",
	Short:   "Show the performance of one zone",
	Example: "  shelfsense zone A1",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			return show(cmd, e, tools.ToolZonePerformance, map[string]interface{}{"zone_id": args[0]},
				func(ctx context.Context) (interface{}, error) { return e.ZonePerformance(ctx, args[0]) })
		})
	},
}

var productCmd = &cobra.Command{
	Use:     "product NAME",
	Short:   "Show the insights of one product",
	Example: `  shelfsense product "Sugar 1kg"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			return show(cmd, e, tools.ToolProductInsights, map[string]interface{}{"product_name": args[0]},
				func(ctx context.Context) (interface{}, error) { return e.ProductInsights(ctx, args[0]) })
		})
	},
}

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List hot and cold zones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			return show(cmd, e, tools.ToolHotColdZones, nil,
				func(ctx context.Context) (interface{}, error) { return e.HotColdZones(ctx) })
		})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize the most recent relocation plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			return show(cmd, e, tools.ToolPlanSummary, nil,
				func(ctx context.Context) (interface{}, error) { return e.RelocationPlan(ctx) })
		})
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain PRODUCT",
	Short: "Explain why a product is or is not being relocated",
	Long: `Explain a product's relocation. Products in the current plan get their
move and its reason; other products get a description of where they are.

Examples:
  shelfsense explain Tea`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			return show(cmd, e, tools.ToolExplain, map[string]interface{}{"product_name": args[0]},
				func(ctx context.Context) (interface{}, error) {
					text, err := e.ExplainAssignment(ctx, args[0])
					if err != nil {
						return nil, err
					}
					return map[string]string{"product": args[0], "explanation": text}, nil
				})
		})
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate PRODUCT ZONE",
	Short: "Estimate the sales uplift of moving a product",
	Long: `Estimate how moving a product to another zone would change its sales,
from the footfall and conversion of both zones.

Examples:
  shelfsense simulate Sugar A1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			return show(cmd, e, tools.ToolWhatIf, map[string]interface{}{"product_name": args[0], "new_zone": args[1]},
				func(ctx context.Context) (interface{}, error) { return e.SimulatePlacement(ctx, args[0], args[1]) })
		})
	},
}

var outcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "List past relocations from the decision log",
	Long: `List decision log entries, oldest first.

Examples:
  shelfsense outcomes
  shelfsense outcomes --product Tea --days 30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			toolArgs := map[string]interface{}{
				"product_name": outcomeProduct,
				"zone":         outcomeZone,
				"days":         outcomeDays,
				"limit":        outcomeLimit,
			}
			return show(cmd, e, tools.ToolPastOutcomes, toolArgs, func(ctx context.Context) (interface{}, error) {
				var opts []core.OutcomeOption
				if outcomeProduct != "" {
					opts = append(opts, core.WithOutcomeProduct(outcomeProduct))
				}
				if outcomeZone != "" {
					opts = append(opts, core.WithOutcomeZone(outcomeZone))
				}
				if outcomeDays > 0 {
					opts = append(opts, core.WithOutcomeWindow(time.Duration(outcomeDays)*24*time.Hour))
				}
				if outcomeLimit > 0 {
					opts = append(opts, core.WithOutcomeLimit(outcomeLimit))
				}
				return e.PastOutcomes(ctx, opts...)
			})
		})
	},
}

var recordCmd = &cobra.Command{
	Use:   "record PRODUCT OLD_ZONE NEW_ZONE OUTCOME",
	Short: "Record the observed outcome of a relocation",
	Long: `Append an outcome entry to the decision log. Recording an outcome ends
the pending period of the product's last planned move.

Examples:
  shelfsense record Tea A1 B2 "sales up 12%"`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			toolArgs := map[string]interface{}{
				"product_name":        args[0],
				"old_zone":            args[1],
				"new_zone":            args[2],
				"outcome_description": args[3],
			}
			return show(cmd, e, tools.ToolRecordOutcome, toolArgs, func(ctx context.Context) (interface{}, error) {
				return e.RecordOutcome(ctx, args[0], args[1], args[2], args[3])
			})
		})
	},
}

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "List products at or below the low stock threshold",
	Long: `List products whose stock is at or below the threshold. With --write
the alerts are also written to the stock alerts table.

Examples:
  shelfsense stock --threshold 5
  shelfsense stock --write`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			if stockWrite {
				_, path, err := e.WriteStockAlerts(ctx, stockThreshold)
				if err != nil {
					return err
				}
				cmd.PrintErrf("Stock alerts written to %s\n", path)
			}
			return show(cmd, e, tools.ToolStockAlerts, map[string]interface{}{"threshold": stockThreshold},
				func(ctx context.Context) (interface{}, error) { return e.StockAlerts(ctx, stockThreshold) })
		})
	},
}

var declinesCmd = &cobra.Command{
	Use:   "declines",
	Short: "List products with declining sales",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			toolArgs := map[string]interface{}{"window_days": declineWindowDays, "drop_pct": declineDropPct}
			return show(cmd, e, tools.ToolSalesDeclines, toolArgs, func(ctx context.Context) (interface{}, error) {
				return e.SalesDeclines(ctx, time.Duration(declineWindowDays)*24*time.Hour, declineDropPct)
			})
		})
	},
}

func init() {
	outcomesCmd.Flags().StringVar(&outcomeProduct, "product", "", "Only entries for this product")
	outcomesCmd.Flags().StringVar(&outcomeZone, "zone", "", "Only entries moving into or out of this zone")
	outcomesCmd.Flags().IntVar(&outcomeDays, "days", 0, "Only entries from the last N days (0 = all)")
	outcomesCmd.Flags().IntVar(&outcomeLimit, "limit", 0, "Keep only the N most recent entries (0 = all)")

	stockCmd.Flags().IntVar(&stockThreshold, "threshold", 0, "Low stock threshold (default from config)")
	stockCmd.Flags().BoolVar(&stockWrite, "write", false, "Write the stock alerts table")

	declinesCmd.Flags().IntVar(&declineWindowDays, "window-days", 0, "Recent window in days (default from config)")
	declinesCmd.Flags().Float64Var(&declineDropPct, "drop-pct", 0, "Minimum relative drop, 0-1 (default from config)")

	rootCmd.AddCommand(zoneCmd, productCmd, zonesCmd, summaryCmd, explainCmd, simulateCmd,
		outcomesCmd, recordCmd, stockCmd, declinesCmd)
}
