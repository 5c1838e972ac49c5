package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfsense/shelfsense-go/pkg/core"
	"github.com/shelfsense/shelfsense-go/pkg/scoring"
	"github.com/shelfsense/shelfsense-go/pkg/table"
	"github.com/shelfsense/shelfsense-go/pkg/tools"
)

var (
	insightsWrite bool
	scoreTop      int
	planTopN      int
	planSlack     int
	planUpgrades  bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Merge layout, movements and online views into the insights table",
	Long: `Compute one insights row per layout product: its zone, the zone's
footfall, the product's online views and the zone's traffic category.

Examples:
  shelfsense insights
  shelfsense insights --write -o json`,
	Args: cobra.NoArgs,
	RunE: runInsights,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every product and zone",
	Long: `Compute the relocation score of every product and the desirability
of every zone. Nothing is written.

Examples:
  shelfsense score --top 10`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan relocations and record them in the decision log",
	Long: `Score the current tables and assign products to better zones under
per-zone capacity. Every assignment is recorded in the decision log as a
pending move. Use "run" to also write the plan table.

Examples:
  shelfsense plan
  shelfsense plan --top-n 5 --only-upgrades`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the whole pipeline and write the output tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
			return show(cmd, e, tools.ToolRunPlanner, nil, func(ctx context.Context) (interface{}, error) {
				return e.Run(ctx)
			})
		})
	},
}

func init() {
	insightsCmd.Flags().BoolVar(&insightsWrite, "write", false, "Write the insights table")
	scoreCmd.Flags().IntVar(&scoreTop, "top", 0, "Show only the N highest-scoring products (0 = all)")
	planCmd.Flags().IntVar(&planTopN, "top-n", 0, "Plan only the N highest-scoring products (0 = all)")
	planCmd.Flags().IntVar(&planSlack, "slack", 0, "Extra products a zone may receive (default from config)")
	planCmd.Flags().BoolVar(&planUpgrades, "only-upgrades", false, "Only move products to more desirable zones")

	rootCmd.AddCommand(insightsCmd, scoreCmd, planCmd, runCmd)
}

// inputs holds the decoded input tables.
type inputs struct {
	layout    []table.LayoutRow
	movements []table.Movement
	online    []table.OnlineRow
	sales     []table.SaleRow
}

// loadInputs reads the input tables through the engine's cache. Missing
// tables decode to no rows; the engine reports them as warnings.
func loadInputs(e *core.Engine) inputs {
	cfg, cache := e.Config(), e.Cache()
	var in inputs
	in.layout, _ = table.DecodeLayout(cache.Load(cfg.DataPath(cfg.Data.Layout), table.LayoutSchema).Table)
	in.movements, _ = table.DecodeMovements(cache.Load(cfg.DataPath(cfg.Data.Movements), table.MovementSchema).Table)
	in.online, _ = table.DecodeOnline(cache.Load(cfg.DataPath(cfg.Data.Online), table.OnlineSchema).Table)
	in.sales, _ = table.DecodeSales(cache.Load(cfg.DataPath(cfg.Data.Sales), table.SalesSchema).Table)
	return in
}

func runInsights(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
		in := loadInputs(e)
		res, err := e.ComputeInsights(ctx, in.layout, in.movements, in.online)
		if err != nil {
			return err
		}

		if insightsWrite && len(res.Rows) > 0 {
			path := e.Config().InsightsPath(e.Config().Data.Insights)
			t := table.EncodeInsights(res.Rows)
			if err := table.WriteFile(path, t); err != nil {
				return err
			}
			e.Cache().Put(path, t)
			cmd.PrintErrf("Insights written to %s\n", path)
		}

		if output == outputJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ZONE\tPRODUCT\tNAME\tVISITS\tONLINE VIEWS\tCATEGORY")
		for _, r := range res.Rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n", r.Zone, r.ProductID, r.ProductName, r.Visits, r.OnlineViews, r.ZoneCategory)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		writeWarnings(cmd.OutOrStdout(), res.Warnings)
		return nil
	})
}

// scoreInputs runs the insights and scoring stages.
func scoreInputs(ctx context.Context, e *core.Engine) (*core.ScoredTable, error) {
	in := loadInputs(e)
	insights, err := e.ComputeInsights(ctx, in.layout, in.movements, in.online)
	if err != nil {
		return nil, err
	}
	scored, err := e.GenerateRelocationScores(ctx, in.layout, in.movements, in.online, in.sales, insights.Rows, scoring.Extensions{})
	if err != nil {
		return nil, err
	}
	scored.Warnings = joinWarnings(insights.Warnings, scored.Warnings)
	return scored, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
		scored, err := scoreInputs(ctx, e)
		if err != nil {
			return err
		}
		if scoreTop > 0 && len(scored.Products) > scoreTop {
			scored.Products = scored.Products[:scoreTop]
		}

		if output == outputJSON {
			return writeJSON(cmd.OutOrStdout(), scored)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tNAME\tZONE\tSCORE")
		for _, p := range scored.Products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", p.ProductID, p.ProductName, p.CurrentZone, p.Score)
		}
		fmt.Fprintln(w, "\nZONE\tDESIRABILITY\tFOOTFALL\tSALES")
		for _, z := range scored.Zones {
			fmt.Fprintf(w, "%s\t%.2f\t%d\t%.2f\n", z.Zone, z.Score, z.Metrics.Footfall, z.Metrics.Sales)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		writeWarnings(cmd.OutOrStdout(), scored.Warnings)
		return nil
	})
}

func runPlan(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, func(ctx context.Context, e *core.Engine) error {
		scored, err := scoreInputs(ctx, e)
		if err != nil {
			return err
		}

		policy := e.DefaultCapacityPolicy()
		if cmd.Flags().Changed("top-n") {
			policy.TopN = planTopN
		}
		if cmd.Flags().Changed("slack") {
			policy.Slack = planSlack
		}
		if cmd.Flags().Changed("only-upgrades") {
			policy.OnlyUpgrades = planUpgrades
		}

		plan, err := e.PlanAssignments(ctx, scored, policy)
		if err != nil {
			return err
		}
		plan.Warnings = joinWarnings(scored.Warnings, plan.Warnings)

		if output == outputJSON {
			return writeJSON(cmd.OutOrStdout(), plan)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run %s\n", plan.RunID)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tNAME\tFROM\tTO\tSCORE\tREASON")
		for _, a := range plan.Assignments {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%s\n", a.ProductID, a.ProductName, a.FromZone, a.ToZone, a.Score, a.Reason)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, s := range plan.Skipped {
			fmt.Fprintf(out, "Skipped %s (%s): %s\n", s.ProductName, s.ProductID, s.Reason)
		}
		writeWarnings(out, plan.Warnings)
		return nil
	})
}
