package tools

import (
	"fmt"
	"strings"

	"github.com/shelfsense/shelfsense-go/pkg/core"
)

func zonePerformanceText(r *core.ZoneReport) string {
	if len(r.Products) == 0 {
		return withWarnings(noInsights, r.Warnings)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Zone %s is categorized as **%s** with a total of **%d in-store visits**.\nProducts in this zone:",
		r.Zone, r.Category, r.TotalVisits)
	for _, p := range r.Products {
		fmt.Fprintf(&b, "\n- %s (In-store visits: %d, Online views: %d)", p.ProductName, p.Visits, p.OnlineViews)
	}
	if r.Metrics != nil {
		fmt.Fprintf(&b, "\nZone sales: %.2f, conversion: %.2f per visit.", r.Metrics.Sales, r.Metrics.Conversion)
	}
	return withWarnings(b.String(), r.Warnings)
}

func productInsightsText(r *core.ProductReport) string {
	in := r.Insight
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\nCurrent Zone: %s (%s)\nIn-store Visits: %d\nOnline Views: %d\n",
		in.ProductName, in.Zone, in.ZoneCategory, in.Visits, in.OnlineViews)
	if r.Planned != nil && r.Planned.DestinationZone != in.Zone {
		fmt.Fprintf(&b, "This product is recommended for relocation to: %s (relocation score %.2f).",
			r.Planned.DestinationZone, r.Planned.Score)
	} else {
		b.WriteString("This product is not currently part of a recommended relocation plan.")
	}
	return withWarnings(b.String(), r.Warnings)
}

func planSummaryText(r *core.PlanReport) string {
	if len(r.Rows) == 0 {
		return withWarnings("There are no current product relocation recommendations.", r.Warnings)
	}
	var b strings.Builder
	b.WriteString("Current Product Relocation Recommendations:")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "\n- Move '%s' (currently in %s) to %s", row.ProductName, row.CurrentZone, row.DestinationZone)
		if row.Reason != "" {
			fmt.Fprintf(&b, ": %s", row.Reason)
		}
	}
	return withWarnings(b.String(), r.Warnings)
}

func hotColdText(c *core.ZoneCategories) string {
	var b strings.Builder
	b.WriteString("Store Zone Categories:\n")
	if len(c.Hot) > 0 {
		fmt.Fprintf(&b, "Hot Zones (High Traffic): %s\n", strings.Join(c.Hot, ", "))
	} else {
		b.WriteString("No Hot Zones identified.\n")
	}
	if len(c.Cold) > 0 {
		fmt.Fprintf(&b, "Cold Zones (Low Traffic): %s", strings.Join(c.Cold, ", "))
	} else {
		b.WriteString("No Cold Zones identified.")
	}
	return withWarnings(b.String(), c.Warnings)
}

func outcomesText(product string, r *core.OutcomeReport) string {
	if len(r.Entries) == 0 {
		if product != "" {
			return withWarnings(fmt.Sprintf("No past relocation outcomes found for product '%s' in agent memory.", product), r.Warnings)
		}
		return withWarnings("Agent memory is empty. No past relocation outcomes have been recorded yet.", r.Warnings)
	}

	var b strings.Builder
	if product != "" {
		fmt.Fprintf(&b, "Past relocation outcomes for %s:", product)
	} else {
		b.WriteString("All past relocation outcomes:")
	}
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "\n- On %s, %s was moved from %s to %s. Outcome: %s.",
			e.Timestamp.Format("2006-01-02"), e.ProductName, e.OldZone, e.NewZone, strings.TrimSuffix(e.Outcome, "."))
	}
	return withWarnings(b.String(), r.Warnings)
}

func stockText(r *core.StockReport) string {
	if len(r.Alerts) == 0 {
		return withWarnings(fmt.Sprintf("No products at or below the stock threshold of %d.", r.Threshold), r.Warnings)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Low stock alerts (threshold %d):", r.Threshold)
	for _, s := range r.Alerts {
		name := s.ProductName
		if name == "" {
			name = s.ProductID
		}
		fmt.Fprintf(&b, "\n- %s (%s): %d units left", name, s.ProductID, s.Stock)
	}
	return withWarnings(b.String(), r.Warnings)
}

func declinesText(r *core.DeclineReport) string {
	days := int(r.Window.Hours() / 24)
	if len(r.Declines) == 0 {
		return withWarnings(fmt.Sprintf("No sales declines over %.0f%% in the last %d days.", r.DropPct*100, days), r.Warnings)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Products with declining sales (last %d days, drop over %.0f%%):", days, r.DropPct*100)
	for _, d := range r.Declines {
		fmt.Fprintf(&b, "\n- %s: %.2f before, %.2f recently (down %.0f%%)", d.ProductID, d.Baseline, d.Recent, d.Drop*100)
	}
	return withWarnings(b.String(), r.Warnings)
}

func runText(r *core.RunResult) string {
	moves, skipped := 0, 0
	if r.Plan != nil {
		moves, skipped = len(r.Plan.Assignments), len(r.Plan.Skipped)
	}
	s := fmt.Sprintf("Planned %d relocations (%d products skipped).", moves, skipped)
	if r.PlanPath != "" {
		s += " Plan saved to " + r.PlanPath + "."
	}
	return withWarnings(s, r.Warnings)
}

// withWarnings appends the warnings of a result as a note.
func withWarnings(text string, warnings []core.Warning) string {
	if len(warnings) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\nNote:")
	for _, w := range warnings {
		b.WriteString("\n- ")
		b.WriteString(w.String())
	}
	return b.String()
}
