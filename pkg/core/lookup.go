package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shelfsense/shelfsense-go/pkg/memory"
	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// insightRows returns the persisted insights table. When it is missing the
// insights are recomputed from the input tables, with a MissingData warning.
func (e *Engine) insightRows(w *warnings) []table.InsightRow {
	if rows, ok := loadQuiet(e, e.insightsPath(), table.InsightsSchema, table.DecodeInsights); ok && len(rows) > 0 {
		return rows
	}
	w.add(WarnMissingData, "insights table not found, recomputed from the input tables")

	layout := load(e, w, e.layoutPath(), table.LayoutSchema, table.DecodeLayout)
	movements := load(e, w, e.movementPath(), table.MovementSchema, table.DecodeMovements)
	online, _ := loadQuiet(e, e.onlinePath(), table.OnlineSchema, table.DecodeOnline)
	return e.computeInsights(layout, movements, online, w).Rows
}

// ZonePerformance reports the category, visits and products of one zone.
//
// Parameters:
//   - ctx: Context (unused, kept for symmetry)
//   - zone: Zone identifier, case-insensitive (e.g. "a1")
//
// Returns the report, or an error wrapping ErrNotFound or ErrInvalidInput.
// Missing insights yield an empty report with a MissingData warning.
func (e *Engine) ZonePerformance(ctx context.Context, zone string) (*ZoneReport, error) {
	w := e.newWarnings("ZonePerformance")
	rows := e.insightRows(w)
	if len(rows) == 0 {
		return &ZoneReport{Zone: zone, Category: metrics.Unknown, Warnings: w.list}, nil
	}

	zones := make([]string, len(rows))
	for i, r := range rows {
		zones[i] = r.Zone
	}
	id, err := matchZone(zone, zones)
	if err != nil {
		return nil, NewEngineError("ZonePerformance", err)
	}

	report := &ZoneReport{Zone: id, Category: metrics.Unknown}
	for _, r := range rows {
		if r.Zone != id {
			continue
		}
		report.Products = append(report.Products, r)
		report.TotalVisits = max(report.TotalVisits, r.Visits)
		if r.ZoneCategory != "" {
			report.Category = metrics.Category(r.ZoneCategory)
		}
	}
	if zm, ok := metrics.Index(e.zoneMetrics(w))[id]; ok {
		report.Metrics = &zm
	}
	report.Warnings = w.list
	return report, nil
}

// matchZone resolves a zone identifier case-insensitively. Zones must match
// exactly; partial identifiers are not accepted.
func matchZone(query string, zones []string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", fmt.Errorf("%w: zone is required", ErrInvalidInput)
	}
	for _, z := range zones {
		if strings.EqualFold(z, q) {
			return z, nil
		}
	}
	return "", notFound("zone", query)
}

// ProductInsights reports the insights row of one product and, when it is
// part of the most recent plan, its plan row.
//
// Parameters:
//   - ctx: Context (unused, kept for symmetry)
//   - productName: Full or partial product name, case-insensitive
//
// Returns the report, or an error wrapping ErrNotFound, ErrAmbiguous or
// ErrInvalidInput.
func (e *Engine) ProductInsights(ctx context.Context, productName string) (*ProductReport, error) {
	w := e.newWarnings("ProductInsights")
	rows := e.insightRows(w)
	if len(rows) == 0 {
		return nil, NewEngineError("ProductInsights", fmt.Errorf("%w: no insights available", ErrMissingData))
	}

	row, err := findInsight(productName, rows)
	if err != nil {
		return nil, NewEngineError("ProductInsights", err)
	}
	return &ProductReport{Insight: row, Planned: e.plannedRow(row.ProductID), Warnings: w.list}, nil
}

// plannedRow returns the plan row of a product from the in-memory plan, then
// from the persisted plan table.
func (e *Engine) plannedRow(productID string) *table.PlanRow {
	if _, plan := e.snapshot(); plan != nil {
		for _, a := range plan.Assignments {
			if a.ProductID == productID {
				return fromAssignment(a)
			}
		}
		return nil
	}
	rows, _ := loadQuiet(e, e.planPath(), table.PlanSchema, table.DecodePlan)
	for i := range rows {
		if rows[i].ProductID == productID {
			return &rows[i]
		}
	}
	return nil
}

// RelocationPlan returns the most recent plan of this engine or, when it has
// not planned yet, the persisted relocation plan table. A missing table
// yields an empty report with a MissingData warning.
func (e *Engine) RelocationPlan(ctx context.Context) (*PlanReport, error) {
	w := e.newWarnings("RelocationPlan")
	if _, plan := e.snapshot(); plan != nil {
		return &PlanReport{RunID: plan.RunID, Rows: toPlanRows(plan.Assignments), Warnings: w.list}, nil
	}
	rows := load(e, w, e.planPath(), table.PlanSchema, table.DecodePlan)
	return &PlanReport{Rows: rows, Warnings: w.list}, nil
}

// HotColdZones lists the zones of each category, each list sorted.
// Missing insights yield empty lists with a MissingData warning.
func (e *Engine) HotColdZones(ctx context.Context) (*ZoneCategories, error) {
	w := e.newWarnings("HotColdZones")
	res := &ZoneCategories{}

	seen := make(map[string]bool)
	for _, r := range e.insightRows(w) {
		if seen[r.Zone] {
			continue
		}
		seen[r.Zone] = true
		switch metrics.Category(r.ZoneCategory) {
		case metrics.Hot:
			res.Hot = append(res.Hot, r.Zone)
		case metrics.Warm:
			res.Warm = append(res.Warm, r.Zone)
		case metrics.Cold:
			res.Cold = append(res.Cold, r.Zone)
		default:
			res.Unknown = append(res.Unknown, r.Zone)
		}
	}
	sort.Strings(res.Hot)
	sort.Strings(res.Warm)
	sort.Strings(res.Cold)
	sort.Strings(res.Unknown)

	res.Warnings = w.list
	return res, nil
}

// PastOutcomes lists decision log entries in chronological order.
//
// Example:
//
//	report, _ := engine.PastOutcomes(ctx,
//	    core.WithOutcomeProduct("Dettol"),
//	    core.WithOutcomeWindow(30*24*time.Hour),
//	)
//
// An unreadable decision log yields an empty list with a CorruptPersisted
// warning.
func (e *Engine) PastOutcomes(ctx context.Context, opts ...OutcomeOption) (*OutcomeReport, error) {
	w := e.newWarnings("PastOutcomes")
	o := applyOutcomeOptions(opts)

	entries, err := e.memory.Query(ctx, memory.Filter{
		ProductName: strings.TrimSpace(o.ProductName),
		Zone:        strings.TrimSpace(o.Zone),
		Window:      o.Window,
		Limit:       o.Limit,
	})
	if err != nil {
		w.memoryErr(err)
		entries = nil
	}
	return &OutcomeReport{Entries: entries, Warnings: w.list}, nil
}

// SimulatePlacement estimates the sales effect of moving one product to
// another zone.
//
// The estimate is a weighted mix of three ratios between the target zone
// and the product's current zone:
//
//	factor = 0.5 × footfall ratio + 0.3 × conversion ratio + 0.2 × dwell ratio
//
// then multiplied by the impulse bonus for entrance zones (the busiest
// zones), the cold penalty for Cold zones and, for premium products moved to
// an entrance zone, the premium bonus. Without dwell data the dwell ratio
// is 1. An unknown target zone is assumed to have the mean visits of the
// known zones and the conversion of the current zone.
//
// Parameters:
//   - ctx: Context (unused, kept for symmetry)
//   - productName: Full or partial product name, case-insensitive
//   - zone: Target zone identifier
//
// Returns the estimate, or an error wrapping ErrNotFound, ErrAmbiguous,
// ErrInvalidInput or ErrMissingData.
func (e *Engine) SimulatePlacement(ctx context.Context, productName, zone string) (*Simulation, error) {
	w := e.newWarnings("SimulatePlacement")
	target := strings.TrimSpace(zone)
	if target == "" {
		return nil, NewEngineError("SimulatePlacement", fmt.Errorf("%w: target zone is required", ErrInvalidInput))
	}

	rows := e.insightRows(w)
	if len(rows) == 0 {
		return nil, NewEngineError("SimulatePlacement", fmt.Errorf("%w: no insights available", ErrMissingData))
	}
	row, err := findInsight(productName, rows)
	if err != nil {
		return nil, NewEngineError("SimulatePlacement", err)
	}

	zm := e.zoneMetrics(w)
	byZone := metrics.Index(zm)
	known := make([]string, len(zm))
	for i, z := range zm {
		known[i] = z.Zone
	}
	if id, err := matchZone(target, known); err == nil {
		target = id
	}

	from := byZone[row.Zone]
	to, targetKnown := byZone[target]

	toVisits := float64(to.Footfall)
	toConversion := to.Conversion
	if !targetKnown {
		w.add(WarnMissingData, "zone %s has no data, assuming the mean visits of known zones", target)
		toVisits = meanFootfall(zm)
		toConversion = from.Conversion
	}

	cfg := e.config.Simulation
	sim := &Simulation{
		Product:         row.ProductName,
		From:            row.Zone,
		To:              target,
		FootfallRatio:   toVisits / max(float64(from.Footfall), 1),
		ConversionRatio: toConversion / max(from.Conversion, 0.01),
		DwellRatio:      1,
		EntranceZone:    isEntrance(target, zm, cfg.EntranceZones),
	}
	sim.Factor = 0.5*sim.FootfallRatio + 0.3*sim.ConversionRatio + 0.2*sim.DwellRatio
	if sim.EntranceZone {
		sim.Factor *= cfg.ImpulseBonus
	}
	if targetKnown && to.Category == metrics.Cold {
		sim.Factor *= cfg.ColdPenalty
	}
	if sim.EntranceZone && isPremium(row.ProductName, cfg.PremiumProducts) {
		sim.Factor *= cfg.PremiumBonus
	}
	sim.UpliftPct = (sim.Factor - 1) * 100

	sim.Reasoning = fmt.Sprintf("Moving from %s (visits %d) to %s (visits %.0f) changes visibility by %.2fx. "+
		"Conversion shifts from %.2f to %.2f. Dwell time data unavailable, assumed unchanged.",
		sim.From, from.Footfall, sim.To, toVisits, sim.FootfallRatio, from.Conversion, toConversion)
	if sim.EntranceZone {
		sim.Reasoning += " Entrance zone expected to boost impulse purchases."
	}

	sim.Warnings = w.list
	return sim, nil
}

func meanFootfall(zones []metrics.ZoneMetrics) float64 {
	if len(zones) == 0 {
		return 0
	}
	total := 0
	for _, z := range zones {
		total += z.Footfall
	}
	return float64(total) / float64(len(zones))
}

// isEntrance reports whether zone is one of the n busiest zones with
// movement data.
func isEntrance(zone string, zones []metrics.ZoneMetrics, n int) bool {
	busiest := make([]metrics.ZoneMetrics, 0, len(zones))
	for _, z := range zones {
		if z.Footfall > 0 {
			busiest = append(busiest, z)
		}
	}
	sort.SliceStable(busiest, func(i, j int) bool { return busiest[i].Footfall > busiest[j].Footfall })
	for i := 0; i < n && i < len(busiest); i++ {
		if busiest[i].Zone == zone {
			return true
		}
	}
	return false
}

func isPremium(name string, premium []string) bool {
	for _, p := range premium {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// StockAlerts lists products whose stock is at or below threshold. A
// threshold of 0 or less uses the configured threshold.
// A missing stock table yields an empty report with a MissingData warning.
func (e *Engine) StockAlerts(ctx context.Context, threshold int) (*StockReport, error) {
	w := e.newWarnings("StockAlerts")
	if threshold <= 0 {
		threshold = e.config.Alerts.LowStockThreshold
	}
	stock := load(e, w, e.stockPath(), table.StockSchema, table.DecodeStock)
	return &StockReport{
		Threshold: threshold,
		Alerts:    metrics.LowStock(stock, threshold),
		Warnings:  w.list,
	}, nil
}

// WriteStockAlerts runs StockAlerts and writes the alerts table.
//
// Returns the report and the path written, or an error wrapping
// ErrStorageOperation.
func (e *Engine) WriteStockAlerts(ctx context.Context, threshold int) (*StockReport, string, error) {
	report, err := e.StockAlerts(ctx, threshold)
	if err != nil {
		return nil, "", err
	}
	path := e.config.InsightsPath(e.config.Data.StockAlerts)
	if err := table.WriteFile(path, table.EncodeStock(report.Alerts)); err != nil {
		return report, "", NewEngineError("WriteStockAlerts", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	e.log.Info().Str("path", path).Int("alerts", len(report.Alerts)).Msg("stock alerts written")
	return report, path, nil
}

// SalesDeclines lists products whose sales in the trailing window dropped by
// more than dropPct against the sales before it. Zero arguments use the
// configured defaults.
func (e *Engine) SalesDeclines(ctx context.Context, window time.Duration, dropPct float64) (*DeclineReport, error) {
	w := e.newWarnings("SalesDeclines")
	if window <= 0 {
		window = days(e.config.Alerts.DeclineWindowDays)
	}
	if dropPct <= 0 {
		dropPct = e.config.Alerts.DeclineDropPct
	}

	sales := load(e, w, e.salesPath(), table.SalesSchema, table.DecodeSales)
	return &DeclineReport{
		Window:   window,
		DropPct:  dropPct,
		Declines: metrics.Declines(sales, window, dropPct),
		Warnings: w.list,
	}, nil
}
