package core

import (
	"context"

	"github.com/shelfsense/shelfsense-go/pkg/memory"
	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/scoring"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// GenerateRelocationScores scores every product and every zone.
//
// The process:
//  1. Products come from the layout; when the layout is empty they are
//     rebuilt from the insights table. With neither, the result is empty.
//  2. Zone sales are attributed from the sales table. A missing or empty
//     sales table is replaced by seeded synthetic sales (SyntheticSales
//     warning).
//  3. Zone metrics are built and classified with the configured policy.
//  4. Each product gets its signals plus the recency penalty from the
//     decision log, and is scored with the configured weights. Extension
//     signals left nil in ext fall back to the engine's WithExtensions
//     value, then to the derived ones: seasonal demand from online views
//     and complementary affinity from the product pairs table.
//  5. Products and zones are sorted by descending score, ties in input order.
//
// The result also becomes the engine's most recent score snapshot, used by
// RecordOutcome to resolve product IDs.
//
// Parameters:
//   - ctx: Context for decision log reads
//   - layout, movements, online, sales, insights: Input rows (any may be empty)
//   - ext: Optional extension signals (zero value means none)
//
// Returns the scored table; the error is reserved and currently always nil.
func (e *Engine) GenerateRelocationScores(ctx context.Context, layout []table.LayoutRow, movements []table.Movement,
	online []table.OnlineRow, sales []table.SaleRow, insights []table.InsightRow, ext scoring.Extensions) (*ScoredTable, error) {
	w := e.newWarnings("GenerateRelocationScores")
	st := e.generateScores(ctx, layout, movements, online, sales, insights, ext, w)
	st.Warnings = w.list
	return st, nil
}

func (e *Engine) generateScores(ctx context.Context, layout []table.LayoutRow, movements []table.Movement,
	online []table.OnlineRow, sales []table.SaleRow, insights []table.InsightRow, ext scoring.Extensions, w *warnings) *ScoredTable {
	now := e.now()
	st := &ScoredTable{GeneratedAt: now}

	if len(layout) == 0 && len(insights) > 0 {
		w.add(WarnMissingData, "store layout is empty, products taken from the insights table")
		layout = layoutFromInsights(insights)
	}
	if len(layout) == 0 {
		w.add(WarnMissingData, "store layout and insights are both empty, nothing to score")
		e.remember(st, nil)
		return st
	}
	if len(online) == 0 && len(insights) > 0 {
		online = onlineFromInsights(insights)
	}
	if len(movements) == 0 {
		w.add(WarnMissingData, "movement log is empty, footfall signals are 0 and every zone is Unknown")
	}

	zoneSales, productSales := e.attributeSales(layout, movements, sales, w)
	cfg := e.config.Scoring
	zm := metrics.BuildZoneMetrics(metrics.ZoneInputs{
		Layout:     layout,
		Movements:  movements,
		Sales:      zoneSales,
		Classifier: cfg.Classifier,
		Slack:      e.config.Planner.Slack,
	})
	byZone := metrics.Index(zm)

	snap := e.memory.Snapshot(ctx)
	w.memoryErr(snap.Err())

	views := metrics.OnlineViews(online)
	seen := make(map[string]bool, len(layout))
	inputs := make([]scoring.ProductInput, 0, len(layout))
	for _, l := range layout {
		if seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true

		z := byZone[l.Zone]
		velocity := z.Sales
		if productSales != nil {
			velocity = productSales[l.ProductID]
		}
		inputs = append(inputs, scoring.ProductInput{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Zone:        l.Zone,
			Footfall:    z.Footfall,
			ZoneSales:   z.Sales,
			Conversion:  z.Conversion,
			OnlineViews: views[l.ProductID],
			Velocity:    velocity,
			LowTraffic:  z.Category.IsLowTraffic(),
			Penalty:     snap.Penalty(memory.Ref{ID: l.ProductID, Name: l.ProductName}, now),
		})
	}

	ext = mergeExtensions(ext, e.ext, e.derivedExtensions(layout, online, zm))
	st.Products = scoring.ScoreProducts(inputs, cfg.Weights, ext)
	scoring.SortProducts(st.Products)
	st.Zones = scoring.ScoreZones(zm, cfg.ZoneWeights)
	scoring.SortZones(st.Zones)

	e.log.Debug().Int("products", len(st.Products)).Int("zones", len(st.Zones)).Msg("relocation scores generated")
	e.remember(st, nil)
	return st
}

// derivedExtensions computes the extension signals the engine can build on
// its own. A missing pairs table leaves the complementary signal unset.
func (e *Engine) derivedExtensions(layout []table.LayoutRow, online []table.OnlineRow, zm []metrics.ZoneMetrics) scoring.Extensions {
	ext := scoring.Extensions{
		Seasonal: metrics.SeasonalDemand(online, e.config.Scoring.SeasonalMultiplier),
	}
	if e.config.Data.Pairs == "" {
		return ext
	}
	pairs, ok := loadQuiet(e, e.config.DataPath(e.config.Data.Pairs), table.ProductPairsSchema, table.DecodePairs)
	if !ok {
		return ext
	}
	categories := make(map[string]metrics.Category, len(zm))
	for _, z := range zm {
		categories[z.Zone] = z.Category
	}
	ext.Complementary = metrics.ComplementaryAffinity(layout, pairs, categories)
	return ext
}

// mergeExtensions takes each signal from the first source that sets it.
func mergeExtensions(sources ...scoring.Extensions) scoring.Extensions {
	var out scoring.Extensions
	for _, s := range sources {
		if out.Seasonal == nil {
			out.Seasonal = s.Seasonal
		}
		if out.Complementary == nil {
			out.Complementary = s.Complementary
		}
		if out.PriceVisibility == nil {
			out.PriceVisibility = s.PriceVisibility
		}
		if out.ABTest == nil {
			out.ABTest = s.ABTest
		}
	}
	return out
}

// attributeSales returns zone sales and, when the sales table carries
// product-level rows, per-product sales. Missing sales become synthetic.
func (e *Engine) attributeSales(layout []table.LayoutRow, movements []table.Movement, sales []table.SaleRow, w *warnings) (map[string]float64, map[string]float64) {
	if len(sales) == 0 {
		zones := metrics.Zones(layout, movements)
		d := e.config.Data
		w.add(WarnSyntheticSales, "sales table missing or empty, using synthetic sales in [%.0f, %.0f) for %d zones (seed %d)",
			d.SyntheticSalesMin, d.SyntheticSalesMax, len(zones), d.SyntheticSalesSeed)
		return metrics.SyntheticSales(zones, d.SyntheticSalesMin, d.SyntheticSalesMax, d.SyntheticSalesSeed), nil
	}

	attr := metrics.AttributeSales(sales, layout)
	if attr.Unattributed > 0 {
		w.add(WarnMissingData, "%d sales rows name products missing from the layout and were dropped", attr.Unattributed)
	}
	if len(attr.ByProduct) == 0 {
		return attr.ByZone, nil
	}
	return attr.ByZone, attr.ByProduct
}

// zoneMetrics builds the zone metrics of the tables currently on disk.
func (e *Engine) zoneMetrics(w *warnings) []metrics.ZoneMetrics {
	layout := load(e, w, e.layoutPath(), table.LayoutSchema, table.DecodeLayout)
	movements := load(e, w, e.movementPath(), table.MovementSchema, table.DecodeMovements)
	sales, _ := loadQuiet(e, e.salesPath(), table.SalesSchema, table.DecodeSales)

	zoneSales, _ := e.attributeSales(layout, movements, sales, w)
	return metrics.BuildZoneMetrics(metrics.ZoneInputs{
		Layout:     layout,
		Movements:  movements,
		Sales:      zoneSales,
		Classifier: e.config.Scoring.Classifier,
		Slack:      e.config.Planner.Slack,
	})
}

// remember stores the most recent scores and plan. A nil argument keeps the
// previous value.
func (e *Engine) remember(scored *ScoredTable, plan *PlanResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if scored != nil {
		e.lastScored = scored
	}
	if plan != nil {
		e.lastPlan = plan
	}
}

// snapshot returns the most recent scores and plan.
func (e *Engine) snapshot() (*ScoredTable, *PlanResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastScored, e.lastPlan
}
