package core

import (
	"context"

	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// ComputeInsights merges the store layout, the movement log and the online
// performance table into the insights table: one row per layout product with
// its zone's visits, its online views and its zone's category.
//
// An empty layout yields an empty result with a MissingData warning. An
// empty movement log classifies every zone as Unknown.
//
// Parameters:
//   - ctx: Context (unused by the computation, kept for symmetry)
//   - layout: Store layout rows
//   - movements: Customer movement events
//   - online: Online product performance rows
//
// Returns the insights; the error is reserved and currently always nil.
func (e *Engine) ComputeInsights(ctx context.Context, layout []table.LayoutRow, movements []table.Movement, online []table.OnlineRow) (*InsightsResult, error) {
	w := e.newWarnings("ComputeInsights")
	res := e.computeInsights(layout, movements, online, w)
	res.Warnings = w.list
	return res, nil
}

func (e *Engine) computeInsights(layout []table.LayoutRow, movements []table.Movement, online []table.OnlineRow, w *warnings) *InsightsResult {
	res := &InsightsResult{Categories: make(map[string]metrics.Category)}
	if len(layout) == 0 {
		w.add(WarnMissingData, "store layout is empty, no insights computed")
		return res
	}
	if len(movements) == 0 {
		w.add(WarnMissingData, "movement log is empty, every zone is Unknown")
	}

	zones := metrics.Zones(layout, movements)
	footfall := metrics.Footfall(movements)
	res.Categories = e.config.Scoring.Classifier.Classify(footfall, zones)
	views := metrics.OnlineViews(online)

	res.Rows = make([]table.InsightRow, 0, len(layout))
	for _, l := range layout {
		res.Rows = append(res.Rows, table.InsightRow{
			Zone:         l.Zone,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			Visits:       footfall[l.Zone],
			OnlineViews:  views[l.ProductID],
			ZoneCategory: string(res.Categories[l.Zone]),
		})
	}

	e.log.Debug().Int("products", len(res.Rows)).Int("zones", len(zones)).Msg("insights computed")
	return res
}

// layoutFromInsights rebuilds layout rows from an insights table.
func layoutFromInsights(rows []table.InsightRow) []table.LayoutRow {
	out := make([]table.LayoutRow, 0, len(rows))
	for _, r := range rows {
		if r.Zone == "" {
			continue
		}
		out = append(out, table.LayoutRow{Zone: r.Zone, ProductID: r.ProductID, ProductName: r.ProductName})
	}
	return out
}

// onlineFromInsights rebuilds online rows from an insights table.
func onlineFromInsights(rows []table.InsightRow) []table.OnlineRow {
	out := make([]table.OnlineRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.OnlineRow{ProductID: r.ProductID, ProductName: r.ProductName, OnlineViews: r.OnlineViews})
	}
	return out
}
