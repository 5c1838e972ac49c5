package core

import (
	"context"
	"fmt"

	"github.com/shelfsense/shelfsense-go/pkg/scoring"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// Run executes one full pipeline over the configured data directory:
//  1. Load every input table through the cache (missing tables become empty
//     tables with MissingData warnings)
//  2. Compute the insights and write the insights table
//  3. Score products and zones
//  4. Plan assignments, writing planned moves to the decision log, and
//     write the relocation plan table
//
// Written tables are put into the cache so later lookups see them without a
// reload. Without a store layout nothing is written.
//
// Returns the result with the warnings of every stage, or an error wrapping
// ErrStorageOperation when an output table cannot be written.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	w := e.newWarnings("Run")
	res := &RunResult{}

	layout := load(e, w, e.layoutPath(), table.LayoutSchema, table.DecodeLayout)
	movements := load(e, w, e.movementPath(), table.MovementSchema, table.DecodeMovements)
	online := load(e, w, e.onlinePath(), table.OnlineSchema, table.DecodeOnline)
	sales, _ := loadQuiet(e, e.salesPath(), table.SalesSchema, table.DecodeSales)

	mark := len(w.list)
	res.Insights = e.computeInsights(layout, movements, online, w)
	res.Insights.Warnings = w.list[mark:]

	mark = len(w.list)
	res.Scores = e.generateScores(ctx, layout, movements, online, sales, res.Insights.Rows, scoring.Extensions{}, w)
	res.Scores.Warnings = w.list[mark:]

	mark = len(w.list)
	res.Plan = e.planAssignments(ctx, res.Scores, e.DefaultCapacityPolicy(), w)
	res.Plan.Warnings = w.list[mark:]

	res.Warnings = w.list
	if len(layout) == 0 {
		e.log.Warn().Msg("store layout is empty, no output tables written")
		return res, nil
	}

	res.InsightsPath = e.insightsPath()
	if err := e.writeTable(res.InsightsPath, table.EncodeInsights(res.Insights.Rows)); err != nil {
		return res, err
	}
	res.PlanPath = e.planPath()
	if err := e.writeTable(res.PlanPath, table.EncodePlan(toPlanRows(res.Plan.Assignments))); err != nil {
		return res, err
	}

	e.log.Info().
		Int("products", len(res.Scores.Products)).
		Int("assignments", len(res.Plan.Assignments)).
		Int("warnings", len(res.Warnings)).
		Str("run_id", res.Plan.RunID).
		Msg("run finished")
	return res, nil
}

// writeTable writes a table and caches it.
func (e *Engine) writeTable(path string, t *table.Table) error {
	if err := table.WriteFile(path, t); err != nil {
		return NewEngineError("Run", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}
	e.cache.Put(path, t)
	return nil
}
