package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/planner"
	"github.com/shelfsense/shelfsense-go/pkg/storage"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// DefaultCapacityPolicy returns the capacity policy of the configuration.
func (e *Engine) DefaultCapacityPolicy() CapacityPolicy {
	return CapacityPolicy{
		Slack:        e.config.Planner.Slack,
		TopN:         e.config.Planner.TopN,
		OnlyUpgrades: e.config.Planner.OnlyUpgrades,
	}
}

// PlanAssignments runs one planning run over a scored table.
//
// Products are matched greedily, highest score first, to the most desirable
// eligible zone. Every assignment is written to the decision log as a
// planned entry. Decision log failures become MemoryWrite warnings and never
// abort the run.
//
// The plan is empty, with a MissingData warning, when there is nothing to
// plan: no scored products, no zones, or no movement data to rank zones by.
//
// Parameters:
//   - ctx: Context for decision log reads and writes
//   - scored: Output of GenerateRelocationScores
//   - policy: Capacity policy (see DefaultCapacityPolicy)
//
// Returns the plan; the error is reserved and currently always nil.
func (e *Engine) PlanAssignments(ctx context.Context, scored *ScoredTable, policy CapacityPolicy) (*PlanResult, error) {
	w := e.newWarnings("PlanAssignments")
	res := e.planAssignments(ctx, scored, policy, w)
	res.Warnings = w.list
	return res, nil
}

func (e *Engine) planAssignments(ctx context.Context, scored *ScoredTable, policy CapacityPolicy, w *warnings) *PlanResult {
	res := &PlanResult{RunID: uuid.NewString(), GeneratedAt: e.now()}
	log := e.log.With().Str("run_id", res.RunID).Logger()

	switch {
	case scored == nil || len(scored.Products) == 0:
		w.add(WarnMissingData, "no scored products, plan is empty")
		e.remember(nil, res)
		return res
	case len(scored.Zones) == 0:
		w.add(WarnMissingData, "no zones, plan is empty")
		e.remember(nil, res)
		return res
	case !hasTraffic(scored):
		w.add(WarnMissingData, "no movement data to rank zones by, plan is empty")
		e.remember(nil, res)
		return res
	}

	snap := e.memory.Snapshot(ctx)
	w.memoryErr(snap.Err())

	pol := e.config.PlannerPolicy()
	pol.TopN = policy.TopN
	pol.OnlyUpgrades = policy.OnlyUpgrades

	// Without a backend the write-back is skipped; NewEngine already
	// reported why.
	var rec planner.Recorder
	if e.memory.Available() {
		rec = e.memory
	}
	p := planner.New(pol, rec, planner.WithClock(e.now))
	out := p.Plan(ctx, toCandidates(scored), toPlannerZones(scored.Zones, policy.Slack), snap)

	res.Assignments = out.Assignments
	res.Skipped = out.Skipped
	if n := len(out.WriteErrors); n > 0 {
		w.add(WarnMemoryWrite, "%d of %d planned moves were not written to the decision log: %v",
			n, len(out.Assignments), out.WriteErrors[0])
	}

	log.Info().
		Int("assigned", len(res.Assignments)).
		Int("skipped", len(res.Skipped)).
		Msg("planning run finished")
	e.remember(scored, res)
	return res
}

// hasTraffic reports whether any zone was classified from movement data.
func hasTraffic(scored *ScoredTable) bool {
	for _, z := range scored.Zones {
		if z.Metrics.Category != metrics.Unknown {
			return true
		}
	}
	return false
}

// RecordOutcome appends an outcome entry to the decision log.
//
// Parameters:
//   - ctx: Context for the decision log write
//   - productName: Name of the relocated product (e.g. "Dettol")
//   - oldZone: Zone the product was moved from
//   - newZone: Zone the product was moved to
//   - description: What happened (e.g. "sales increased by 15%")
//
// Returns the stored entry, or an error wrapping ErrInvalidInput,
// ErrCorruptPersisted or ErrStorageOperation.
func (e *Engine) RecordOutcome(ctx context.Context, productName, oldZone, newZone, description string) (*storage.Entry, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return nil, NewEngineError("RecordOutcome", fmt.Errorf("%w: product name is required", ErrInvalidInput))
	}

	entry := &storage.Entry{
		Kind:        storage.KindOutcome,
		ProductID:   e.productID(productName),
		ProductName: productName,
		OldZone:     strings.TrimSpace(oldZone),
		NewZone:     strings.TrimSpace(newZone),
		Outcome:     description,
	}
	if err := e.memory.Append(ctx, entry); err != nil {
		if errors.Is(err, storage.ErrCorrupt) {
			return nil, NewEngineError("RecordOutcome", fmt.Errorf("%w: %v", ErrCorruptPersisted, err))
		}
		return nil, NewEngineError("RecordOutcome", fmt.Errorf("%w: %v", ErrStorageOperation, err))
	}

	e.log.Info().Str("product", productName).Str("from", entry.OldZone).Str("to", entry.NewZone).Msg("outcome recorded")
	return entry, nil
}

// productID resolves an exact product name to its ID, or "" when the name is
// unknown or not unique.
func (e *Engine) productID(name string) string {
	ids := make(map[string]bool)
	scored, _ := e.snapshot()
	if scored != nil {
		for _, p := range scored.Products {
			if strings.EqualFold(p.ProductName, name) {
				ids[p.ProductID] = true
			}
		}
	}
	if len(ids) == 0 {
		rows, _ := loadQuiet(e, e.insightsPath(), table.InsightsSchema, table.DecodeInsights)
		for _, r := range rows {
			if strings.EqualFold(r.ProductName, name) {
				ids[r.ProductID] = true
			}
		}
	}
	if len(ids) != 1 {
		return ""
	}
	for id := range ids {
		return id
	}
	return ""
}

// ExplainAssignment explains why a product is or is not scheduled for
// relocation.
//
// The lookup order is:
//  1. The most recent plan of this engine, with the score and reason
//     recorded when it was planned
//  2. The persisted relocation plan table, explained from its reason column
//  3. The insights table, for products not in any plan
//
// Parameters:
//   - ctx: Context (unused, kept for symmetry)
//   - productName: Full or partial product name, case-insensitive
//
// Returns the explanation, or an error wrapping ErrNotFound, ErrAmbiguous
// (an *AmbiguousError listing the candidates) or ErrInvalidInput.
func (e *Engine) ExplainAssignment(ctx context.Context, productName string) (string, error) {
	_, plan := e.snapshot()

	if plan != nil && len(plan.Assignments) > 0 {
		names := make([]string, len(plan.Assignments))
		for i, a := range plan.Assignments {
			names[i] = a.ProductName
		}
		name, err := matchName("product", productName, names)
		if err == nil {
			for _, a := range plan.Assignments {
				if a.ProductName != name {
					continue
				}
				return describeMove(a.ProductName, a.FromZone, a.ToZone, a.Score, a.Reason), nil
			}
		}
		if !errors.Is(err, ErrNotFound) {
			return "", NewEngineError("ExplainAssignment", err)
		}
	}

	if rows, ok := loadQuiet(e, e.planPath(), table.PlanSchema, table.DecodePlan); ok && len(rows) > 0 {
		names := make([]string, len(rows))
		for i, r := range rows {
			names[i] = r.ProductName
		}
		name, err := matchName("product", productName, names)
		if err == nil {
			for _, r := range rows {
				if r.ProductName == name {
					return describeMove(r.ProductName, r.CurrentZone, r.DestinationZone, r.Score, r.Reason), nil
				}
			}
		}
		if !errors.Is(err, ErrNotFound) {
			return "", NewEngineError("ExplainAssignment", err)
		}
	}

	rows, _ := loadQuiet(e, e.insightsPath(), table.InsightsSchema, table.DecodeInsights)
	row, err := findInsight(productName, rows)
	if err != nil {
		return "", NewEngineError("ExplainAssignment", err)
	}
	return fmt.Sprintf("%s is not in the relocation plan. It is in zone %s (%s), has %d online views and %d in-store visits, and may benefit from future relocation.",
		row.ProductName, row.Zone, strings.ToLower(row.ZoneCategory), row.OnlineViews, row.Visits), nil
}

func describeMove(name, from, to string, score float64, reason string) string {
	s := fmt.Sprintf("%s will move from %s to %s (relocation score %.2f).", name, from, to, score)
	if reason != "" {
		s += " " + reason
	}
	return s
}

// matchName resolves a name query against candidates. An exact
// case-insensitive match wins; otherwise the query must be a substring of
// exactly one distinct candidate.
func matchName(kind, query string, candidates []string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", fmt.Errorf("%w: %s name is required", ErrInvalidInput, kind)
	}

	seen := make(map[string]bool)
	var partial []string
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		seen[c] = true
		lc := strings.ToLower(c)
		if lc == q {
			return c, nil
		}
		if strings.Contains(lc, q) {
			partial = append(partial, c)
		}
	}

	switch len(partial) {
	case 0:
		return "", notFound(kind, query)
	case 1:
		return partial[0], nil
	default:
		return "", &AmbiguousError{Kind: kind, Query: query, Candidates: partial}
	}
}

// findInsight resolves a product name against insights rows.
func findInsight(query string, rows []table.InsightRow) (table.InsightRow, error) {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.ProductName
	}
	name, err := matchName("product", query, names)
	if err != nil {
		return table.InsightRow{}, err
	}
	for _, r := range rows {
		if r.ProductName == name {
			return r, nil
		}
	}
	return table.InsightRow{}, notFound("product", query)
}
