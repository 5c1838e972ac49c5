// Package core provides the ShelfSense relocation engine and its operations.
package core

import (
	"github.com/shelfsense/shelfsense-go/pkg/explain"
	"github.com/shelfsense/shelfsense-go/pkg/planner"
	"github.com/shelfsense/shelfsense-go/pkg/scoring"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// toCandidates converts scored products into planner candidates, keeping
// their order. The reason of each candidate is its explanation.
func toCandidates(scored *ScoredTable) []planner.Candidate {
	sales := make(map[string]float64, len(scored.Zones))
	for _, z := range scored.Zones {
		sales[z.Zone] = z.Metrics.Sales
	}

	out := make([]planner.Candidate, len(scored.Products))
	for i, p := range scored.Products {
		out[i] = planner.Candidate{
			ProductID:    p.ProductID,
			ProductName:  p.ProductName,
			CurrentZone:  p.CurrentZone,
			Score:        p.Score,
			CurrentSales: sales[p.CurrentZone],
			Reason:       explain.Build(p),
		}
	}
	return out
}

// toPlannerZones converts scored zones into planner destinations. Capacity is
// the zone's occupant count plus slack.
func toPlannerZones(zones []scoring.ZoneScore, slack int) []planner.Zone {
	out := make([]planner.Zone, len(zones))
	for i, z := range zones {
		out[i] = planner.Zone{
			ID:       z.Zone,
			Score:    z.Score,
			Capacity: z.Metrics.Occupants + max(slack, 0),
			Sales:    z.Metrics.Sales,
		}
	}
	return out
}

// toPlanRows converts assignments into relocation plan rows.
func toPlanRows(assignments []planner.Assignment) []table.PlanRow {
	out := make([]table.PlanRow, len(assignments))
	for i, a := range assignments {
		out[i] = table.PlanRow{
			ProductID:       a.ProductID,
			ProductName:     a.ProductName,
			CurrentZone:     a.FromZone,
			DestinationZone: a.ToZone,
			Score:           a.Score,
			Reason:          a.Reason,
			Timestamp:       a.Timestamp,
		}
	}
	return out
}

// fromAssignment converts one assignment into a plan row.
func fromAssignment(a planner.Assignment) *table.PlanRow {
	rows := toPlanRows([]planner.Assignment{a})
	return &rows[0]
}
