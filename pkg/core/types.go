// Package core provides the ShelfSense relocation engine and its operations.
package core

import (
	"time"

	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/planner"
	"github.com/shelfsense/shelfsense-go/pkg/scoring"
	"github.com/shelfsense/shelfsense-go/pkg/storage"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// WarningKind classifies a recoverable problem reported alongside a result.
type WarningKind string

const (
	// WarnMissingData means an input table was absent, empty or partly
	// unusable and a default was substituted.
	WarnMissingData WarningKind = "MissingData"

	// WarnCorruptPersisted means the decision log exists but could not be
	// read; it was treated as empty and left untouched.
	WarnCorruptPersisted WarningKind = "CorruptPersisted"

	// WarnSyntheticSales means placeholder sales replaced a missing sales
	// table.
	WarnSyntheticSales WarningKind = "SyntheticSales"

	// WarnMemoryWrite means a planned move could not be written to the
	// decision log.
	WarnMemoryWrite WarningKind = "MemoryWrite"
)

// Warning is one recoverable problem. Warnings never abort an operation.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// String returns "<Kind>: <Message>".
func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Message
}

// InsightsResult is the output of ComputeInsights.
type InsightsResult struct {
	// Rows is the merged insights table, one row per layout product.
	Rows []table.InsightRow `json:"rows"`

	// Categories is the classification of every known zone.
	Categories map[string]metrics.Category `json:"categories"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// ScoredTable is the output of GenerateRelocationScores.
type ScoredTable struct {
	// Products is ordered by descending score; ties keep layout order.
	Products []scoring.ProductScore `json:"products"`

	// Zones is ordered by descending desirability; ties keep zone order.
	Zones []scoring.ZoneScore `json:"zones"`

	GeneratedAt time.Time `json:"generated_at"`
	Warnings    []Warning `json:"warnings,omitempty"`
}

// Product returns the score of one product by ID.
func (s *ScoredTable) Product(productID string) (scoring.ProductScore, bool) {
	if s == nil {
		return scoring.ProductScore{}, false
	}
	for _, p := range s.Products {
		if p.ProductID == productID {
			return p, true
		}
	}
	return scoring.ProductScore{}, false
}

// Zone returns the score of one zone.
func (s *ScoredTable) Zone(zone string) (scoring.ZoneScore, bool) {
	if s == nil {
		return scoring.ZoneScore{}, false
	}
	for _, z := range s.Zones {
		if z.Zone == zone {
			return z, true
		}
	}
	return scoring.ZoneScore{}, false
}

// CapacityPolicy controls one planning run.
type CapacityPolicy struct {
	// Slack is added to a zone's occupant count to get its capacity.
	Slack int `json:"slack"`

	// TopN limits the run to the N highest-scoring products (0 = all).
	TopN int `json:"top_n"`

	// OnlyUpgrades restricts destinations to more desirable zones.
	OnlyUpgrades bool `json:"only_upgrades"`
}

// PlanResult is the output of PlanAssignments.
type PlanResult struct {
	// RunID identifies the planning run.
	RunID string `json:"run_id"`

	// Assignments are in consideration order.
	Assignments []planner.Assignment `json:"assignments"`

	// Skipped lists products left unmatched.
	Skipped []planner.Skip `json:"skipped,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
	Warnings    []Warning `json:"warnings,omitempty"`
}

// RunResult is the output of Run.
type RunResult struct {
	Insights *InsightsResult `json:"insights"`
	Scores   *ScoredTable    `json:"scores"`
	Plan     *PlanResult     `json:"plan"`

	// InsightsPath and PlanPath are the tables written by the run.
	InsightsPath string `json:"insights_path"`
	PlanPath     string `json:"plan_path"`

	// Warnings aggregates the warnings of every stage.
	Warnings []Warning `json:"warnings,omitempty"`
}

// ZoneReport describes one zone.
type ZoneReport struct {
	Zone        string               `json:"zone"`
	Category    metrics.Category     `json:"category"`
	TotalVisits int                  `json:"total_visits"`
	Products    []table.InsightRow   `json:"products"`
	Metrics     *metrics.ZoneMetrics `json:"metrics,omitempty"`
	Warnings    []Warning            `json:"warnings,omitempty"`
}

// ProductReport describes one product.
type ProductReport struct {
	Insight table.InsightRow `json:"insight"`

	// Planned is the product's row of the most recent relocation plan.
	Planned *table.PlanRow `json:"planned,omitempty"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// ZoneCategories lists zones per category, each list sorted.
type ZoneCategories struct {
	Hot      []string  `json:"hot"`
	Warm     []string  `json:"warm,omitempty"`
	Cold     []string  `json:"cold"`
	Unknown  []string  `json:"unknown,omitempty"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// OutcomeReport lists decision log entries.
type OutcomeReport struct {
	Entries  []*storage.Entry `json:"entries"`
	Warnings []Warning        `json:"warnings,omitempty"`
}

// Simulation is the what-if estimate of moving one product.
type Simulation struct {
	Product string `json:"product"`
	From    string `json:"from"`
	To      string `json:"to"`

	FootfallRatio   float64 `json:"footfall_ratio"`
	ConversionRatio float64 `json:"conversion_ratio"`
	DwellRatio      float64 `json:"dwell_ratio"`

	// EntranceZone reports whether the target is one of the busiest zones.
	EntranceZone bool `json:"entrance_zone"`

	// Factor is the predicted sales multiplier; UpliftPct is (Factor-1)*100.
	Factor    float64 `json:"factor"`
	UpliftPct float64 `json:"uplift_pct"`

	Reasoning string    `json:"reasoning"`
	Warnings  []Warning `json:"warnings,omitempty"`
}

// StockReport lists products at or below the low stock threshold.
type StockReport struct {
	Threshold int              `json:"threshold"`
	Alerts    []table.StockRow `json:"alerts"`
	Warnings  []Warning        `json:"warnings,omitempty"`
}

// DeclineReport lists products with declining sales.
type DeclineReport struct {
	Window   time.Duration     `json:"window"`
	DropPct  float64           `json:"drop_pct"`
	Declines []metrics.Decline `json:"declines"`
	Warnings []Warning         `json:"warnings,omitempty"`
}

// PlanReport lists the rows of the most recent relocation plan.
type PlanReport struct {
	// RunID is set when the plan comes from this engine's last run.
	RunID    string          `json:"run_id,omitempty"`
	Rows     []table.PlanRow `json:"rows"`
	Warnings []Warning       `json:"warnings,omitempty"`
}
