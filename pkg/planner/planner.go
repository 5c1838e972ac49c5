// Package planner implements the assignment planner: a greedy matcher that
// pairs high-score products with high-desirability zones under per-zone
// capacity, consulting the decision log to avoid thrashing.
//
// One call to Plan is one planning run:
//  1. Candidates are ordered by descending relocation score and zones by
//     descending desirability, both stable so ties keep input order.
//  2. Each candidate is considered exactly once. It receives the most
//     desirable zone that is not its current zone, has spare capacity and is
//     not blocked by the anti-thrash rule. Candidates whose previous move is
//     still awaiting its outcome are skipped outright.
//  3. Every assignment is written back to the decision log as a planned
//     entry carrying the destination zone's sales snapshot.
package planner

import (
	"context"
	"sort"
	"time"

	"github.com/shelfsense/shelfsense-go/pkg/memory"
	"github.com/shelfsense/shelfsense-go/pkg/storage"
)

// Defaults of Policy.
const (
	DefaultAntiThrashWindow = 7 * 24 * time.Hour
	DefaultImprovementRatio = 0.5
)

// PendingOutcome is the outcome text of a freshly planned move.
const PendingOutcome = "pending"

// Policy holds the planner knobs.
type Policy struct {
	// AntiThrashWindow is how long a previous move to a zone can block a
	// repeat move to the same zone.
	AntiThrashWindow time.Duration `json:"anti_thrash_window" yaml:"anti_thrash_window"`

	// ImprovementRatio scales the sales snapshot of the previous move. The
	// repeat move is blocked while current sales are at or above
	// snapshot × ratio.
	ImprovementRatio float64 `json:"improvement_ratio" yaml:"improvement_ratio" validate:"gte=0"`

	// TopN limits the run to the N highest-scoring candidates (0 = all).
	TopN int `json:"top_n,omitempty" yaml:"top_n,omitempty" validate:"gte=0"`

	// OnlyUpgrades restricts destinations to zones more desirable than the
	// candidate's current zone.
	OnlyUpgrades bool `json:"only_upgrades,omitempty" yaml:"only_upgrades,omitempty"`
}

// DefaultPolicy returns the default planner policy.
func DefaultPolicy() Policy {
	return Policy{
		AntiThrashWindow: DefaultAntiThrashWindow,
		ImprovementRatio: DefaultImprovementRatio,
	}
}

// Candidate is a product competing for a new zone.
type Candidate struct {
	ProductID   string
	ProductName string
	CurrentZone string

	// Score is the relocation score; higher is considered first.
	Score float64

	// CurrentSales is the sales of the product's current zone.
	CurrentSales float64

	// Reason is the explanation attached to an assignment.
	Reason string
}

// Zone is a possible destination.
type Zone struct {
	ID string

	// Score is the zone desirability; higher is tried first.
	Score float64

	// Capacity is the maximum number of products the zone may receive in one
	// run.
	Capacity int

	// Sales is recorded as the snapshot of moves into the zone.
	Sales float64
}

// Assignment is one row of the relocation plan.
type Assignment struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	FromZone    string    `json:"current_zone"`
	ToZone      string    `json:"destination_zone"`
	Score       float64   `json:"score"`
	ZoneScore   float64   `json:"zone_score"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
}

// SkipReason explains why a candidate received no assignment.
type SkipReason string

const (
	// SkipPendingOutcome means the previous move still awaits its outcome.
	SkipPendingOutcome SkipReason = "pending_outcome"

	// SkipNoEligibleZone means every zone was current, full or blocked.
	SkipNoEligibleZone SkipReason = "no_eligible_zone"
)

// Skip records an unmatched candidate. It is not an error.
type Skip struct {
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Reason      SkipReason `json:"reason"`
}

// Result is the outcome of one planning run.
type Result struct {
	// Assignments are ordered by consideration order.
	Assignments []Assignment

	// Skipped lists candidates left unmatched.
	Skipped []Skip

	// WriteErrors collects decision log write failures. They never abort the
	// run.
	WriteErrors []error
}

// Recorder persists planned moves. *memory.Store satisfies it.
type Recorder interface {
	Append(ctx context.Context, entry *storage.Entry) error
}

// Planner runs planning runs under one policy.
type Planner struct {
	policy   Policy
	recorder Recorder
	now      func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock overrides the clock used for anti-thrash checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a planner. A nil recorder disables the memory write-back.
func New(policy Policy, recorder Recorder, opts ...Option) *Planner {
	if policy.AntiThrashWindow <= 0 {
		policy.AntiThrashWindow = DefaultAntiThrashWindow
	}
	p := &Planner{policy: policy, recorder: recorder, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the effective policy.
func (p *Planner) Policy() Policy {
	return p.policy
}

// Plan runs one planning run.
//
// The snapshot is the decision log as it was when the run started; moves
// written during the run do not feed back into it. A nil snapshot is an empty
// log.
func (p *Planner) Plan(ctx context.Context, candidates []Candidate, zones []Zone, snap *memory.Snapshot) Result {
	if snap == nil {
		snap = memory.NewSnapshot(nil, 0)
	}
	now := p.now()

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Score > ordered[j].Score })
	if p.policy.TopN > 0 && len(ordered) > p.policy.TopN {
		ordered = ordered[:p.policy.TopN]
	}

	targets := make([]Zone, len(zones))
	copy(targets, zones)
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].Score > targets[j].Score })

	zoneScore := make(map[string]float64, len(targets))
	for _, z := range targets {
		zoneScore[z.ID] = z.Score
	}
	assigned := make(map[string]int, len(targets))

	var res Result
	for _, c := range ordered {
		ref := memory.Ref{ID: c.ProductID, Name: c.ProductName}
		if snap.Pending(ref, now) {
			res.Skipped = append(res.Skipped, Skip{ProductID: c.ProductID, ProductName: c.ProductName, Reason: SkipPendingOutcome})
			continue
		}

		zone, ok := p.pick(c, ref, targets, assigned, zoneScore, snap, now)
		if !ok {
			res.Skipped = append(res.Skipped, Skip{ProductID: c.ProductID, ProductName: c.ProductName, Reason: SkipNoEligibleZone})
			continue
		}

		assigned[zone.ID]++
		res.Assignments = append(res.Assignments, Assignment{
			ProductID:   c.ProductID,
			ProductName: c.ProductName,
			FromZone:    c.CurrentZone,
			ToZone:      zone.ID,
			Score:       c.Score,
			ZoneScore:   zone.Score,
			Reason:      c.Reason,
			Timestamp:   now,
		})

		if p.recorder == nil {
			continue
		}
		err := p.recorder.Append(ctx, &storage.Entry{
			Kind:          storage.KindPlanned,
			ProductID:     c.ProductID,
			ProductName:   c.ProductName,
			OldZone:       c.CurrentZone,
			NewZone:       zone.ID,
			SalesSnapshot: zone.Sales,
			Outcome:       PendingOutcome,
			Timestamp:     now,
		})
		if err != nil {
			res.WriteErrors = append(res.WriteErrors, err)
		}
	}
	return res
}

// pick returns the most desirable eligible zone for one candidate.
func (p *Planner) pick(c Candidate, ref memory.Ref, targets []Zone, assigned map[string]int,
	zoneScore map[string]float64, snap *memory.Snapshot, now time.Time) (Zone, bool) {
	current, hasCurrent := zoneScore[c.CurrentZone]
	for _, z := range targets {
		if z.ID == c.CurrentZone {
			continue
		}
		if assigned[z.ID] >= z.Capacity {
			continue
		}
		if p.policy.OnlyUpgrades && hasCurrent && z.Score <= current {
			continue
		}
		if p.thrashes(c, ref, z, snap, now) {
			continue
		}
		return z, true
	}
	return Zone{}, false
}

// thrashes applies the anti-thrash rule: a product moved to zone z within
// the window is not sent there again while its current zone still sells at
// least snapshot × ratio.
func (p *Planner) thrashes(c Candidate, ref memory.Ref, z Zone, snap *memory.Snapshot, now time.Time) bool {
	move, ok := snap.LastMove(ref)
	if !ok || move.NewZone != z.ID {
		return false
	}
	if now.Sub(move.Timestamp) >= p.policy.AntiThrashWindow {
		return false
	}
	return c.CurrentSales >= move.SalesSnapshot*p.policy.ImprovementRatio
}
