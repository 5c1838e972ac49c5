// Package core provides the ShelfSense relocation engine and its operations.
package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shelfsense/shelfsense-go/pkg/logging"
	"github.com/shelfsense/shelfsense-go/pkg/memory"
	"github.com/shelfsense/shelfsense-go/pkg/scoring"
	"github.com/shelfsense/shelfsense-go/pkg/storage"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// Engine is the ShelfSense relocation engine.
//
// It ties the metric aggregators, the scoring model, the memory store, the
// assignment planner and the explanation builder together, and exposes the
// operations callers invoke:
//   - ComputeInsights, GenerateRelocationScores, PlanAssignments, Run
//   - RecordOutcome, PastOutcomes
//   - ExplainAssignment, ZonePerformance, ProductInsights, HotColdZones
//   - SimulatePlacement, StockAlerts, SalesDeclines
//
// A planning run is single-threaded. The engine guards its own state with a
// mutex so accidental concurrent calls do not race in-process, but it does
// not coordinate separate processes writing the same decision log.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	engine, _ := core.NewEngine(config)
//	defer engine.Close()
//
//	result, _ := engine.Run(ctx)
//	for _, a := range result.Plan.Assignments {
//	    fmt.Println(a.ProductName, a.FromZone, "->", a.ToZone, a.Reason)
//	}
type Engine struct {
	// config contains the engine configuration.
	config *Config

	// cache holds loaded tables keyed by path.
	cache *table.Cache

	// memory is the Memory Store over the configured backend.
	memory *memory.Store

	// backend is an injected decision log (see WithDecisionStore).
	backend    storage.DecisionStore
	backendSet bool

	// ext holds caller-supplied extension signals; they take precedence over
	// the derived ones.
	ext scoring.Extensions

	// initWarnings are reported by the first operation after NewEngine.
	initWarnings []Warning

	log zerolog.Logger
	now func() time.Time

	// mu protects lastScored and lastPlan.
	mu         sync.Mutex
	lastScored *ScoredTable
	lastPlan   *PlanResult
}

// NewEngine creates a new relocation engine.
//
// The engine is initialized with:
//   - A table cache (shared with WithCache, or private)
//   - The decision log backend named by Config.Memory (json, sqlite,
//     postgres, oceanbase/mysql), or none
//
// A backend that fails to open does not fail the engine: it runs without
// memory and reports a CorruptPersisted warning on the next operation.
//
// Parameters:
//   - cfg: Engine configuration (nil means DefaultConfig)
//   - opts: Optional settings
//
// Returns a new Engine, or an error if the configuration is invalid.
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config: cfg,
		log:    logging.With("engine"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = table.NewCache()
	}

	backend := e.backend
	if !e.backendSet {
		var err error
		backend, err = initStorage(cfg.Memory)
		if err != nil {
			e.log.Warn().Err(err).Str("provider", cfg.Memory.Provider).Msg("decision log unavailable")
			e.initWarnings = append(e.initWarnings, Warning{
				Kind:    WarnCorruptPersisted,
				Message: fmt.Sprintf("decision log %q unavailable, running without memory: %v", cfg.Memory.Provider, err),
			})
			backend = nil
		}
	}

	store, err := memory.New(backend,
		memory.WithPendingWindow(hours(cfg.Memory.PendingHours)),
		memory.WithClock(e.now),
	)
	if err != nil {
		return nil, NewEngineError("NewEngine", err)
	}
	e.memory = store

	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Cache returns the table cache.
func (e *Engine) Cache() *table.Cache {
	return e.cache
}

// Memory returns the Memory Store.
func (e *Engine) Memory() *memory.Store {
	return e.memory
}

// Close closes the decision log backend.
func (e *Engine) Close() error {
	return e.memory.Close()
}

// warnings collects the warnings of one operation and logs each one.
type warnings struct {
	list []Warning
	log  zerolog.Logger
}

func (e *Engine) newWarnings(op string) *warnings {
	w := &warnings{log: e.log.With().Str("op", op).Logger()}

	e.mu.Lock()
	pending := e.initWarnings
	e.initWarnings = nil
	e.mu.Unlock()

	w.list = append(w.list, pending...)
	return w
}

func (w *warnings) add(kind WarningKind, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.list = append(w.list, Warning{Kind: kind, Message: msg})
	w.log.Warn().Str("kind", string(kind)).Msg(msg)
}

// memoryErr turns a snapshot or query error into a warning. A missing
// backend was already reported by NewEngine.
func (w *warnings) memoryErr(err error) {
	switch {
	case err == nil, errors.Is(err, memory.ErrUnavailable):
	case errors.Is(err, storage.ErrCorrupt):
		w.add(WarnCorruptPersisted, "decision log is corrupt and was treated as empty (left untouched): %v", err)
	default:
		w.add(WarnCorruptPersisted, "decision log unreadable, treated as empty: %v", err)
	}
}

// load reads one table through the cache and decodes it. A substituted or
// partly unusable table becomes a MissingData warning.
func load[T any](e *Engine, w *warnings, path string, schema table.Schema, decode func(*table.Table) ([]T, int)) []T {
	l := e.cache.Load(path, schema)
	if l.Defaulted {
		w.add(WarnMissingData, "%s table not loaded, using an empty table: %v", schema.Name, l.Reason)
	}
	rows, skipped := decode(l.Table)
	if skipped > 0 {
		w.add(WarnMissingData, "%s: skipped %d incomplete rows", schema.Name, skipped)
	}
	return rows
}

// loadQuiet is load without the warning for a missing table, for optional
// inputs.
func loadQuiet[T any](e *Engine, path string, schema table.Schema, decode func(*table.Table) ([]T, int)) ([]T, bool) {
	l := e.cache.Load(path, schema)
	rows, _ := decode(l.Table)
	return rows, !l.Defaulted
}

func (e *Engine) layoutPath() string   { return e.config.DataPath(e.config.Data.Layout) }
func (e *Engine) movementPath() string { return e.config.DataPath(e.config.Data.Movements) }
func (e *Engine) onlinePath() string   { return e.config.DataPath(e.config.Data.Online) }
func (e *Engine) salesPath() string    { return e.config.DataPath(e.config.Data.Sales) }
func (e *Engine) stockPath() string    { return e.config.DataPath(e.config.Data.Stock) }
func (e *Engine) insightsPath() string { return e.config.InsightsPath(e.config.Data.Insights) }
func (e *Engine) planPath() string     { return e.config.InsightsPath(e.config.Data.Plan) }
