// Package core provides the ShelfSense relocation engine and its operations.
package core

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/shelfsense/shelfsense-go/pkg/scoring"
	"github.com/shelfsense/shelfsense-go/pkg/storage"
	"github.com/shelfsense/shelfsense-go/pkg/table"
)

// Option is a function type for configuring an Engine.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type Option func(*Engine)

// WithCache shares a table cache with the engine.
//
// Example:
//
//	cache := table.NewCache()
//	engine, _ := core.NewEngine(config, core.WithCache(cache))
func WithCache(cache *table.Cache) Option {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// WithDecisionStore uses the given backend instead of the one named by
// Config.Memory. The engine takes ownership and closes it on Close.
func WithDecisionStore(store storage.DecisionStore) Option {
	return func(e *Engine) {
		e.backend = store
		e.backendSet = true
	}
}

// WithClock overrides the clock used for timestamps, penalties and
// anti-thrash checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger overrides the engine logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

// WithExtensions supplies the optional extension signals (seasonal match,
// complementary affinity, price visibility, A/B test lift). A signal set here
// replaces the one the engine derives from online views or the pairs table.
func WithExtensions(ext scoring.Extensions) Option {
	return func(e *Engine) {
		e.ext = ext
	}
}

// OutcomeOption is a function type for configuring PastOutcomes queries.
type OutcomeOption func(*OutcomeOptions)

// OutcomeOptions contains the filters of a PastOutcomes query. Zero values
// match everything.
type OutcomeOptions struct {
	// ProductName matches one product, case-insensitively.
	ProductName string

	// Zone matches moves out of or into the zone.
	Zone string

	// Window keeps entries younger than the window.
	Window time.Duration

	// Limit keeps only the most recent entries.
	Limit int
}

// WithOutcomeProduct filters PastOutcomes by product name.
//
// Example:
//
//	report, _ := engine.PastOutcomes(ctx, core.WithOutcomeProduct("Dettol"))
func WithOutcomeProduct(name string) OutcomeOption {
	return func(opts *OutcomeOptions) {
		opts.ProductName = name
	}
}

// WithOutcomeZone filters PastOutcomes by origin or destination zone.
func WithOutcomeZone(zone string) OutcomeOption {
	return func(opts *OutcomeOptions) {
		opts.Zone = zone
	}
}

// WithOutcomeWindow keeps only entries younger than d (e.g. 30 days).
func WithOutcomeWindow(d time.Duration) OutcomeOption {
	return func(opts *OutcomeOptions) {
		opts.Window = d
	}
}

// WithOutcomeLimit keeps only the n most recent entries.
func WithOutcomeLimit(n int) OutcomeOption {
	return func(opts *OutcomeOptions) {
		opts.Limit = n
	}
}

// applyOutcomeOptions applies options to OutcomeOptions.
func applyOutcomeOptions(opts []OutcomeOption) *OutcomeOptions {
	o := &OutcomeOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
