// Package theory computes per-pair angular power spectra for one analysis.
//
// A Calculator is configured once through Setup, which walks the lifecycle
// Unconfigured -> SystematicsBuilt -> SourcesBuilt -> Ready, and then serves
// one Run per sampled parameter point. A Calculator is not safe for
// concurrent use; parallel samplers need one instance per worker.
package theory

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/internal/mapping"
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/internal/sources"
	"github.com/am610/firecrown/internal/systematics"
	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Config is the analysis configuration consumed by Setup.
type Config struct {
	Sources     map[string]sources.Decl
	Systematics map[string]systematics.Info
	// Pairs lists the statistics to compute. Empty means every unordered
	// pair of sources, autocorrelations included, in source order.
	Pairs []systematics.Pair
	Ells  []float64
}

// Calculator drives the oracle for one analysis.
type Calculator struct {
	id                  uuid.UUID
	analysis            string
	oracle              oracle.Oracle
	systematicsRegistry *systematics.Registry
	sourceRegistry      *sources.Registry
	logger              *log.Logger

	state    State
	config   Config
	metadata sources.Metadata
	table    *systematics.Table
	sources  []*sources.Source
	byName   map[string]*sources.Source
	pairs    []systematics.Pair
	global   []systematics.OutputSystematic
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithSystematicsRegistry resolves systematic types from r instead of the
// global registry.
func WithSystematicsRegistry(r *systematics.Registry) Option {
	return func(c *Calculator) { c.systematicsRegistry = r }
}

// WithSourceRegistry resolves source types from r instead of the global
// registry.
func WithSourceRegistry(r *sources.Registry) Option {
	return func(c *Calculator) { c.sourceRegistry = r }
}

// WithID fixes the instance ID, for reproducible logs.
func WithID(id uuid.UUID) Option {
	return func(c *Calculator) { c.id = id }
}

// NewCalculator creates an unconfigured calculator for the named analysis.
func NewCalculator(analysis string, orc oracle.Oracle, opts ...Option) *Calculator {
	c := &Calculator{
		id:                  uuid.New(),
		analysis:            analysis,
		oracle:              orc,
		systematicsRegistry: systematics.GetGlobalRegistry(),
		sourceRegistry:      sources.GetGlobalRegistry(),
		logger:              logger.NewStyledLogger("Calculator"),
		state:               StateUnconfigured,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the calculator's instance ID.
func (c *Calculator) ID() uuid.UUID { return c.id }

// Analysis returns the analysis name.
func (c *Calculator) Analysis() string { return c.analysis }

// State returns the current lifecycle state.
func (c *Calculator) State() State { return c.state }

// Table returns the systematics table, nil before setup.
func (c *Calculator) Table() *systematics.Table { return c.table }

// Sources returns the built sources in source order.
func (c *Calculator) Sources() []*sources.Source {
	return append([]*sources.Source(nil), c.sources...)
}

// Pairs returns the resolved pair list.
func (c *Calculator) Pairs() []systematics.Pair {
	return append([]systematics.Pair(nil), c.pairs...)
}

// Setup builds systematics, then sources, then the pair list. Any failure
// leaves the calculator in StateFailed.
func (c *Calculator) Setup(cfg Config, metadata sources.Metadata) error {
	if c.state != StateUnconfigured {
		return &fcerrors.InvalidStateError{Operation: "set up", State: c.state.String()}
	}
	c.config = cfg
	c.metadata = metadata

	for c.state != StateReady {
		current := c.state
		next, err := c.processCurrentState()
		if err != nil {
			c.logger.Error("Setup failed", "analysis", c.analysis, "state", current.String(), "error", err)
			c.state = StateFailed
			return fmt.Errorf("analysis %s: %w", c.analysis, err)
		}
		c.setState(next)
	}
	return nil
}

// processCurrentState performs the work of one setup state and returns the
// state that follows it.
func (c *Calculator) processCurrentState() (State, error) {
	switch c.state {
	case StateUnconfigured:
		table, err := systematics.BuildTable(c.config.Systematics, c.systematicsRegistry)
		if err != nil {
			return c.state, err
		}
		c.table = table
		return StateSystematicsBuilt, nil

	case StateSystematicsBuilt:
		srcs, err := sources.Build(c.config.Sources, c.table, c.metadata, c.sourceRegistry)
		if err != nil {
			return c.state, err
		}
		c.sources = srcs
		c.byName = make(map[string]*sources.Source, len(srcs))
		for _, s := range srcs {
			c.byName[s.Name()] = s
		}
		return StateSourcesBuilt, nil

	case StateSourcesBuilt:
		if err := c.resolvePairs(); err != nil {
			return c.state, err
		}
		c.resolveGlobalOutput()
		return StateReady, nil

	default:
		return c.state, &fcerrors.InvalidStateError{Operation: "set up", State: c.state.String()}
	}
}

func (c *Calculator) resolvePairs() error {
	if len(c.config.Ells) == 0 {
		return fcerrors.Invalid("ells", c.config.Ells, "at least one multipole is required")
	}
	for _, ell := range c.config.Ells {
		if ell <= 0 {
			return fcerrors.Invalid("ells", ell, "multipoles must be positive")
		}
	}

	if len(c.config.Pairs) == 0 {
		for i := range c.sources {
			for j := i; j < len(c.sources); j++ {
				c.pairs = append(c.pairs, systematics.Pair{
					First:  c.sources[i].Name(),
					Second: c.sources[j].Name(),
				})
			}
		}
		return nil
	}

	for _, p := range c.config.Pairs {
		for _, name := range []string{p.First, p.Second} {
			if _, ok := c.byName[name]; !ok {
				return fcerrors.Invalid("pairs", p.String(), "source %q is not declared", name)
			}
		}
		c.pairs = append(c.pairs, p)
	}
	return nil
}

// resolveGlobalOutput collects the output systematics no source references;
// those apply once to every pair.
func (c *Calculator) resolveGlobalOutput() {
	attached := make(map[string]bool)
	for _, s := range c.sources {
		for _, o := range s.OutputSystematics() {
			attached[o.Name()] = true
		}
	}
	for _, o := range c.table.Output() {
		if !attached[o.Name()] {
			c.global = append(c.global, o)
		}
	}
}

// Run computes the predictions for one parameter point. values holds the
// reduced sampler block, nuisance parameters included. The calculator is
// back in StateReady when Run returns, whether or not it failed.
func (c *Calculator) Run(ctx context.Context, params *cosmology.Parameters, values cosmology.Values) (*Results, error) {
	if c.state != StateReady {
		return nil, &fcerrors.InvalidStateError{Operation: "run", State: c.state.String()}
	}
	c.setState(StateRunning)
	defer c.setState(StateReady)

	results, err := c.run(ctx, params, values)
	if err != nil {
		c.logger.Warn("Parameter point rejected", "analysis", c.analysis, "error", err)
		return nil, fmt.Errorf("analysis %s: %w", c.analysis, err)
	}
	return results, nil
}

func (c *Calculator) run(ctx context.Context, params *cosmology.Parameters, values cosmology.Values) (*Results, error) {
	// Every systematic sees the new point before any tracer is rebuilt.
	if err := c.table.Update(values); err != nil {
		return nil, err
	}

	native := mapping.ToNative(params)
	for _, cs := range c.table.Cosmology() {
		if err := cs.ApplyCosmology(&native); err != nil {
			return nil, err
		}
	}
	cosmo, err := c.oracle.NewCosmology(native)
	if err != nil {
		return nil, fmt.Errorf("oracle cosmology: %w", err)
	}

	tracers := make(map[string]oracle.Tracer, len(c.sources))
	for _, s := range c.sources {
		spec, err := s.TracerSpec()
		if err != nil {
			return nil, err
		}
		tracer, err := cosmo.NewTracer(spec)
		if err != nil {
			return nil, fmt.Errorf("oracle tracer %s: %w", s.Name(), err)
		}
		tracers[s.Name()] = tracer
	}

	results := &Results{Analysis: c.analysis}
	for _, pair := range c.pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cl, err := cosmo.AngularCl(tracers[pair.First], tracers[pair.Second], c.config.Ells)
		if err != nil {
			return nil, fmt.Errorf("oracle C_ell %s: %w", pair, err)
		}
		if err := c.applyOutput(pair, cl); err != nil {
			return nil, err
		}
		results.Spectra = append(results.Spectra, Spectrum{
			Pair: pair,
			Ells: append([]float64(nil), c.config.Ells...),
			Cl:   cl,
		})
	}

	c.logger.Debug("Predictions computed", "analysis", c.analysis, "calculator", c.id.String(), "pairs", len(results.Spectra))
	return results, nil
}

// applyOutput applies attached output systematics once per side of the pair,
// then the global ones once.
func (c *Calculator) applyOutput(pair systematics.Pair, cl []float64) error {
	for _, side := range []string{pair.First, pair.Second} {
		for _, o := range c.byName[side].OutputSystematics() {
			if err := o.ApplyOutput(side, pair, cl); err != nil {
				return err
			}
		}
	}
	for _, o := range c.global {
		if err := o.ApplyOutput("", pair, cl); err != nil {
			return err
		}
	}
	return nil
}

func (c *Calculator) setState(s State) {
	c.logger.Debug("State transition", "analysis", c.analysis, "calculator", c.id.String(), "state", s.String())
	c.state = s
}
