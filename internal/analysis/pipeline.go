package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/am610/firecrown/internal/config"
	"github.com/am610/firecrown/internal/consistency"
	"github.com/am610/firecrown/internal/datablock"
	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/internal/testutils"
	"github.com/am610/firecrown/internal/theory"
	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// SectionCosmology receives the resolved reference parameters of a point.
const SectionCosmology = "cosmological_parameters"

// Pipeline evaluates every analysis of a document for one parameter point
// at a time and sums their log-likelihoods.
type Pipeline struct {
	oracle   oracle.Oracle
	registry *Registry
	enforcer *consistency.Enforcer
	logger   *log.Logger
	metrics  *Metrics
	testMode bool
	analyses []Analysis
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRegistry resolves analysis modules from r instead of the global
// registry.
func WithRegistry(r *Registry) PipelineOption {
	return func(p *Pipeline) { p.registry = r }
}

// WithEnforcer replaces the default reference-convention enforcer.
func WithEnforcer(e *consistency.Enforcer) PipelineOption {
	return func(p *Pipeline) { p.enforcer = e }
}

// WithMetrics records every evaluation in m.
func WithMetrics(m *Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTestMode gives calculators deterministic instance IDs.
func WithTestMode(testMode bool) PipelineOption {
	return func(p *Pipeline) { p.testMode = testMode }
}

// NewPipeline creates an empty pipeline bound to orc.
func NewPipeline(orc oracle.Oracle, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		oracle:   orc,
		registry: GetGlobalRegistry(),
		enforcer: consistency.New(),
		logger:   logger.NewStyledLogger("Pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyses returns the configured analyses in name order.
func (p *Pipeline) Analyses() []Analysis {
	return append([]Analysis(nil), p.analyses...)
}

// Setup builds and configures every analysis of doc. It may be called once.
func (p *Pipeline) Setup(doc *config.Document) error {
	if p.analyses != nil {
		return &fcerrors.InvalidStateError{Operation: "set up pipeline", State: "already set up"}
	}

	analyses := make([]Analysis, 0, len(doc.Analyses))
	for _, name := range doc.AnalysisNames() {
		cfg := doc.Analyses[name]
		id := testutils.GenerateUUID(p.testMode)
		a, err := p.registry.Build(name, cfg.Module, p.oracle, theory.WithID(id))
		if err != nil {
			return fmt.Errorf("analysis %s: %w", name, err)
		}
		if err := a.Setup(cfg); err != nil {
			return err
		}
		p.logger.Info("Analysis ready", "name", name, "module", cfg.Module, "id", id)
		analyses = append(analyses, a)
	}
	p.analyses = analyses
	return nil
}

// Execute evaluates one sampler block. The returned block holds the resolved
// parameters, each analysis's spectra and likelihood, and the total.
func (p *Pipeline) Execute(ctx context.Context, values cosmology.Values) (*datablock.Block, error) {
	if p.analyses == nil {
		return nil, &fcerrors.InvalidStateError{Operation: "execute pipeline", State: "not set up"}
	}

	point, err := p.enforcer.Enforce(values)
	if err != nil {
		return nil, err
	}

	block := datablock.New()
	for key, value := range point.Parameters.AsMap() {
		if value != nil {
			block.Put(SectionCosmology, key, value)
		}
	}

	total := 0.0
	for _, a := range p.analyses {
		started := time.Now()
		loglike, err := a.Evaluate(ctx, point, block)
		p.metrics.Observe(a.Name(), started, err)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("Analysis evaluated", "name", a.Name(), "loglike", loglike)
		total += loglike
	}
	block.Put(datablock.SectionLikelihoods, datablock.KeyTotalLike, total)
	return block, nil
}
