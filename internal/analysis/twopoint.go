package analysis

import (
	"context"
	"fmt"

	"github.com/am610/firecrown/internal/config"
	"github.com/am610/firecrown/internal/consistency"
	"github.com/am610/firecrown/internal/datablock"
	"github.com/am610/firecrown/internal/likelihood"
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/internal/theory"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// ModuleTwoPoint is the module name of angular two-point analyses.
const ModuleTwoPoint = "twopoint"

// TwoPoint compares angular power spectra between sources with a data vector.
type TwoPoint struct {
	name        string
	calculator  *theory.Calculator
	likelihood  likelihood.Likelihood
	likelihoods *likelihood.Registry
}

// NewTwoPoint creates an unconfigured two-point analysis.
func NewTwoPoint(name string, orc oracle.Oracle, opts ...theory.Option) Analysis {
	return &TwoPoint{
		name:        name,
		calculator:  theory.NewCalculator(name, orc, opts...),
		likelihoods: likelihood.GetGlobalRegistry(),
	}
}

// Name returns the analysis name.
func (a *TwoPoint) Name() string { return a.name }

// Calculator exposes the theory calculator, mostly for inspection.
func (a *TwoPoint) Calculator() *theory.Calculator { return a.calculator }

// Setup configures the calculator and builds the likelihood.
func (a *TwoPoint) Setup(cfg config.Analysis) error {
	if err := a.calculator.Setup(cfg.TheoryConfig(), cfg.Metadata); err != nil {
		return err
	}
	if cfg.Data == nil {
		return fcerrors.Missing("data", "analysis "+a.name)
	}
	like, err := a.likelihoods.Build(cfg.Likelihood, *cfg.Data)
	if err != nil {
		return fmt.Errorf("analysis %s: %w", a.name, err)
	}
	a.likelihood = like
	return nil
}

// Evaluate runs the calculator for point, writes the spectra and the
// analysis log-likelihood into block and returns the log-likelihood.
func (a *TwoPoint) Evaluate(ctx context.Context, point *consistency.Point, block *datablock.Block) (float64, error) {
	if a.likelihood == nil {
		return 0, &fcerrors.InvalidStateError{Operation: "evaluate " + a.name, State: "not set up"}
	}
	results, err := a.calculator.Run(ctx, point.Parameters, point.Values)
	if err != nil {
		return 0, err
	}
	results.WriteTo(block)

	loglike, err := a.likelihood.ComputeLogLike(results)
	if err != nil {
		return 0, fmt.Errorf("analysis %s: %w", a.name, err)
	}
	block.Put(datablock.SectionLikelihoods, datablock.LikeKey(a.name), loglike)
	return loglike, nil
}
