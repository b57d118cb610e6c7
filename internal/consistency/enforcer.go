// Package consistency turns a sampler's per-iteration parameter block into a
// complete, self-consistent reference record.
//
// The block may declare sampled ranges as [low, fiducial, high] triples and
// may express some quantities in a redundant parameterization (H0 or h0
// instead of h, physical densities, logA, sigma_8). The Enforcer reduces, resolves and validates,
// and it refuses configurations the downstream engine cannot handle instead
// of approximating them.
package consistency

import (
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/internal/mapping"
	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Enforcer derives Parameters records from sampler blocks.
type Enforcer struct {
	framework                mapping.Framework
	supportsMassiveNeutrinos bool
	component                string
	logger                   *log.Logger
}

// Option configures an Enforcer.
type Option func(*Enforcer)

// WithFramework interprets block keys in the given framework's convention
// instead of the reference one.
func WithFramework(fw mapping.Framework) Option {
	return func(e *Enforcer) { e.framework = fw }
}

// WithMassiveNeutrinos declares that the downstream component handles
// non-zero neutrino masses.
func WithMassiveNeutrinos() Option {
	return func(e *Enforcer) { e.supportsMassiveNeutrinos = true }
}

// WithComponent names the downstream component in UnsupportedFeatureError.
func WithComponent(name string) Option {
	return func(e *Enforcer) { e.component = name }
}

// New creates an Enforcer reading reference-convention blocks for a
// component without massive-neutrino support.
func New(opts ...Option) *Enforcer {
	e := &Enforcer{
		framework: mapping.CCL{},
		component: "the cosmology oracle",
		logger:    logger.NewStyledLogger("Consistency"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Point is one fully resolved sampled parameter point.
type Point struct {
	// Parameters is the validated reference record.
	Parameters *cosmology.Parameters
	// Values is the reduced block, including nuisance parameters that the
	// systematics read.
	Values cosmology.Values
}

// Enforce reduces, resolves and validates a sampler block.
func (e *Enforcer) Enforce(block cosmology.Values) (*Point, error) {
	values, err := ReduceSampled(block)
	if err != nil {
		return nil, err
	}

	input := values
	if e.framework.Name() == (mapping.CCL{}).Name() {
		input, err = resolveRedundant(values)
		if err != nil {
			return nil, err
		}
		if err := checkAmplitude(input); err != nil {
			return nil, err
		}
	}

	params, err := e.framework.From(input)
	if err != nil {
		return nil, fmt.Errorf("%s parameters: %w", e.framework.Name(), err)
	}

	if !e.supportsMassiveNeutrinos && params.MNu() != 0 {
		return nil, &fcerrors.UnsupportedFeatureError{
			Feature:   fmt.Sprintf("massive neutrinos (m_nu = %g eV)", params.MNu()),
			Component: e.component,
		}
	}

	e.logger.Debug("Parameter point resolved", "framework", e.framework.Name(), "parameters", params.String())
	return &Point{Parameters: params, Values: values}, nil
}

// ReduceSampled replaces every [low, fiducial, high] triple with its
// fiducial value. The input block is not modified.
func ReduceSampled(block cosmology.Values) (cosmology.Values, error) {
	out := make(cosmology.Values, len(block))
	for key, value := range block {
		switch v := value.(type) {
		case []any:
			if len(v) != 3 {
				return nil, fcerrors.Invalid(key, v, "sampled ranges must be [low, fiducial, high], got %d values", len(v))
			}
			out[key] = v[1]
		case []float64:
			if len(v) != 3 {
				return nil, fcerrors.Invalid(key, v, "sampled ranges must be [low, fiducial, high], got %d values", len(v))
			}
			out[key] = v[1]
		default:
			out[key] = value
		}
	}
	return out, nil
}

// derivation maps an alternative reference-side key onto its canonical key.
type derivation struct {
	alt     string
	target  string
	convert func(v float64, resolved cosmology.Values) (float64, error)
}

// Order matters: the density conversions need h, which H0 may provide.
var derivations = []derivation{
	{
		alt:    "H0",
		target: cosmology.KeyH,
		convert: func(v float64, _ cosmology.Values) (float64, error) {
			return v / 100, nil
		},
	},
	{
		alt:     "h0",
		target:  cosmology.KeyH,
		convert: identity,
	},
	{
		alt:     "ombh2",
		target:  cosmology.KeyOmegaB,
		convert: perH2("ombh2"),
	},
	{
		alt:     "omch2",
		target:  cosmology.KeyOmegaC,
		convert: perH2("omch2"),
	},
	{
		alt:    "logA",
		target: cosmology.KeyAs,
		convert: func(v float64, _ cosmology.Values) (float64, error) {
			return math.Exp(v) / 1e10, nil
		},
	},
	{
		alt:     "sigma_8",
		target:  cosmology.KeySigma8,
		convert: identity,
	},
}

func identity(v float64, _ cosmology.Values) (float64, error) { return v, nil }

func perH2(alt string) func(float64, cosmology.Values) (float64, error) {
	return func(v float64, resolved cosmology.Values) (float64, error) {
		h, err := cosmology.Float(resolved, cosmology.KeyH, alt+" conversion")
		if err != nil {
			return 0, err
		}
		return v / (h * h), nil
	}
}

// resolveRedundant rewrites alternative parameterizations into reference
// keys. Supplying both forms of one quantity is an error, never a choice.
func resolveRedundant(values cosmology.Values) (cosmology.Values, error) {
	out := make(cosmology.Values, len(values))
	for k, v := range values {
		out[k] = v
	}

	for _, d := range derivations {
		if !cosmology.Has(out, d.alt) {
			continue
		}
		if cosmology.Has(out, d.target) {
			return nil, &fcerrors.RedundantParameterError{Keys: []string{d.target, d.alt}}
		}
		raw, err := cosmology.Float(out, d.alt, "consistency")
		if err != nil {
			return nil, err
		}
		converted, err := d.convert(raw, out)
		if err != nil {
			return nil, err
		}
		out[d.target] = converted
		delete(out, d.alt)
	}
	return out, nil
}

// checkAmplitude reports both-or-neither amplitude blocks with the keys that
// were actually supplied.
func checkAmplitude(values cosmology.Values) error {
	var present []string
	for _, key := range []string{cosmology.KeyAs, cosmology.KeySigma8} {
		if cosmology.Has(values, key) {
			present = append(present, key)
		}
	}
	sort.Strings(present)
	switch len(present) {
	case 1:
		return nil
	case 0:
		return &fcerrors.AmbiguousAmplitudeError{}
	default:
		return &fcerrors.AmbiguousAmplitudeError{Both: true, Keys: present}
	}
}
