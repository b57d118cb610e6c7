package oracle

import (
	"fmt"
	"math"
)

// Stub is a closed-form stand-in for an external Boltzmann engine. Its spectra
// are smooth, positive and respond to every native parameter a systematic can
// touch, which is all the pipeline checks need. They are not physical.
type Stub struct{}

// NewStub returns the stub engine.
func NewStub() *Stub {
	return &Stub{}
}

// NewCosmology validates params and returns a stub cosmology.
func (s *Stub) NewCosmology(params NativeParameters) (Cosmology, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	sigma8 := 0.0
	if params.Sigma8 != nil {
		sigma8 = *params.Sigma8
	} else {
		// Rough A_s -> sigma8 scaling anchored at the Planck best fit.
		sigma8 = 0.81 * math.Sqrt(*params.AS/2.1e-9)
	}
	return &stubCosmology{params: params, sigma8: sigma8}, nil
}

type stubCosmology struct {
	params NativeParameters
	sigma8 float64
}

type stubTracer struct {
	spec   TracerSpec
	weight float64
}

func (t *stubTracer) Name() string { return t.spec.Name }

// NewTracer collapses the tracer's redshift kernel into a single weight.
func (c *stubCosmology) NewTracer(spec TracerSpec) (Tracer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var norm, weight float64
	for i, z := range spec.Z {
		if z < 0 {
			continue
		}
		n := spec.NZ[i]
		norm += n
		switch spec.Kind {
		case NumberCounts:
			b := 1.0
			if spec.Bias != nil {
				b = spec.Bias[i]
			}
			weight += n * b
		case WeakLensing:
			k := z / (1 + z)
			if spec.IAAmplitude != nil {
				k -= 0.1 * spec.IAAmplitude[i] / (1 + z)
			}
			weight += n * k
		default:
			return nil, fmt.Errorf("stub oracle: unsupported tracer kind %s", spec.Kind)
		}
	}
	if norm <= 0 {
		return nil, fmt.Errorf("stub oracle: tracer %s has no support at z >= 0", spec.Name)
	}
	return &stubTracer{spec: spec.Clone(), weight: weight / norm}, nil
}

// AngularCl returns a power law in ell scaled by both tracer weights.
func (c *stubCosmology) AngularCl(t1, t2 Tracer, ells []float64) ([]float64, error) {
	a, ok := t1.(*stubTracer)
	if !ok {
		return nil, fmt.Errorf("stub oracle: foreign tracer %s", t1.Name())
	}
	b, ok := t2.(*stubTracer)
	if !ok {
		return nil, fmt.Errorf("stub oracle: foreign tracer %s", t2.Name())
	}

	omegaM := c.params.OmegaC + c.params.OmegaB
	amp := 1e-5 * c.sigma8 * c.sigma8 * omegaM * a.weight * b.weight
	out := make([]float64, len(ells))
	for i, ell := range ells {
		if ell <= 0 {
			return nil, fmt.Errorf("stub oracle: ell must be positive, got %g", ell)
		}
		cl := amp * math.Pow(ell/100, c.params.NS-2)
		if c.params.BaryonLog10Mc != nil {
			cl /= 1 + math.Pow(ell/3000, 2)*math.Pow(10, *c.params.BaryonLog10Mc-14)
		}
		out[i] = cl
	}
	return out, nil
}
