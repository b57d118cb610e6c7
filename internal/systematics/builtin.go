package systematics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/pkg/cosmology"
)

// Built-in systematic type strings.
const (
	TypePhotoZShift             = "photoz_shift"
	TypeLinearBias              = "linear_bias"
	TypeLinearAlignment         = "linear_alignment"
	TypeMultiplicativeShearBias = "multiplicative_shear_bias"
	TypeConstantCalibration     = "constant_calibration"
	TypeBaryonicFeedback        = "baryonic_feedback"
)

// AlignmentPivot is the pivot redshift of the intrinsic-alignment amplitude.
const AlignmentPivot = 0.62

// PhotoZShift translates a redshift distribution: n'(z) = n(z - delta_z).
type PhotoZShift struct {
	base
	delta nuisance
}

// NewPhotoZShift reads <name>_delta_z.
func NewPhotoZShift(name string, _ Info) (Systematic, error) {
	return &PhotoZShift{
		base:  base{name: name, kind: Source},
		delta: newNuisance(name, "delta_z"),
	}, nil
}

// Parameters returns the shift key.
func (s *PhotoZShift) Parameters() []string { return []string{s.delta.key} }

// Update reads delta_z from values.
func (s *PhotoZShift) Update(values cosmology.Values) error {
	return s.delta.update(values, s.name)
}

// AppliesTo reports true: every tracer kind has a redshift distribution.
func (s *PhotoZShift) AppliesTo(oracle.TracerKind) bool { return true }

// ApplySource resamples n(z) on the unchanged grid. Samples shifted outside
// the grid are zero.
func (s *PhotoZShift) ApplySource(spec *oracle.TracerSpec) error {
	dz, err := s.delta.get(s.name)
	if err != nil {
		return err
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("photo-z shift %s: %w", s.name, err)
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(spec.Z, spec.NZ); err != nil {
		return fmt.Errorf("photo-z shift %s on %s: %w", s.name, spec.Name, err)
	}

	lo, hi := spec.Z[0], spec.Z[len(spec.Z)-1]
	shifted := make([]float64, len(spec.Z))
	for i, z := range spec.Z {
		at := z - dz
		if at < lo || at > hi {
			continue
		}
		shifted[i] = pl.Predict(at)
	}
	spec.NZ = shifted
	return nil
}

// LinearBias sets a constant galaxy bias on a number-counts tracer.
type LinearBias struct {
	base
	bias nuisance
}

// NewLinearBias reads <name>_bias.
func NewLinearBias(name string, _ Info) (Systematic, error) {
	return &LinearBias{
		base: base{name: name, kind: Source},
		bias: newNuisance(name, "bias"),
	}, nil
}

// Parameters returns the bias key.
func (s *LinearBias) Parameters() []string { return []string{s.bias.key} }

// Update reads the bias from values.
func (s *LinearBias) Update(values cosmology.Values) error {
	return s.bias.update(values, s.name)
}

// AppliesTo reports whether kind is number counts.
func (s *LinearBias) AppliesTo(kind oracle.TracerKind) bool {
	return kind == oracle.NumberCounts
}

// ApplySource sets a constant bias over the tracer's redshift grid.
func (s *LinearBias) ApplySource(spec *oracle.TracerSpec) error {
	b, err := s.bias.get(s.name)
	if err != nil {
		return err
	}
	spec.Bias = make([]float64, len(spec.Z))
	for i := range spec.Bias {
		spec.Bias[i] = b
	}
	return nil
}

// LinearAlignment adds a non-linear alignment model amplitude to a weak
// lensing tracer: A_IA * ((1+z)/(1+z_pivot))^alpha.
type LinearAlignment struct {
	base
	amplitude nuisance
	alpha     float64
}

// NewLinearAlignment reads <name>_a_ia. The redshift slope alpha comes from
// configuration and defaults to zero.
func NewLinearAlignment(name string, info Info) (Systematic, error) {
	alpha, err := info.Float(name, "alpha", 0)
	if err != nil {
		return nil, err
	}
	return &LinearAlignment{
		base:      base{name: name, kind: Source},
		amplitude: newNuisance(name, "a_ia"),
		alpha:     alpha,
	}, nil
}

// Parameters returns the amplitude key.
func (s *LinearAlignment) Parameters() []string { return []string{s.amplitude.key} }

// Update reads A_IA from values.
func (s *LinearAlignment) Update(values cosmology.Values) error {
	return s.amplitude.update(values, s.name)
}

// AppliesTo reports whether kind is weak lensing.
func (s *LinearAlignment) AppliesTo(kind oracle.TracerKind) bool {
	return kind == oracle.WeakLensing
}

// ApplySource fills the alignment bias over the tracer's redshift grid.
func (s *LinearAlignment) ApplySource(spec *oracle.TracerSpec) error {
	a, err := s.amplitude.get(s.name)
	if err != nil {
		return err
	}
	spec.IAAmplitude = make([]float64, len(spec.Z))
	for i, z := range spec.Z {
		spec.IAAmplitude[i] = a * math.Pow((1+z)/(1+AlignmentPivot), s.alpha)
	}
	return nil
}

// MultiplicativeShearBias scales shear spectra by (1+m) for each side of a
// pair it is attached to.
type MultiplicativeShearBias struct {
	base
	m nuisance
}

// NewMultiplicativeShearBias reads <name>_m.
func NewMultiplicativeShearBias(name string, _ Info) (Systematic, error) {
	return &MultiplicativeShearBias{
		base: base{name: name, kind: Output},
		m:    newNuisance(name, "m"),
	}, nil
}

// Parameters returns the shear bias key.
func (s *MultiplicativeShearBias) Parameters() []string { return []string{s.m.key} }

// Update reads m from values.
func (s *MultiplicativeShearBias) Update(values cosmology.Values) error {
	return s.m.update(values, s.name)
}

// ApplyOutput scales cl in place by 1+m.
func (s *MultiplicativeShearBias) ApplyOutput(_ string, _ Pair, cl []float64) error {
	m, err := s.m.get(s.name)
	if err != nil {
		return err
	}
	scale(cl, 1+m)
	return nil
}

// ConstantCalibration multiplies spectra by a sampled constant.
type ConstantCalibration struct {
	base
	factor nuisance
}

// NewConstantCalibration reads <name>_scale.
func NewConstantCalibration(name string, _ Info) (Systematic, error) {
	return &ConstantCalibration{
		base:   base{name: name, kind: Output},
		factor: newNuisance(name, "scale"),
	}, nil
}

// Parameters returns the calibration key.
func (s *ConstantCalibration) Parameters() []string { return []string{s.factor.key} }

// Update reads the calibration factor from values.
func (s *ConstantCalibration) Update(values cosmology.Values) error {
	return s.factor.update(values, s.name)
}

// ApplyOutput scales cl in place by the calibration factor.
func (s *ConstantCalibration) ApplyOutput(_ string, _ Pair, cl []float64) error {
	f, err := s.factor.get(s.name)
	if err != nil {
		return err
	}
	scale(cl, f)
	return nil
}

// BaryonicFeedback switches on baryonic suppression of the matter power
// spectrum with a sampled log10 halo mass scale.
type BaryonicFeedback struct {
	base
	log10Mc nuisance
}

// NewBaryonicFeedback reads <name>_log10_mc.
func NewBaryonicFeedback(name string, _ Info) (Systematic, error) {
	return &BaryonicFeedback{
		base:    base{name: name, kind: Cosmology},
		log10Mc: newNuisance(name, "log10_mc"),
	}, nil
}

// Parameters returns the halo mass key.
func (s *BaryonicFeedback) Parameters() []string { return []string{s.log10Mc.key} }

// Update reads log10(M_c) from values.
func (s *BaryonicFeedback) Update(values cosmology.Values) error {
	return s.log10Mc.update(values, s.name)
}

// ApplyCosmology enables baryonic suppression in the native parameters.
func (s *BaryonicFeedback) ApplyCosmology(params *oracle.NativeParameters) error {
	v, err := s.log10Mc.get(s.name)
	if err != nil {
		return err
	}
	params.BaryonLog10Mc = &v
	return nil
}

func scale(cl []float64, f float64) {
	for i := range cl {
		cl[i] *= f
	}
}
