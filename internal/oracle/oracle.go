// Package oracle describes the boundary to the external cosmology engine.
//
// The engine is opaque: it accepts a NativeParameters object, returns a
// Cosmology handle, builds tracers from TracerSpecs and evaluates angular
// power spectra between pairs of tracers. Nothing in this package knows how
// those quantities are computed.
package oracle

import "github.com/am610/firecrown/pkg/fcerrors"

// NativeParameters is the engine's own parameter object. Exactly one of AS
// and Sigma8 is non-nil.
type NativeParameters struct {
	OmegaC  float64
	OmegaB  float64
	H       float64
	AS      *float64
	Sigma8  *float64
	NS      float64
	OmegaK  float64
	OmegaG  *float64
	Neff    float64
	MNu     float64
	MNuType string
	W0      float64
	Wa      float64
	TCMB    float64

	// BaryonLog10Mc enables baryonic feedback on the matter power spectrum
	// when set. Only cosmology systematics write it.
	BaryonLog10Mc *float64
}

// Validate checks the amplitude invariant before the engine sees the object.
func (p NativeParameters) Validate() error {
	switch {
	case p.AS != nil && p.Sigma8 != nil:
		return &fcerrors.AmbiguousAmplitudeError{Both: true, Keys: []string{"A_s", "sigma8"}}
	case p.AS == nil && p.Sigma8 == nil:
		return &fcerrors.AmbiguousAmplitudeError{}
	}
	return nil
}

// TracerKind is the kind of field a tracer samples.
type TracerKind int

const (
	// NumberCounts - galaxy clustering (large-scale structure)
	NumberCounts TracerKind = iota
	// WeakLensing - cosmic shear
	WeakLensing
)

// String returns a human-readable tracer kind.
func (k TracerKind) String() string {
	switch k {
	case NumberCounts:
		return "NumberCounts"
	case WeakLensing:
		return "WeakLensing"
	default:
		return "Unknown"
	}
}

// TracerSpec carries everything the engine needs to build a tracer. Source
// systematics edit a spec in place before it is handed to NewTracer.
type TracerSpec struct {
	Name string
	Kind TracerKind
	Z    []float64
	NZ   []float64

	// Bias is the galaxy bias on the Z grid (number counts only).
	Bias []float64
	// IAAmplitude is the intrinsic-alignment amplitude on the Z grid (weak
	// lensing only). Nil disables intrinsic alignments.
	IAAmplitude []float64
}

// Clone returns a deep copy so per-point edits never leak into source metadata.
func (s TracerSpec) Clone() TracerSpec {
	out := s
	out.Z = cloneFloats(s.Z)
	out.NZ = cloneFloats(s.NZ)
	out.Bias = cloneFloats(s.Bias)
	out.IAAmplitude = cloneFloats(s.IAAmplitude)
	return out
}

// Validate checks array shapes and that the redshift grid has at least two
// strictly increasing points.
func (s TracerSpec) Validate() error {
	if len(s.Z) < 2 {
		return fcerrors.Invalid(s.Name+".z", len(s.Z), "redshift grid needs at least 2 points")
	}
	for i := 1; i < len(s.Z); i++ {
		if !(s.Z[i] > s.Z[i-1]) {
			return fcerrors.Invalid(s.Name+".z", s.Z[i], "redshift grid must be strictly increasing at index %d", i)
		}
	}
	if len(s.NZ) != len(s.Z) {
		return fcerrors.Invalid(s.Name+".nz", len(s.NZ), "expected %d samples to match the redshift grid", len(s.Z))
	}
	if s.Bias != nil && len(s.Bias) != len(s.Z) {
		return fcerrors.Invalid(s.Name+".bias", len(s.Bias), "expected %d samples to match the redshift grid", len(s.Z))
	}
	if s.IAAmplitude != nil && len(s.IAAmplitude) != len(s.Z) {
		return fcerrors.Invalid(s.Name+".ia_amplitude", len(s.IAAmplitude), "expected %d samples to match the redshift grid", len(s.Z))
	}
	return nil
}

// Oracle builds cosmology handles from native parameters.
type Oracle interface {
	NewCosmology(params NativeParameters) (Cosmology, error)
}

// Cosmology is an opaque engine-side cosmology.
type Cosmology interface {
	NewTracer(spec TracerSpec) (Tracer, error)
	AngularCl(t1, t2 Tracer, ells []float64) ([]float64, error)
}

// Tracer is an opaque engine-side tracer.
type Tracer interface {
	Name() string
}

func cloneFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

