// Package cosmology defines the reference parameterization of a cosmological
// model: an immutable, validated bundle of constants that every convention
// mapper translates to and from.
package cosmology

import (
	"fmt"

	"github.com/am610/firecrown/pkg/fcerrors"
)

// Reference parameter names.
const (
	KeyOmegaC  = "Omega_c"
	KeyOmegaB  = "Omega_b"
	KeyH       = "h"
	KeyAs      = "A_s"
	KeySigma8  = "sigma8"
	KeyNs      = "n_s"
	KeyOmegaK  = "Omega_k"
	KeyOmegaG  = "Omega_g"
	KeyNeff    = "Neff"
	KeyMNu     = "m_nu"
	KeyMNuType = "m_nu_type"
	KeyW0      = "w0"
	KeyWa      = "wa"
	KeyTCMB    = "T_CMB"
)

// Physical constants shared by the convention mappers.
const (
	// NeffStandard is the effective number of relativistic species for three
	// standard-model neutrinos.
	NeffStandard = 3.046
	// NeutrinoMassFactor converts a neutrino density Omega_nu*h^2 into the
	// summed neutrino mass in eV (degenerate-mass approximation).
	NeutrinoMassFactor = 93.14
	// DefaultTCMB is the placeholder CMB temperature in K for frameworks that
	// do not expose it.
	DefaultTCMB = 2.7255
)

// Amplitude identifies which power-spectrum normalization a record carries.
type Amplitude int

const (
	// AmplitudeAs - primordial scalar amplitude A_s
	AmplitudeAs Amplitude = iota
	// AmplitudeSigma8 - present-day rms matter fluctuation in 8 Mpc/h spheres
	AmplitudeSigma8
)

// String returns the reference key of the amplitude parameter.
func (a Amplitude) String() string {
	switch a {
	case AmplitudeAs:
		return KeyAs
	case AmplitudeSigma8:
		return KeySigma8
	default:
		return "unknown"
	}
}

// MassType is the neutrino mass hierarchy label.
type MassType string

const (
	MassNormal   MassType = "normal"
	MassInverted MassType = "inverted"
	MassEqual    MassType = "equal"
	MassList     MassType = "list"
)

// Valid reports whether m is one of the known hierarchy labels.
func (m MassType) Valid() bool {
	switch m {
	case MassNormal, MassInverted, MassEqual, MassList:
		return true
	default:
		return false
	}
}

// Values is a flat parameter dictionary keyed by parameter name.
type Values map[string]any

// Parameters is the reference parameter record. It is constructed once per
// sampled point by New and never changes afterwards; use With to derive a
// modified copy.
type Parameters struct {
	omegaC    float64
	omegaB    float64
	h         float64
	amplitude Amplitude
	ampValue  float64
	nS        float64
	omegaK    float64
	omegaG    *float64
	neff      float64
	mNu       float64
	mNuType   MassType
	w0        float64
	wa        float64
	tCMB      float64
}

const constructor = "cosmology.Parameters"

// New validates values and builds a Parameters record.
//
// Numeric fields must be float64; an int where a float is required is a
// ConstructionTypeError. Exactly one of A_s and sigma8 must be present (a nil
// value counts as absent). Omega_g is optional.
func New(values Values) (*Parameters, error) {
	r := &reader{values: values, context: constructor}

	p := &Parameters{
		omegaC: r.float(KeyOmegaC),
		omegaB: r.float(KeyOmegaB),
		h:      r.float(KeyH),
	}
	if r.err != nil {
		return nil, r.err
	}

	_, hasAs := present(values, KeyAs)
	_, hasSigma8 := present(values, KeySigma8)
	switch {
	case hasAs && hasSigma8:
		return nil, &fcerrors.AmbiguousAmplitudeError{Both: true, Keys: []string{KeyAs, KeySigma8}}
	case hasSigma8:
		p.amplitude = AmplitudeSigma8
		p.ampValue = r.float(KeySigma8)
	case hasAs:
		p.amplitude = AmplitudeAs
		p.ampValue = r.float(KeyAs)
	default:
		return nil, &fcerrors.AmbiguousAmplitudeError{}
	}

	p.nS = r.float(KeyNs)
	p.omegaK = r.float(KeyOmegaK)
	p.omegaG = r.optionalFloat(KeyOmegaG)
	p.neff = r.float(KeyNeff)
	p.mNu = r.float(KeyMNu)
	p.mNuType = MassType(r.string(KeyMNuType))
	p.w0 = r.float(KeyW0)
	p.wa = r.float(KeyWa)
	p.tCMB = r.float(KeyTCMB)
	if r.err != nil {
		return nil, r.err
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parameters) validate() error {
	if p.h <= 0 {
		return fcerrors.Invalid(KeyH, p.h, "must be positive")
	}
	if p.ampValue <= 0 {
		return fcerrors.Invalid(p.amplitude.String(), p.ampValue, "must be positive")
	}
	if p.neff < 0 {
		return fcerrors.Invalid(KeyNeff, p.neff, "must be non-negative")
	}
	if p.mNu < 0 {
		return fcerrors.Invalid(KeyMNu, p.mNu, "must be non-negative")
	}
	if p.tCMB <= 0 {
		return fcerrors.Invalid(KeyTCMB, p.tCMB, "must be positive")
	}
	if !p.mNuType.Valid() {
		return fcerrors.Invalid(KeyMNuType, string(p.mNuType), "must be one of normal, inverted, equal, list")
	}
	return nil
}

// OmegaC returns the cold dark matter density fraction.
func (p *Parameters) OmegaC() float64 { return p.omegaC }

// OmegaB returns the baryon density fraction.
func (p *Parameters) OmegaB() float64 { return p.omegaB }

// H returns the dimensionless Hubble parameter.
func (p *Parameters) H() float64 { return p.h }

// NS returns the scalar spectral index.
func (p *Parameters) NS() float64 { return p.nS }

// OmegaK returns the curvature density fraction.
func (p *Parameters) OmegaK() float64 { return p.omegaK }

// OmegaG returns the photon density fraction if one was supplied.
func (p *Parameters) OmegaG() (float64, bool) {
	if p.omegaG == nil {
		return 0, false
	}
	return *p.omegaG, true
}

// Neff returns the effective number of relativistic species.
func (p *Parameters) Neff() float64 { return p.neff }

// MNu returns the summed neutrino mass in eV.
func (p *Parameters) MNu() float64 { return p.mNu }

// MNuType returns the neutrino mass hierarchy label.
func (p *Parameters) MNuType() MassType { return p.mNuType }

// W0 returns the present-day dark energy equation of state.
func (p *Parameters) W0() float64 { return p.w0 }

// Wa returns the time derivative of the dark energy equation of state in the
// reference sign convention.
func (p *Parameters) Wa() float64 { return p.wa }

// TCMB returns the CMB temperature in K.
func (p *Parameters) TCMB() float64 { return p.tCMB }

// Amplitude reports which normalization parameter the record carries.
func (p *Parameters) Amplitude() Amplitude { return p.amplitude }

// AS returns A_s and true when the record is normalized by A_s.
func (p *Parameters) AS() (float64, bool) {
	if p.amplitude != AmplitudeAs {
		return 0, false
	}
	return p.ampValue, true
}

// Sigma8 returns sigma8 and true when the record is normalized by sigma8.
func (p *Parameters) Sigma8() (float64, bool) {
	if p.amplitude != AmplitudeSigma8 {
		return 0, false
	}
	return p.ampValue, true
}

// AsMap returns the record as a reference dictionary. The amplitude parameter
// that is not set and an unset Omega_g map to nil.
func (p *Parameters) AsMap() Values {
	out := Values{
		KeyOmegaC:  p.omegaC,
		KeyOmegaB:  p.omegaB,
		KeyH:       p.h,
		KeyAs:      nil,
		KeySigma8:  nil,
		KeyNs:      p.nS,
		KeyOmegaK:  p.omegaK,
		KeyOmegaG:  nil,
		KeyNeff:    p.neff,
		KeyMNu:     p.mNu,
		KeyMNuType: string(p.mNuType),
		KeyW0:      p.w0,
		KeyWa:      p.wa,
		KeyTCMB:    p.tCMB,
	}
	out[p.amplitude.String()] = p.ampValue
	if p.omegaG != nil {
		out[KeyOmegaG] = *p.omegaG
	}
	return out
}

// With returns a new record with the given reference keys replaced. The
// receiver is left untouched and the result is validated like New.
func (p *Parameters) With(overrides Values) (*Parameters, error) {
	values := p.AsMap()
	for k, v := range overrides {
		values[k] = v
	}
	return New(values)
}

// String renders the record for logs.
func (p *Parameters) String() string {
	return fmt.Sprintf("Omega_c=%g Omega_b=%g h=%g %s=%g n_s=%g Omega_k=%g Neff=%g m_nu=%g(%s) w0=%g wa=%g T_CMB=%g",
		p.omegaC, p.omegaB, p.h, p.amplitude, p.ampValue, p.nS, p.omegaK, p.neff, p.mNu, p.mNuType, p.w0, p.wa, p.tCMB)
}
