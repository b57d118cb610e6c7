package mapping

import (
	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// CAMB maps the pycamb set_cosmology/set_params convention: physical
// densities, H0 in km/s/Mpc and A_s as the only accepted normalization.
type CAMB struct{}

// neutrino_hierarchy labels used by CAMB.
var cambHierarchy = map[string]cosmology.MassType{
	"normal":     cosmology.MassNormal,
	"inverted":   cosmology.MassInverted,
	"degenerate": cosmology.MassEqual,
}

// Name returns "camb".
func (CAMB) Name() string { return "camb" }

// From builds a reference record from CAMB parameters.
func (f CAMB) From(raw cosmology.Values) (*cosmology.Parameters, error) {
	r := newReader(raw, f.Name())

	h := r.float("H0") / 100
	h2 := h * h
	values := cosmology.Values{
		cosmology.KeyH:      h,
		cosmology.KeyOmegaB: r.float("ombh2") / h2,
		cosmology.KeyOmegaC: r.float("omch2") / h2,
		cosmology.KeyOmegaK: r.float("omk"),
		cosmology.KeyAs:     r.float("As"),
		cosmology.KeyNs:     r.float("ns"),
		cosmology.KeyMNu:    r.float("mnu"),
		cosmology.KeyNeff:   r.float("nnu"),
		cosmology.KeyW0:     r.float("w"),
		cosmology.KeyWa:     r.float("wa"),
		cosmology.KeyTCMB:   r.float("TCMB"),
	}
	hierarchy := r.string("neutrino_hierarchy")
	if r.err != nil {
		return nil, r.err
	}
	if h2 == 0 {
		return nil, fcerrors.Invalid("H0", 0.0, "must be positive")
	}

	massType, ok := cambHierarchy[hierarchy]
	if !ok {
		return nil, fcerrors.Invalid("neutrino_hierarchy", hierarchy, "must be one of normal, inverted, degenerate")
	}
	values[cosmology.KeyMNuType] = string(massType)
	return cosmology.New(values)
}

// To renders a record as CAMB parameters. CAMB only accepts A_s, so a
// sigma8-normalized record cannot be expressed.
func (f CAMB) To(p *cosmology.Parameters) (cosmology.Values, error) {
	as, ok := p.AS()
	if !ok {
		return nil, &fcerrors.UnsupportedFeatureError{Feature: "sigma8 normalization", Component: f.Name()}
	}

	hierarchy := ""
	for label, mt := range cambHierarchy {
		if mt == p.MNuType() {
			hierarchy = label
		}
	}
	if hierarchy == "" {
		return nil, &fcerrors.UnsupportedFeatureError{Feature: "neutrino mass type " + string(p.MNuType()), Component: f.Name()}
	}

	h2 := p.H() * p.H()
	return cosmology.Values{
		"H0":                 p.H() * 100,
		"ombh2":              p.OmegaB() * h2,
		"omch2":              p.OmegaC() * h2,
		"omk":                p.OmegaK(),
		"As":                 as,
		"ns":                 p.NS(),
		"mnu":                p.MNu(),
		"nnu":                p.Neff(),
		"w":                  p.W0(),
		"wa":                 p.Wa(),
		"TCMB":               p.TCMB(),
		"neutrino_hierarchy": hierarchy,
	}, nil
}
