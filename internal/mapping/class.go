package mapping

import (
	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// NcdmNeffContribution is the contribution of one non-cold dark matter
// species at the CLASS default temperature to Neff.
const NcdmNeffContribution = 1.0132

// CLASS maps the CLASS input convention. Massive neutrinos are a single
// degenerate ncdm species with deg_ncdm copies of mass m_ncdm; dark energy
// is the w0/wa fluid with Omega_Lambda switched off.
type CLASS struct{}

// Name returns "class".
func (CLASS) Name() string { return "class" }

// From builds a reference record from CLASS input parameters.
func (f CLASS) From(raw cosmology.Values) (*cosmology.Parameters, error) {
	r := newReader(raw, f.Name())

	h := r.float("h")
	h2 := h * h
	values := cosmology.Values{
		cosmology.KeyH:      h,
		cosmology.KeyOmegaB: r.float("omega_b") / h2,
		cosmology.KeyOmegaC: r.float("omega_cdm") / h2,
		cosmology.KeyOmegaK: r.float("Omega_k"),
		cosmology.KeyNs:     r.float("n_s"),
		cosmology.KeyW0:     r.float("w0_fld"),
		cosmology.KeyWa:     r.float("wa_fld"),
		cosmology.KeyTCMB:   r.float("T_cmb"),
	}
	if r.has("A_s") {
		values[cosmology.KeyAs] = r.float("A_s")
	}
	if r.has("sigma8") {
		values[cosmology.KeySigma8] = r.float("sigma8")
	}

	nUR := r.float("N_ur")
	nNcdm := r.int("N_ncdm")
	if r.err != nil {
		return nil, r.err
	}
	if h2 == 0 {
		return nil, fcerrors.Invalid("h", 0.0, "must be positive")
	}

	switch nNcdm {
	case 0:
		values[cosmology.KeyNeff] = nUR
		values[cosmology.KeyMNu] = 0.0
		values[cosmology.KeyMNuType] = string(cosmology.MassNormal)
	case 1:
		mass := r.float("m_ncdm")
		deg := r.float("deg_ncdm")
		if r.err != nil {
			return nil, r.err
		}
		values[cosmology.KeyNeff] = nUR + deg*NcdmNeffContribution
		values[cosmology.KeyMNu] = mass * deg
		values[cosmology.KeyMNuType] = string(cosmology.MassEqual)
	default:
		return nil, &fcerrors.UnsupportedFeatureError{Feature: "more than one ncdm species", Component: f.Name()}
	}
	return cosmology.New(values)
}

// To renders a record as CLASS input parameters. Non-zero neutrino masses are
// written as three degenerate species.
func (f CLASS) To(p *cosmology.Parameters) (cosmology.Values, error) {
	h2 := p.H() * p.H()
	out := cosmology.Values{
		"h":            p.H(),
		"omega_b":      p.OmegaB() * h2,
		"omega_cdm":    p.OmegaC() * h2,
		"Omega_k":      p.OmegaK(),
		"n_s":          p.NS(),
		"w0_fld":       p.W0(),
		"wa_fld":       p.Wa(),
		"Omega_Lambda": 0.0,
		"T_cmb":        p.TCMB(),
	}
	if as, ok := p.AS(); ok {
		out["A_s"] = as
	} else {
		sigma8, _ := p.Sigma8()
		out["sigma8"] = sigma8
	}

	if p.MNu() == 0 {
		out["N_ur"] = p.Neff()
		out["N_ncdm"] = 0
		return out, nil
	}

	const deg = 3.0
	nUR := p.Neff() - deg*NcdmNeffContribution
	if nUR < 0 {
		return nil, fcerrors.Invalid(cosmology.KeyNeff, p.Neff(), "too small for three massive species in CLASS")
	}
	out["N_ur"] = nUR
	out["N_ncdm"] = 1
	out["m_ncdm"] = p.MNu() / deg
	out["deg_ncdm"] = deg
	return out, nil
}
