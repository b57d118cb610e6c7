package mapping

import (
	"math"

	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Cobaya maps Cobaya's theory parameter names. The primordial amplitude is
// sampled as logA = ln(10^10 A_s); As is accepted on input as well. Cobaya
// does not expose the CMB temperature or the mass hierarchy.
type Cobaya struct{}

// Name returns "cobaya".
func (Cobaya) Name() string { return "cobaya" }

// From builds a reference record from Cobaya parameters.
func (f Cobaya) From(raw cosmology.Values) (*cosmology.Parameters, error) {
	r := newReader(raw, f.Name())

	if r.has("As") && r.has("logA") {
		return nil, &fcerrors.RedundantParameterError{Keys: []string{"As", "logA"}}
	}

	h := r.float("H0") / 100
	h2 := h * h
	values := cosmology.Values{
		cosmology.KeyH:       h,
		cosmology.KeyOmegaB:  r.float("ombh2") / h2,
		cosmology.KeyOmegaC:  r.float("omch2") / h2,
		cosmology.KeyOmegaK:  r.float("omk"),
		cosmology.KeyNs:      r.float("ns"),
		cosmology.KeyMNu:     r.float("mnu"),
		cosmology.KeyNeff:    r.float("nnu"),
		cosmology.KeyMNuType: string(cosmology.MassNormal),
		cosmology.KeyW0:      r.float("w"),
		cosmology.KeyWa:      r.float("wa"),
		cosmology.KeyTCMB:    cosmology.DefaultTCMB,
	}
	switch {
	case r.has("logA"):
		values[cosmology.KeyAs] = math.Exp(r.float("logA")) / 1e10
	case r.has("As"):
		values[cosmology.KeyAs] = r.float("As")
	}
	if r.has("sigma8") {
		values[cosmology.KeySigma8] = r.float("sigma8")
	}
	if r.err != nil {
		return nil, r.err
	}
	if h2 == 0 {
		return nil, fcerrors.Invalid("H0", 0.0, "must be positive")
	}
	return cosmology.New(values)
}

// To renders a record as Cobaya parameters.
func (Cobaya) To(p *cosmology.Parameters) (cosmology.Values, error) {
	h2 := p.H() * p.H()
	out := cosmology.Values{
		"H0":    p.H() * 100,
		"ombh2": p.OmegaB() * h2,
		"omch2": p.OmegaC() * h2,
		"omk":   p.OmegaK(),
		"ns":    p.NS(),
		"mnu":   p.MNu(),
		"nnu":   p.Neff(),
		"w":     p.W0(),
		"wa":    p.Wa(),
	}
	if as, ok := p.AS(); ok {
		out["logA"] = math.Log(as * 1e10)
	} else {
		sigma8, _ := p.Sigma8()
		out["sigma8"] = sigma8
	}
	return out, nil
}
