package mapping

import (
	"github.com/am610/firecrown/pkg/cosmology"
)

// CosmoSIS cosmological_parameters keys when CAMB is the Boltzmann code.
const (
	cosmosisOmegaC    = "omega_c"
	cosmosisOmegaB    = "omega_b"
	cosmosisH0        = "h0" // dimensionless, not "hubble"
	cosmosisSigma8    = "sigma_8"
	cosmosisAs        = "a_s"
	cosmosisNs        = "n_s"
	cosmosisOmegaK    = "omega_k"
	cosmosisDeltaNeff = "delta_neff"
	cosmosisOmegaNu   = "omega_nu"
	cosmosisW         = "w"
	cosmosisWa        = "wa"
)

// CosmoSISCAMB maps the CosmoSIS datablock convention used with CAMB.
//
// CosmoSIS reports neutrinos as a density fraction and an offset from the
// standard-model Neff, and its wa has the opposite sign to the reference. It
// does not carry the CMB temperature, so From uses the DefaultTCMB
// placeholder and To drops it.
type CosmoSISCAMB struct{}

// Name returns "cosmosis_camb".
func (CosmoSISCAMB) Name() string { return "cosmosis_camb" }

// From builds a reference record from a CosmoSIS parameter section.
func (f CosmoSISCAMB) From(raw cosmology.Values) (*cosmology.Parameters, error) {
	r := newReader(raw, f.Name())

	h := r.float(cosmosisH0)
	values := cosmology.Values{
		cosmology.KeyOmegaC: r.float(cosmosisOmegaC),
		cosmology.KeyOmegaB: r.float(cosmosisOmegaB),
		cosmology.KeyH:      h,
		cosmology.KeyNs:     r.float(cosmosisNs),
		cosmology.KeyOmegaK: r.float(cosmosisOmegaK),
		// delta_neff is optional in CosmoSIS and means "no extra species" when absent.
		cosmology.KeyNeff:    r.floatOr(cosmosisDeltaNeff, 0.0) + cosmology.NeffStandard,
		cosmology.KeyMNu:     r.float(cosmosisOmegaNu) * h * h * cosmology.NeutrinoMassFactor,
		cosmology.KeyMNuType: string(cosmology.MassNormal),
		cosmology.KeyW0:      r.float(cosmosisW),
		cosmology.KeyWa:      flipSign(r.float(cosmosisWa)),
		cosmology.KeyTCMB:    cosmology.DefaultTCMB,
	}
	if r.has(cosmosisSigma8) {
		values[cosmology.KeySigma8] = r.float(cosmosisSigma8)
	}
	if r.has(cosmosisAs) {
		values[cosmology.KeyAs] = r.float(cosmosisAs)
	}
	if r.err != nil {
		return nil, r.err
	}
	return cosmology.New(values)
}

// To renders a record as a CosmoSIS parameter section.
func (CosmoSISCAMB) To(p *cosmology.Parameters) (cosmology.Values, error) {
	h := p.H()
	out := cosmology.Values{
		cosmosisOmegaC:    p.OmegaC(),
		cosmosisOmegaB:    p.OmegaB(),
		cosmosisH0:        h,
		cosmosisNs:        p.NS(),
		cosmosisOmegaK:    p.OmegaK(),
		cosmosisDeltaNeff: p.Neff() - cosmology.NeffStandard,
		cosmosisOmegaNu:   p.MNu() / (h * h * cosmology.NeutrinoMassFactor),
		cosmosisW:         p.W0(),
		cosmosisWa:        flipSign(p.Wa()),
	}
	if sigma8, ok := p.Sigma8(); ok {
		out[cosmosisSigma8] = sigma8
	} else {
		as, _ := p.AS()
		out[cosmosisAs] = as
	}
	return out, nil
}

// flipSign negates the wa convention without producing -0.
func flipSign(x float64) float64 {
	if x == 0 {
		return 0
	}
	return -x
}
