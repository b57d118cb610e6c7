package mapping

import (
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/pkg/cosmology"
)

// CCL is the reference convention itself; From and To are validating
// identities.
type CCL struct{}

// Name returns "ccl".
func (CCL) Name() string { return "ccl" }

// From validates raw as a reference dictionary.
func (CCL) From(raw cosmology.Values) (*cosmology.Parameters, error) {
	return cosmology.New(raw)
}

// To returns the reference dictionary without unset entries.
func (CCL) To(p *cosmology.Parameters) (cosmology.Values, error) {
	out := p.AsMap()
	for k, v := range out {
		if v == nil {
			delete(out, k)
		}
	}
	return out, nil
}

// ToNative builds the oracle's parameter object from a reference record.
func ToNative(p *cosmology.Parameters) oracle.NativeParameters {
	native := oracle.NativeParameters{
		OmegaC:  p.OmegaC(),
		OmegaB:  p.OmegaB(),
		H:       p.H(),
		NS:      p.NS(),
		OmegaK:  p.OmegaK(),
		Neff:    p.Neff(),
		MNu:     p.MNu(),
		MNuType: string(p.MNuType()),
		W0:      p.W0(),
		Wa:      p.Wa(),
		TCMB:    p.TCMB(),
	}
	if as, ok := p.AS(); ok {
		native.AS = &as
	}
	if sigma8, ok := p.Sigma8(); ok {
		native.Sigma8 = &sigma8
	}
	if omegaG, ok := p.OmegaG(); ok {
		native.OmegaG = &omegaG
	}
	return native
}
