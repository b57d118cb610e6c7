package mapping

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

const tolerance = 1e-12

func cosmosisParams() cosmology.Values {
	return cosmology.Values{
		"omega_c":  0.25,
		"omega_b":  0.05,
		"h0":       0.7,
		"sigma_8":  0.8,
		"n_s":      0.96,
		"omega_k":  0.0,
		"w":        -1.0,
		"wa":       0.0,
		"omega_nu": 0.0,
	}
}

func referenceRecord(t *testing.T, overrides cosmology.Values) *cosmology.Parameters {
	t.Helper()
	values := cosmology.Values{
		cosmology.KeyOmegaC:  0.26,
		cosmology.KeyOmegaB:  0.049,
		cosmology.KeyH:       0.675,
		cosmology.KeyAs:      2.1e-9,
		cosmology.KeyNs:      0.965,
		cosmology.KeyOmegaK:  0.0,
		cosmology.KeyNeff:    3.046,
		cosmology.KeyMNu:     0.06,
		cosmology.KeyMNuType: "normal",
		cosmology.KeyW0:      -0.95,
		cosmology.KeyWa:      0.1,
		cosmology.KeyTCMB:    2.7255,
	}
	for k, v := range overrides {
		values[k] = v
	}
	p, err := cosmology.New(values)
	require.NoError(t, err)
	return p
}

// assertSubset checks every key of want against got within tolerance.
func assertSubset(t *testing.T, want, got cosmology.Values) {
	t.Helper()
	for key, w := range want {
		g, ok := got[key]
		require.True(t, ok, "key %s missing from round trip", key)
		switch wv := w.(type) {
		case float64:
			gv, ok := g.(float64)
			require.True(t, ok, "key %s changed type: %T", key, g)
			assert.InDelta(t, wv, gv, tolerance*math.Max(1, math.Abs(wv)), "key %s", key)
		default:
			assert.Equal(t, w, g, "key %s", key)
		}
	}
}

func TestFromCosmoSISCAMB_EndToEndScenario(t *testing.T) {
	p, err := CosmoSISCAMB{}.From(cosmosisParams())
	require.NoError(t, err)

	assert.Equal(t, 3.046, p.Neff())
	assert.Equal(t, 0.0, p.MNu())
	assert.InDelta(t, 0.0, p.Wa(), 0)
	assert.Equal(t, 2.7255, p.TCMB())
	assert.Equal(t, cosmology.MassNormal, p.MNuType())

	sigma8, ok := p.Sigma8()
	require.True(t, ok)
	assert.Equal(t, 0.8, sigma8)
	_, ok = p.AS()
	assert.False(t, ok, "A_s must never be synthesized")
}

func TestCosmoSISCAMB_DeltaNeffBaseline(t *testing.T) {
	raw := cosmosisParams()
	raw["delta_neff"] = 0.0
	p, err := CosmoSISCAMB{}.From(raw)
	require.NoError(t, err)
	assert.Equal(t, 3.046, p.Neff())

	raw["delta_neff"] = 0.5
	p, err = CosmoSISCAMB{}.From(raw)
	require.NoError(t, err)
	assert.InDelta(t, 3.546, p.Neff(), tolerance)
}

func TestCosmoSISCAMB_NeutrinoMass(t *testing.T) {
	raw := cosmosisParams()
	raw["omega_nu"] = 0.0013
	p, err := CosmoSISCAMB{}.From(raw)
	require.NoError(t, err)
	assert.InDelta(t, 0.0013*0.7*0.7*93.14, p.MNu(), tolerance)
}

func TestCosmoSISCAMB_WaSignFlip(t *testing.T) {
	p := referenceRecord(t, cosmology.Values{cosmology.KeyWa: 0.1})

	out, err := CosmoSISCAMB{}.To(p)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, out["wa"].(float64), tolerance)

	back, err := CosmoSISCAMB{}.From(out)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, back.Wa(), tolerance)
}

func TestCosmoSISCAMB_ZeroWaHasNoSign(t *testing.T) {
	p := referenceRecord(t, cosmology.Values{cosmology.KeyWa: 0.0})

	out, err := CosmoSISCAMB{}.To(p)
	require.NoError(t, err)
	assert.False(t, math.Signbit(out["wa"].(float64)))

	back, err := CosmoSISCAMB{}.From(out)
	require.NoError(t, err)
	assert.False(t, math.Signbit(back.Wa()))
}

func TestCosmoSISCAMB_MissingKey(t *testing.T) {
	raw := cosmosisParams()
	delete(raw, "h0")

	_, err := CosmoSISCAMB{}.From(raw)
	require.Error(t, err)

	var missing *fcerrors.MissingParameterError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "h0", missing.Key)
	assert.Equal(t, "cosmosis_camb", missing.Context)
}

func TestCosmoSISCAMB_IntegerIsTypeError(t *testing.T) {
	raw := cosmosisParams()
	raw["omega_k"] = 0

	_, err := CosmoSISCAMB{}.From(raw)
	assert.ErrorIs(t, err, fcerrors.ErrConstructionType)
}

func TestCosmoSISCAMB_BothAmplitudesRejected(t *testing.T) {
	raw := cosmosisParams()
	raw["a_s"] = 2.1e-9

	_, err := CosmoSISCAMB{}.From(raw)
	assert.ErrorIs(t, err, fcerrors.ErrAmbiguousAmplitude)
}

func TestRoundTrip_AllFrameworks(t *testing.T) {
	tests := []struct {
		framework string
		raw       cosmology.Values
	}{
		{
			framework: "cosmosis_camb",
			raw: cosmology.Values{
				"omega_c": 0.26, "omega_b": 0.049, "h0": 0.675, "sigma_8": 0.81, "n_s": 0.965,
				"omega_k": 0.001, "delta_neff": 0.2, "omega_nu": 0.0014, "w": -0.9, "wa": 0.3,
			},
		},
		{
			framework: "cosmosis_camb",
			raw: cosmology.Values{
				"omega_c": 0.26, "omega_b": 0.049, "h0": 0.675, "a_s": 2.1e-9, "n_s": 0.965,
				"omega_k": 0.0, "delta_neff": 0.0, "omega_nu": 0.0, "w": -1.0, "wa": -0.2,
			},
		},
		{
			framework: "camb",
			raw: cosmology.Values{
				"H0": 67.5, "ombh2": 0.022, "omch2": 0.122, "omk": 0.0, "As": 2.1e-9, "ns": 0.965,
				"mnu": 0.06, "nnu": 3.046, "w": -1.0, "wa": 0.0, "TCMB": 2.7255, "neutrino_hierarchy": "degenerate",
			},
		},
		{
			framework: "class",
			raw: cosmology.Values{
				"h": 0.675, "omega_b": 0.022, "omega_cdm": 0.122, "Omega_k": 0.0, "A_s": 2.1e-9, "n_s": 0.965,
				"N_ur": 0.00641, "N_ncdm": 1, "m_ncdm": 0.02, "deg_ncdm": 3.0, "w0_fld": -0.9, "wa_fld": 0.1, "T_cmb": 2.7255,
			},
		},
		{
			framework: "class",
			raw: cosmology.Values{
				"h": 0.7, "omega_b": 0.0245, "omega_cdm": 0.1225, "Omega_k": 0.0, "sigma8": 0.8, "n_s": 0.96,
				"N_ur": 3.046, "N_ncdm": 0, "w0_fld": -1.0, "wa_fld": 0.0, "T_cmb": 2.7255,
			},
		},
		{
			framework: "cobaya",
			raw: cosmology.Values{
				"H0": 67.5, "ombh2": 0.022, "omch2": 0.122, "omk": 0.0, "logA": 3.044, "ns": 0.965,
				"mnu": 0.06, "nnu": 3.046, "w": -1.0, "wa": 0.0,
			},
		},
		{
			framework: "ccl",
			raw: cosmology.Values{
				"Omega_c": 0.25, "Omega_b": 0.05, "h": 0.7, "sigma8": 0.8, "n_s": 0.96, "Omega_k": 0.0,
				"Neff": 3.046, "m_nu": 0.0, "m_nu_type": "inverted", "w0": -1.0, "wa": 0.0, "T_CMB": 2.7255,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.framework, func(t *testing.T) {
			fw, err := GetGlobalRegistry().Get(tt.framework)
			require.NoError(t, err)

			p, err := fw.From(tt.raw)
			require.NoError(t, err)

			out, err := fw.To(p)
			require.NoError(t, err)
			assertSubset(t, tt.raw, out)

			again, err := fw.From(out)
			require.NoError(t, err)
			assertSubset(t, p.AsMap(), again.AsMap())
		})
	}
}

func TestCAMB_UnitConversions(t *testing.T) {
	raw := cosmology.Values{
		"H0": 70.0, "ombh2": 0.0245, "omch2": 0.1225, "omk": 0.0, "As": 2e-9, "ns": 0.96,
		"mnu": 0.06, "nnu": 3.046, "w": -1.0, "wa": 0.0, "TCMB": 2.7255, "neutrino_hierarchy": "inverted",
	}
	p, err := CAMB{}.From(raw)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, p.H(), tolerance)
	assert.InDelta(t, 0.05, p.OmegaB(), tolerance)
	assert.InDelta(t, 0.25, p.OmegaC(), tolerance)
	assert.Equal(t, cosmology.MassInverted, p.MNuType())
}

func TestCAMB_RejectsSigma8Record(t *testing.T) {
	p := referenceRecord(t, cosmology.Values{cosmology.KeyAs: nil, cosmology.KeySigma8: 0.8})

	_, err := CAMB{}.To(p)
	var unsupported *fcerrors.UnsupportedFeatureError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "camb", unsupported.Component)
}

func TestCLASS_MultipleSpeciesUnsupported(t *testing.T) {
	raw := cosmology.Values{
		"h": 0.7, "omega_b": 0.0245, "omega_cdm": 0.1225, "Omega_k": 0.0, "A_s": 2e-9, "n_s": 0.96,
		"N_ur": 1.0, "N_ncdm": 2, "w0_fld": -1.0, "wa_fld": 0.0, "T_cmb": 2.7255,
	}
	_, err := CLASS{}.From(raw)
	assert.ErrorIs(t, err, fcerrors.ErrUnsupportedFeature)

	raw["N_ncdm"] = 1.0
	_, err = CLASS{}.From(raw)
	assert.ErrorIs(t, err, fcerrors.ErrConstructionType)
}

func TestCobaya_AmplitudeForms(t *testing.T) {
	base := cosmology.Values{
		"H0": 70.0, "ombh2": 0.0245, "omch2": 0.1225, "omk": 0.0, "ns": 0.96,
		"mnu": 0.0, "nnu": 3.046, "w": -1.0, "wa": 0.0,
	}

	withLogA := cosmology.Values{"logA": math.Log(2.1e-9 * 1e10)}
	for k, v := range base {
		withLogA[k] = v
	}
	p, err := Cobaya{}.From(withLogA)
	require.NoError(t, err)
	as, ok := p.AS()
	require.True(t, ok)
	assert.InDelta(t, 2.1e-9, as, 1e-20)
	assert.Equal(t, cosmology.DefaultTCMB, p.TCMB())

	withLogA["As"] = 2.1e-9
	_, err = Cobaya{}.From(withLogA)
	assert.ErrorIs(t, err, fcerrors.ErrRedundantParameter)
}

func TestToNative(t *testing.T) {
	p := referenceRecord(t, cosmology.Values{cosmology.KeyOmegaG: 5e-5})

	native := ToNative(p)
	require.NotNil(t, native.AS)
	assert.Nil(t, native.Sigma8)
	require.NotNil(t, native.OmegaG)
	assert.Equal(t, 5e-5, *native.OmegaG)
	assert.Equal(t, p.H(), native.H)
	assert.Equal(t, string(p.MNuType()), native.MNuType)
	require.NoError(t, native.Validate())
}

func TestRegistry_Convert(t *testing.T) {
	out, err := GetGlobalRegistry().Convert("cosmosis_camb", "ccl", cosmosisParams())
	require.NoError(t, err)
	assert.Equal(t, 3.046, out[cosmology.KeyNeff])
	assert.NotContains(t, out, cosmology.KeyAs)

	_, err = GetGlobalRegistry().Convert("cosmosis_camb", "camb", cosmosisParams())
	assert.ErrorIs(t, err, fcerrors.ErrUnsupportedFeature)

	_, err = GetGlobalRegistry().Convert("astropy", "ccl", cosmosisParams())
	var unknown *fcerrors.UnknownTypeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "astropy", unknown.Type)
}

func TestRegistry_Names(t *testing.T) {
	assert.Equal(t, []string{"camb", "ccl", "class", "cobaya", "cosmosis_camb"}, GetGlobalRegistry().Names())

	r := NewRegistry()
	require.NoError(t, r.Register(CCL{}))
	assert.Error(t, r.Register(CCL{}))
}

func TestRedshiftToScaleFactor(t *testing.T) {
	z := []float64{0, 1, 3}
	pk := [][]float64{{1, 2}, {3, 4}, {5, 6}}

	a, out, err := RedshiftToScaleFactor(z, pk)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 1}, a)
	assert.Equal(t, [][]float64{{5, 6}, {3, 4}, {1, 2}}, out)

	out[0][0] = 99
	assert.Equal(t, 5.0, pk[2][0], "input must not be modified")

	_, _, err = RedshiftToScaleFactor(z, pk[:2])
	assert.Error(t, err)
}
