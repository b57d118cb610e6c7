package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/am610/firecrown/pkg/cosmology"
)

// FiducialValues returns a complete reference-convention parameter block
// with sigma8 as the amplitude.
func FiducialValues() cosmology.Values {
	return cosmology.Values{
		cosmology.KeyOmegaC:  0.25,
		cosmology.KeyOmegaB:  0.05,
		cosmology.KeyH:       0.7,
		cosmology.KeySigma8:  0.8,
		cosmology.KeyNs:      0.96,
		cosmology.KeyOmegaK:  0.0,
		cosmology.KeyNeff:    cosmology.NeffStandard,
		cosmology.KeyMNu:     0.0,
		cosmology.KeyMNuType: "normal",
		cosmology.KeyW0:      -1.0,
		cosmology.KeyWa:      0.0,
		cosmology.KeyTCMB:    cosmology.DefaultTCMB,
	}
}

// FiducialParameters builds the record for FiducialValues.
func FiducialParameters(t *testing.T) *cosmology.Parameters {
	t.Helper()
	p, err := cosmology.New(FiducialValues())
	require.NoError(t, err)
	return p
}

// CosmoSISValues returns the cosmosis_camb block of the end-to-end scenario.
func CosmoSISValues() cosmology.Values {
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

// WithValues returns a copy of base with extra keys set.
func WithValues(base cosmology.Values, extra cosmology.Values) cosmology.Values {
	out := make(cosmology.Values, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// TwoPointConfig is a complete configuration document with one lens and one
// shear source, exercising every systematic kind.
const TwoPointConfig = `requires: ">= 1.0.0"
parameters:
  Omega_c: [0.2, 0.25, 0.3]
  Omega_b: 0.05
  h: 0.7
  sigma8: 0.8
  n_s: 0.96
  Omega_k: 0.0
  Neff: 3.046
  m_nu: 0.0
  m_nu_type: normal
  w0: -1.0
  wa: 0.0
  T_CMB: 2.7255
  lens0_bias_bias: [1.0, 1.5, 2.0]
  lens0_dz_delta_z: 0.0
  src0_ia_a_ia: 0.5
  src0_m_m: 0.01
  baryons_log10_mc: 14.0
cosmosis:
  sampler: test
twopoint:
  module: twopoint
  ells: [10, 100, 1000]
  sources:
    lens0:
      type: lss
      systematics: [lens0_dz, lens0_bias]
    src0:
      type: wl
      systematics: [src0_ia, src0_m]
  systematics:
    lens0_dz:
      type: photoz_shift
    lens0_bias:
      type: linear_bias
    src0_ia:
      type: linear_alignment
      alpha: 1.0
    src0_m:
      type: multiplicative_shear_bias
    baryons:
      type: baryonic_feedback
  likelihood:
    type: gaussian
  data:
    vector: [0, 0, 0, 0, 0, 0, 0, 0, 0]
    sigma: [1, 1, 1, 1, 1, 1, 1, 1, 1]
  metadata:
    lens0:
      z: [0.1, 0.3, 0.5, 0.7]
      nz: [0.5, 1.5, 1.5, 0.5]
    src0:
      z: [0.3, 0.6, 0.9, 1.2]
      nz: [0.2, 1.0, 1.0, 0.2]
`

// WriteFile writes content into a fresh temp directory and returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
