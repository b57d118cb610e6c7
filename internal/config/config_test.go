package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am610/firecrown/internal/testutils"
	"github.com/am610/firecrown/pkg/fcerrors"
)

func TestParse_TwoPoint(t *testing.T) {
	doc, err := Parse([]byte(testutils.TwoPointConfig))
	require.NoError(t, err)

	assert.Equal(t, ">= 1.0.0", doc.Requires)
	assert.Equal(t, []string{"twopoint"}, doc.AnalysisNames(), "cosmosis section must be ignored")

	a := doc.Analyses["twopoint"]
	assert.Equal(t, "twopoint", a.Module)
	assert.Equal(t, []float64{10, 100, 1000}, a.Ells)
	assert.Equal(t, []string{"lens0_dz", "lens0_bias"}, a.Sources["lens0"].Systematics)
	assert.Equal(t, "wl", a.Sources["src0"].Type)
	assert.Len(t, a.Systematics, 5)
	assert.Equal(t, 1.0, a.Systematics["src0_ia"]["alpha"], "floats in free-form records keep their type")

	typ, err := a.Likelihood.Type()
	require.NoError(t, err)
	assert.Equal(t, "gaussian", typ)

	require.NotNil(t, a.Data)
	assert.Len(t, a.Data.Vector, 9)
	assert.Len(t, a.Data.Sigma, 9)
	assert.Equal(t, []float64{0.5, 1.5, 1.5, 0.5}, a.Metadata["lens0"].NZ)

	assert.Equal(t, []any{0.2, 0.25, 0.3}, doc.Parameters["Omega_c"])
	assert.Equal(t, 0.7, doc.Parameters["h"])
}

func TestAnalysis_TheoryConfig(t *testing.T) {
	doc, err := Parse([]byte(testutils.TwoPointConfig + `  pairs:
    - [lens0, src0]
    - [src0, src0]
`))
	require.NoError(t, err)

	cfg := doc.Analyses["twopoint"].TheoryConfig()
	require.Len(t, cfg.Pairs, 2)
	assert.Equal(t, "lens0-src0", cfg.Pairs[0].String())
	assert.Equal(t, "src0-src0", cfg.Pairs[1].String())
	assert.Equal(t, []float64{10, 100, 1000}, cfg.Ells)
	assert.Len(t, cfg.Sources, 2)
}

func TestParse_Invalid(t *testing.T) {
	base := `parameters:
  h: 0.7
`
	analysis := `a:
  module: twopoint
  ells: [10]
  likelihood: {type: gaussian}
  sources:
    s: {type: lss}
  metadata:
    s: {z: [0.1, 0.2], nz: [1, 1]}
`
	tests := []struct {
		name     string
		yaml     string
		sentinel error
		contains string
	}{
		{
			name:     "missing module",
			yaml:     base + strings.Replace(analysis, "  module: twopoint\n", "", 1),
			sentinel: fcerrors.ErrInvalidValue,
			contains: "a.module",
		},
		{
			name:     "non-positive ell",
			yaml:     base + strings.Replace(analysis, "ells: [10]", "ells: [10, 0]", 1),
			sentinel: fcerrors.ErrInvalidValue,
			contains: "a.ells[1]",
		},
		{
			name:     "no sources",
			yaml:     base + strings.Replace(analysis, "  sources:\n    s: {type: lss}\n", "", 1),
			sentinel: fcerrors.ErrInvalidValue,
			contains: "a.sources",
		},
		{
			name:     "short n(z)",
			yaml:     base + strings.Replace(analysis, "nz: [1, 1]", "nz: [1]", 1),
			sentinel: fcerrors.ErrInvalidValue,
			contains: "nz",
		},
		{
			name:     "pair of three",
			yaml:     base + analysis + "  pairs:\n    - [s, s, s]\n",
			sentinel: fcerrors.ErrInvalidValue,
			contains: "a.pairs[0]",
		},
		{
			name:     "analysis is not a mapping",
			yaml:     base + "a: 3\n",
			sentinel: fcerrors.ErrConstructionType,
		},
		{
			name:     "parameters is not a mapping",
			yaml:     "parameters: [1, 2]\n" + analysis,
			sentinel: fcerrors.ErrConstructionType,
		},
		{
			name:     "requires not satisfied",
			yaml:     "requires: \">= 99.0.0\"\n" + analysis,
			contains: "99.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			if tt.sentinel != nil {
				assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			}
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestParse_NoAnalysis(t *testing.T) {
	_, err := Parse([]byte("parameters:\n  h: 0.7\ncosmosis:\n  sampler: test\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no analysis")
}

func TestMerge(t *testing.T) {
	base := map[string]any{
		"parameters": map[string]any{"h": 0.7, "n_s": 0.96},
		"a":          map[string]any{"ells": []any{10, 100}},
	}
	overlay := map[string]any{
		"parameters": map[string]any{"h": 0.68},
		"a":          map[string]any{"ells": []any{20}},
		"b":          "new",
	}

	merged := Merge(base, overlay)

	assert.Equal(t, map[string]any{
		"parameters": map[string]any{"h": 0.68, "n_s": 0.96},
		"a":          map[string]any{"ells": []any{20}},
		"b":          "new",
	}, merged)

	// Inputs untouched.
	assert.Equal(t, 0.7, base["parameters"].(map[string]any)["h"])
	assert.NotContains(t, base, "b")

	// The result shares no nested state with the inputs.
	merged["parameters"].(map[string]any)["h"] = 1.0
	assert.Equal(t, 0.68, overlay["parameters"].(map[string]any)["h"])
}

func TestMerge_Nil(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1}, Merge(nil, map[string]any{"a": 1}))
	assert.Empty(t, Merge(nil, nil))
}

func TestLoad_Layers(t *testing.T) {
	basePath := testutils.WriteFile(t, "base.yaml", testutils.TwoPointConfig)
	overlayPath := testutils.WriteFile(t, "overlay.yaml", `parameters:
  h: 0.68
twopoint:
  ells: [20, 200]
`)

	doc, err := Load(basePath, overlayPath)
	require.NoError(t, err)

	assert.Equal(t, 0.68, doc.Parameters["h"])
	assert.Equal(t, 0.8, doc.Parameters["sigma8"])
	assert.Equal(t, []float64{20, 200}, doc.Analyses["twopoint"].Ells)
	assert.Equal(t, "twopoint", doc.Analyses["twopoint"].Module)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load()
	assert.Error(t, err)

	_, err = Load("/nonexistent/firecrown.yaml")
	assert.Error(t, err)

	bad := testutils.WriteFile(t, "bad.yaml", "a: [unclosed\n")
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse configuration")
}
