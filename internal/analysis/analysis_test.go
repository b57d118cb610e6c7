package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/am610/firecrown/internal/config"
	"github.com/am610/firecrown/internal/consistency"
	"github.com/am610/firecrown/internal/datablock"
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/internal/testutils"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// twoAnalyses returns the two-point document plus a second analysis that
// differs only in its data vector and likelihood.
func twoAnalyses(t *testing.T) *config.Document {
	t.Helper()
	var raw map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(testutils.TwoPointConfig), &raw))

	second := config.Merge(raw["twopoint"].(map[string]any), map[string]any{
		"likelihood": map[string]any{"type": "student_t", "nu": 50},
		"data": map[string]any{
			"vector": []any{0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1},
			"sigma":  []any{2.0, 2.0, 2.0, 2.0, 2.0, 2.0, 2.0, 2.0, 2.0},
		},
	})
	doc, err := config.Decode(config.Merge(raw, map[string]any{"twopoint_b": second}))
	require.NoError(t, err)
	return doc
}

func singleAnalysis(t *testing.T) *config.Document {
	t.Helper()
	doc, err := config.Parse([]byte(testutils.TwoPointConfig))
	require.NoError(t, err)
	return doc
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register("", NewTwoPoint))
	assert.Error(t, r.Register("x", nil))
	require.NoError(t, r.Register("x", NewTwoPoint))
	assert.Error(t, r.Register("x", NewTwoPoint))
	assert.Equal(t, []string{"x"}, r.Modules())

	_, err := r.Build("a", "missing", oracle.NewStub())
	var unknown *fcerrors.UnknownTypeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "analysis", unknown.Category)
	assert.Equal(t, "missing", unknown.Type)

	assert.Contains(t, GetGlobalRegistry().Modules(), ModuleTwoPoint)
}

func TestPipeline_TotalIsSumOfAnalyses(t *testing.T) {
	doc := twoAnalyses(t)
	p := NewPipeline(oracle.NewStub())
	require.NoError(t, p.Setup(doc))
	require.Len(t, p.Analyses(), 2)

	block, err := p.Execute(context.Background(), doc.Parameters)
	require.NoError(t, err)

	a, err := block.GetFloat(datablock.SectionLikelihoods, datablock.LikeKey("twopoint"))
	require.NoError(t, err)
	b, err := block.GetFloat(datablock.SectionLikelihoods, datablock.LikeKey("twopoint_b"))
	require.NoError(t, err)
	total, err := block.GetFloat(datablock.SectionLikelihoods, datablock.KeyTotalLike)
	require.NoError(t, err)

	assert.Less(t, a, 0.0)
	assert.Less(t, b, 0.0)
	assert.NotEqual(t, a, b)
	assert.InDelta(t, a+b, total, 1e-12)
}

func TestPipeline_WritesResults(t *testing.T) {
	doc := singleAnalysis(t)
	p := NewPipeline(oracle.NewStub())
	require.NoError(t, p.Setup(doc))

	block, err := p.Execute(context.Background(), doc.Parameters)
	require.NoError(t, err)

	h, err := block.GetFloat(SectionCosmology, "h")
	require.NoError(t, err)
	assert.Equal(t, 0.7, h)

	omegaC, err := block.GetFloat(SectionCosmology, "Omega_c")
	require.NoError(t, err)
	assert.Equal(t, 0.25, omegaC, "sampled ranges reduce to the fiducial value")

	ells, err := block.GetFloats("twopoint_theory", "ell")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 100, 1000}, ells)

	for _, key := range []string{"cl_lens0_lens0", "cl_lens0_src0", "cl_src0_src0"} {
		cl, err := block.GetFloats("twopoint_theory", key)
		require.NoError(t, err, key)
		assert.Len(t, cl, 3)
	}

	single, err := block.GetFloat(datablock.SectionLikelihoods, datablock.LikeKey("twopoint"))
	require.NoError(t, err)
	total, err := block.GetFloat(datablock.SectionLikelihoods, datablock.KeyTotalLike)
	require.NoError(t, err)
	assert.Equal(t, single, total)
}

func TestPipeline_NuisanceChangesLikelihood(t *testing.T) {
	doc := singleAnalysis(t)
	p := NewPipeline(oracle.NewStub())
	require.NoError(t, p.Setup(doc))

	first, err := p.Execute(context.Background(), doc.Parameters)
	require.NoError(t, err)
	second, err := p.Execute(context.Background(), testutils.WithValues(doc.Parameters, map[string]any{"src0_m_m": 0.2}))
	require.NoError(t, err)

	l1, err := first.GetFloat(datablock.SectionLikelihoods, datablock.KeyTotalLike)
	require.NoError(t, err)
	l2, err := second.GetFloat(datablock.SectionLikelihoods, datablock.KeyTotalLike)
	require.NoError(t, err)
	assert.NotEqual(t, l1, l2)
}

func TestPipeline_Errors(t *testing.T) {
	t.Run("execute before setup", func(t *testing.T) {
		_, err := NewPipeline(oracle.NewStub()).Execute(context.Background(), testutils.FiducialValues())
		assert.True(t, errors.Is(err, fcerrors.ErrInvalidState))
	})

	t.Run("setup twice", func(t *testing.T) {
		p := NewPipeline(oracle.NewStub())
		require.NoError(t, p.Setup(singleAnalysis(t)))
		assert.True(t, errors.Is(p.Setup(singleAnalysis(t)), fcerrors.ErrInvalidState))
	})

	t.Run("unknown module", func(t *testing.T) {
		doc := singleAnalysis(t)
		a := doc.Analyses["twopoint"]
		a.Module = "threepoint"
		doc.Analyses["twopoint"] = a
		err := NewPipeline(oracle.NewStub()).Setup(doc)
		assert.True(t, errors.Is(err, fcerrors.ErrUnknownType))
	})

	t.Run("missing data", func(t *testing.T) {
		doc := singleAnalysis(t)
		a := doc.Analyses["twopoint"]
		a.Data = nil
		doc.Analyses["twopoint"] = a
		err := NewPipeline(oracle.NewStub()).Setup(doc)
		assert.True(t, errors.Is(err, fcerrors.ErrMissingParameter))
	})

	t.Run("data length mismatch", func(t *testing.T) {
		doc := singleAnalysis(t)
		a := doc.Analyses["twopoint"]
		a.Pairs = [][]string{{"lens0", "lens0"}}
		doc.Analyses["twopoint"] = a
		p := NewPipeline(oracle.NewStub())
		require.NoError(t, p.Setup(doc))
		_, err := p.Execute(context.Background(), doc.Parameters)
		assert.True(t, errors.Is(err, fcerrors.ErrInvalidValue))
	})

	t.Run("missing nuisance", func(t *testing.T) {
		doc := singleAnalysis(t)
		p := NewPipeline(oracle.NewStub())
		require.NoError(t, p.Setup(doc))
		values := testutils.WithValues(doc.Parameters, nil)
		delete(values, "lens0_bias_bias")
		_, err := p.Execute(context.Background(), values)
		assert.True(t, errors.Is(err, fcerrors.ErrMissingParameter))
	})

	t.Run("massive neutrinos", func(t *testing.T) {
		doc := singleAnalysis(t)
		p := NewPipeline(oracle.NewStub(), WithEnforcer(consistency.New(consistency.WithComponent("stub"))))
		require.NoError(t, p.Setup(doc))
		_, err := p.Execute(context.Background(), testutils.WithValues(doc.Parameters, map[string]any{"m_nu": 0.06}))
		assert.True(t, errors.Is(err, fcerrors.ErrUnsupportedFeature))
	})
}

func TestPipeline_TestModeIDs(t *testing.T) {
	testutils.ResetTestCounters()
	p := NewPipeline(oracle.NewStub(), WithTestMode(true))
	require.NoError(t, p.Setup(twoAnalyses(t)))

	analyses := p.Analyses()
	require.Len(t, analyses, 2)
	assert.Equal(t, "twopoint", analyses[0].Name())
	assert.Equal(t, "00000001-0000-4000-8000-000000000001", analyses[0].(*TwoPoint).Calculator().ID().String())
	assert.Equal(t, "00000002-0000-4000-8000-000000000002", analyses[1].(*TwoPoint).Calculator().ID().String())
}

func TestPipeline_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	doc := singleAnalysis(t)
	p := NewPipeline(oracle.NewStub(), WithMetrics(metrics))
	require.NoError(t, p.Setup(doc))

	_, err = p.Execute(context.Background(), doc.Parameters)
	require.NoError(t, err)
	_, err = p.Execute(context.Background(), doc.Parameters)
	require.NoError(t, err)

	values := testutils.WithValues(doc.Parameters, nil)
	delete(values, "lens0_bias_bias")
	_, err = p.Execute(context.Background(), values)
	require.Error(t, err)

	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.Evaluations("twopoint", OutcomeAccepted)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.Evaluations("twopoint", OutcomeRejected)))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "collectors register once per registry")
}

func TestPipeline_ParametersCoverEveryNuisanceKey(t *testing.T) {
	doc := singleAnalysis(t)
	p := NewPipeline(oracle.NewStub())
	require.NoError(t, p.Setup(doc))

	for _, a := range p.Analyses() {
		tp, ok := a.(*TwoPoint)
		require.True(t, ok)
		for _, key := range tp.Calculator().Table().Parameters() {
			assert.Contains(t, doc.Parameters, key)
		}
	}

	block, err := p.Execute(context.Background(), doc.Parameters)
	require.NoError(t, err)
	assert.True(t, block.Has("twopoint_theory", "cl_lens0_src0"))
}
