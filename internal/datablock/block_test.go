package datablock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am610/firecrown/pkg/fcerrors"
)

func TestBlock_PutGet(t *testing.T) {
	b := New()
	b.Put(SectionLikelihoods, LikeKey("twopoint"), -12.5)
	b.Put("twopoint_theory", "ell", []float64{10, 20})

	v, err := b.GetFloat(SectionLikelihoods, "twopoint_like")
	require.NoError(t, err)
	assert.Equal(t, -12.5, v)

	ells, err := b.GetFloats("twopoint_theory", "ell")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, ells)

	assert.True(t, b.Has(SectionLikelihoods, "twopoint_like"))
	assert.False(t, b.Has(SectionLikelihoods, KeyTotalLike))
	assert.Equal(t, []string{"likelihoods", "twopoint_theory"}, b.Sections())
}

func TestBlock_Errors(t *testing.T) {
	b := New()
	b.Put("s", "name", "lens0")

	_, err := b.GetFloat("s", "missing")
	var missing *fcerrors.MissingParameterError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "missing", missing.Key)

	_, err = b.GetFloat("s", "name")
	assert.ErrorIs(t, err, fcerrors.ErrConstructionType)

	_, err = b.GetFloats("s", "name")
	assert.ErrorIs(t, err, fcerrors.ErrConstructionType)
}

func TestBlock_YAML(t *testing.T) {
	b := New()
	b.Put(SectionLikelihoods, KeyTotalLike, -1.5)
	b.Put(SectionLikelihoods, "a_like", -1.5)

	out, err := b.YAML()
	require.NoError(t, err)
	assert.Equal(t, "likelihoods:\n    a_like: -1.5\n    total_like: -1.5\n", out)
	assert.Equal(t, []string{"a_like", "total_like"}, b.Keys(SectionLikelihoods))
}

func TestBlock_Subset(t *testing.T) {
	b := New()
	b.Put(SectionLikelihoods, KeyTotalLike, -1.5)
	b.Put("twopoint_theory", "ell", []float64{10})

	sub := b.Subset(SectionLikelihoods, "absent")
	assert.Equal(t, []string{SectionLikelihoods}, sub.Sections())
	assert.True(t, sub.Has(SectionLikelihoods, KeyTotalLike))
	assert.False(t, sub.Has("twopoint_theory", "ell"))
}
