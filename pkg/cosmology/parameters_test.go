package cosmology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/am610/firecrown/pkg/fcerrors"
)

func referenceValues() Values {
	return Values{
		KeyOmegaC:  0.25,
		KeyOmegaB:  0.05,
		KeyH:       0.7,
		KeySigma8:  0.8,
		KeyNs:      0.96,
		KeyOmegaK:  0.0,
		KeyNeff:    3.046,
		KeyMNu:     0.0,
		KeyMNuType: "normal",
		KeyW0:      -1.0,
		KeyWa:      0.0,
		KeyTCMB:    2.7255,
	}
}

func TestNew_Valid(t *testing.T) {
	p, err := New(referenceValues())
	require.NoError(t, err)

	assert.Equal(t, 0.25, p.OmegaC())
	assert.Equal(t, 0.05, p.OmegaB())
	assert.Equal(t, 0.7, p.H())
	assert.Equal(t, AmplitudeSigma8, p.Amplitude())
	sigma8, ok := p.Sigma8()
	assert.True(t, ok)
	assert.Equal(t, 0.8, sigma8)
	_, ok = p.AS()
	assert.False(t, ok)
	_, ok = p.OmegaG()
	assert.False(t, ok)
	assert.Equal(t, MassNormal, p.MNuType())
	assert.Equal(t, 2.7255, p.TCMB())
}

func TestNew_AmplitudeExclusivity(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Values)
		wantErr bool
		want    Amplitude
	}{
		{
			name:   "sigma8 only",
			mutate: func(Values) {},
			want:   AmplitudeSigma8,
		},
		{
			name: "A_s only",
			mutate: func(v Values) {
				delete(v, KeySigma8)
				v[KeyAs] = 2.1e-9
			},
			want: AmplitudeAs,
		},
		{
			name: "nil sigma8 counts as absent",
			mutate: func(v Values) {
				v[KeySigma8] = nil
				v[KeyAs] = 2.1e-9
			},
			want: AmplitudeAs,
		},
		{
			name: "both",
			mutate: func(v Values) {
				v[KeyAs] = 2.1e-9
			},
			wantErr: true,
		},
		{
			name: "neither",
			mutate: func(v Values) {
				delete(v, KeySigma8)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := referenceValues()
			tt.mutate(values)
			p, err := New(values)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, fcerrors.ErrAmbiguousAmplitude))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Amplitude())

			_, hasAs := p.AS()
			_, hasSigma8 := p.Sigma8()
			assert.NotEqual(t, hasAs, hasSigma8, "exactly one amplitude must be set")
		})
	}
}

func TestNew_StrictTyping(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"int for float", KeyOmegaC, 1},
		{"string for float", KeyH, "0.7"},
		{"int amplitude", KeySigma8, 1},
		{"float for string", KeyMNuType, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := referenceValues()
			values[tt.key] = tt.value
			_, err := New(values)
			require.Error(t, err)

			var typeErr *fcerrors.ConstructionTypeError
			require.True(t, errors.As(err, &typeErr))
			assert.Equal(t, tt.key, typeErr.Field)
		})
	}
}

func TestNew_MissingParameter(t *testing.T) {
	values := referenceValues()
	delete(values, KeyNeff)

	_, err := New(values)
	require.Error(t, err)

	var missing *fcerrors.MissingParameterError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, KeyNeff, missing.Key)
}

func TestNew_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown hierarchy", KeyMNuType, "sideways"},
		{"zero h", KeyH, 0.0},
		{"negative neutrino mass", KeyMNu, -0.1},
		{"negative sigma8", KeySigma8, -0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := referenceValues()
			values[tt.key] = tt.value
			_, err := New(values)
			assert.ErrorIs(t, err, fcerrors.ErrInvalidValue)
		})
	}
}

func TestParameters_AsMapRoundTrip(t *testing.T) {
	values := referenceValues()
	values[KeyOmegaG] = 5e-5

	p, err := New(values)
	require.NoError(t, err)

	m := p.AsMap()
	assert.Nil(t, m[KeyAs])
	assert.Equal(t, 0.8, m[KeySigma8])
	assert.Equal(t, 5e-5, m[KeyOmegaG])

	again, err := New(m)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestParameters_WithLeavesReceiverUntouched(t *testing.T) {
	p, err := New(referenceValues())
	require.NoError(t, err)

	q, err := p.With(Values{KeyWa: 0.1})
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.Wa())
	assert.Equal(t, 0.1, q.Wa())

	_, err = p.With(Values{KeyAs: 2e-9})
	assert.ErrorIs(t, err, fcerrors.ErrAmbiguousAmplitude)
}
