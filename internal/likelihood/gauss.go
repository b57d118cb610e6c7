// Package likelihood turns theory predictions into a scalar log-likelihood.
//
// Every variant shares the Gaussian family's chi-square against a data
// vector and covariance; variants differ only in how chi-square maps to the
// log-likelihood.
package likelihood

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/am610/firecrown/pkg/fcerrors"
)

// Predictions is anything that flattens into a prediction vector, such as
// theory results.
type Predictions interface {
	Vector() []float64
}

// Likelihood computes the log-likelihood of a prediction.
type Likelihood interface {
	ComputeLogLike(p Predictions) (float64, error)
}

// Data is the observed data vector with either a full covariance or
// per-element standard deviations.
type Data struct {
	Vector     []float64   `yaml:"vector" validate:"required,min=1"`
	Covariance [][]float64 `yaml:"covariance" validate:"required_without=Sigma"`
	Sigma      []float64   `yaml:"sigma" validate:"required_without=Covariance"`
}

// GaussFamily holds the data vector and the Cholesky factor of its
// covariance.
type GaussFamily struct {
	data []float64
	chol mat.Cholesky
}

// NewGaussFamily factorizes the covariance of d.
func NewGaussFamily(d Data) (*GaussFamily, error) {
	n := len(d.Vector)
	if n == 0 {
		return nil, fcerrors.Invalid("data.vector", n, "data vector is empty")
	}

	cov, err := covariance(d, n)
	if err != nil {
		return nil, err
	}

	g := &GaussFamily{data: append([]float64(nil), d.Vector...)}
	if ok := g.chol.Factorize(cov); !ok {
		return nil, fcerrors.Invalid("data.covariance", n, "covariance is not positive definite")
	}
	return g, nil
}

func covariance(d Data, n int) (*mat.SymDense, error) {
	switch {
	case d.Covariance != nil && d.Sigma != nil:
		return nil, &fcerrors.RedundantParameterError{Keys: []string{"covariance", "sigma"}}
	case d.Sigma != nil:
		if len(d.Sigma) != n {
			return nil, fcerrors.Invalid("data.sigma", len(d.Sigma), "expected %d entries", n)
		}
		cov := mat.NewSymDense(n, nil)
		for i, s := range d.Sigma {
			cov.SetSym(i, i, s*s)
		}
		return cov, nil
	case d.Covariance != nil:
		if len(d.Covariance) != n {
			return nil, fcerrors.Invalid("data.covariance", len(d.Covariance), "expected %d rows", n)
		}
		flat := make([]float64, 0, n*n)
		for i, row := range d.Covariance {
			if len(row) != n {
				return nil, fcerrors.Invalid(fmt.Sprintf("data.covariance[%d]", i), len(row), "expected %d columns", n)
			}
			for j := 0; j < i; j++ {
				if row[j] != d.Covariance[j][i] {
					return nil, fcerrors.Invalid("data.covariance", fmt.Sprintf("(%d,%d)", i, j), "covariance is not symmetric")
				}
			}
			flat = append(flat, row...)
		}
		return mat.NewSymDense(n, flat), nil
	default:
		return nil, fcerrors.Missing("covariance", "likelihood data")
	}
}

// Len returns the data vector length.
func (g *GaussFamily) Len() int { return len(g.data) }

// ComputeChisq returns (d - t)^T C^-1 (d - t).
func (g *GaussFamily) ComputeChisq(p Predictions) (float64, error) {
	theory := p.Vector()
	if len(theory) != len(g.data) {
		return 0, fcerrors.Invalid("prediction", len(theory), "expected %d entries to match the data vector", len(g.data))
	}

	residual := mat.NewVecDense(len(g.data), nil)
	for i, d := range g.data {
		residual.SetVec(i, d-theory[i])
	}

	var x mat.VecDense
	if err := g.chol.SolveVecTo(&x, residual); err != nil {
		return 0, fmt.Errorf("covariance solve: %w", err)
	}
	chi2 := mat.Dot(residual, &x)
	if math.IsNaN(chi2) {
		return 0, fcerrors.Invalid("prediction", chi2, "chi-square is not a number")
	}
	return chi2, nil
}
