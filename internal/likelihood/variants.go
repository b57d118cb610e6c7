package likelihood

import (
	"math"

	"github.com/am610/firecrown/pkg/fcerrors"
)

// Gaussian is -chi^2/2.
type Gaussian struct {
	*GaussFamily
}

// NewGaussian builds a Gaussian likelihood over d.
func NewGaussian(d Data) (*Gaussian, error) {
	g, err := NewGaussFamily(d)
	if err != nil {
		return nil, err
	}
	return &Gaussian{GaussFamily: g}, nil
}

// ComputeLogLike returns -chi^2/2 for the prediction.
func (l *Gaussian) ComputeLogLike(p Predictions) (float64, error) {
	chi2, err := l.ComputeChisq(p)
	if err != nil {
		return 0, err
	}
	return GaussianLogLike(chi2), nil
}

// GaussianLogLike maps chi-square to the Gaussian log-likelihood.
func GaussianLogLike(chi2 float64) float64 {
	return -0.5 * chi2
}

// StudentT marginalizes over a covariance estimated from nu simulations
// (Sellentin & Heavens 2016).
type StudentT struct {
	*GaussFamily
	nu float64
}

// NewStudentT builds a Student-t likelihood over d. nu must exceed 1.
func NewStudentT(d Data, nu float64) (*StudentT, error) {
	if math.IsNaN(nu) || nu <= 1 {
		return nil, fcerrors.Invalid("nu", nu, "number of simulations must be greater than 1")
	}
	if math.IsInf(nu, 1) {
		return nil, fcerrors.Invalid("nu", nu, "number of simulations must be finite, use the gaussian likelihood instead")
	}
	g, err := NewGaussFamily(d)
	if err != nil {
		return nil, err
	}
	return &StudentT{GaussFamily: g, nu: nu}, nil
}

// Nu returns the number of simulations.
func (l *StudentT) Nu() float64 { return l.nu }

// ComputeLogLike returns the Student-t log-likelihood for the prediction.
func (l *StudentT) ComputeLogLike(p Predictions) (float64, error) {
	chi2, err := l.ComputeChisq(p)
	if err != nil {
		return 0, err
	}
	return StudentTLogLike(chi2, l.nu), nil
}

// StudentTLogLike maps chi-square to -nu/2 * ln(1 + chi2/(nu-1)).
func StudentTLogLike(chi2, nu float64) float64 {
	return -0.5 * nu * math.Log1p(chi2/(nu-1))
}
