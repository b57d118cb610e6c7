package theory

import (
	"fmt"

	"github.com/am610/firecrown/internal/datablock"
	"github.com/am610/firecrown/internal/systematics"
)

// Spectrum is the angular power spectrum of one source pair.
type Spectrum struct {
	Pair systematics.Pair
	Ells []float64
	Cl   []float64
}

// Key returns the result-block key, "cl_<first>_<second>".
func (s Spectrum) Key() string {
	return fmt.Sprintf("cl_%s_%s", s.Pair.First, s.Pair.Second)
}

// Results holds the predictions of one analysis for one parameter point, in
// pair order.
type Results struct {
	Analysis string
	Spectra  []Spectrum
}

// Section returns the result-block section, "<analysis>_theory".
func (r *Results) Section() string {
	return r.Analysis + "_theory"
}

// Vector flattens every spectrum into one prediction vector in pair order.
func (r *Results) Vector() []float64 {
	var out []float64
	for _, s := range r.Spectra {
		out = append(out, s.Cl...)
	}
	return out
}

// WriteTo serializes the results into the host block.
func (r *Results) WriteTo(block *datablock.Block) {
	section := r.Section()
	for i, s := range r.Spectra {
		if i == 0 {
			block.Put(section, "ell", append([]float64(nil), s.Ells...))
		}
		block.Put(section, s.Key(), append([]float64(nil), s.Cl...))
	}
}
