package mapping

import "fmt"

// RedshiftToScaleFactor converts a redshift grid and a power spectrum whose
// rows are ordered by redshift into the equivalent scale-factor grid and
// spectrum ordered by increasing scale factor. The inputs are not modified.
func RedshiftToScaleFactor(z []float64, pk [][]float64) ([]float64, [][]float64, error) {
	if len(pk) != len(z) {
		return nil, nil, fmt.Errorf("power spectrum has %d rows, redshift grid has %d", len(pk), len(z))
	}

	n := len(z)
	scale := make([]float64, n)
	pkOut := make([][]float64, n)
	for i := range z {
		j := n - 1 - i
		scale[j] = 1.0 / (1.0 + z[i])
		row := make([]float64, len(pk[i]))
		copy(row, pk[i])
		pkOut[j] = row
	}
	return scale, pkOut, nil
}
