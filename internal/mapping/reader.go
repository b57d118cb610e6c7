package mapping

import (
	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// rawReader reads typed values out of a framework dictionary, keeping the
// first failure so a mapper can read every field before checking.
type rawReader struct {
	raw     cosmology.Values
	context string
	err     error
}

func newReader(raw cosmology.Values, context string) *rawReader {
	return &rawReader{raw: raw, context: context}
}

func (r *rawReader) float(key string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := cosmology.Float(r.raw, key, r.context)
	r.err = err
	return v
}

// floatOr reads an optional float. Only documented defaults may use it.
func (r *rawReader) floatOr(key string, def float64) float64 {
	if r.err != nil {
		return 0
	}
	v, ok, err := cosmology.OptionalFloat(r.raw, key)
	if err != nil {
		r.err = err
		return 0
	}
	if !ok {
		return def
	}
	return v
}

func (r *rawReader) string(key string) string {
	if r.err != nil {
		return ""
	}
	v, err := cosmology.String(r.raw, key, r.context)
	r.err = err
	return v
}

// int reads a count. Counts are the one place an integer is required.
func (r *rawReader) int(key string) int {
	if r.err != nil {
		return 0
	}
	raw, ok := r.raw[key]
	if !ok || raw == nil {
		r.err = fcerrors.Missing(key, r.context)
		return 0
	}
	v, ok := raw.(int)
	if !ok {
		r.err = &fcerrors.ConstructionTypeError{Field: key, Want: "int", Got: raw}
		return 0
	}
	return v
}

func (r *rawReader) has(key string) bool {
	return cosmology.Has(r.raw, key)
}
