package cosmology

import "github.com/am610/firecrown/pkg/fcerrors"

// Float reads a required float64 from values. context names the consumer in
// MissingParameterError messages.
func Float(values Values, key, context string) (float64, error) {
	raw, ok := present(values, key)
	if !ok {
		return 0, fcerrors.Missing(key, context)
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, &fcerrors.ConstructionTypeError{Field: key, Want: "float", Got: raw}
	}
	return v, nil
}

// OptionalFloat reads a float64 if the key is present. A present value of the
// wrong type is still an error.
func OptionalFloat(values Values, key string) (float64, bool, error) {
	raw, ok := present(values, key)
	if !ok {
		return 0, false, nil
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, false, &fcerrors.ConstructionTypeError{Field: key, Want: "float", Got: raw}
	}
	return v, true, nil
}

// String reads a required string from values.
func String(values Values, key, context string) (string, error) {
	raw, ok := present(values, key)
	if !ok {
		return "", fcerrors.Missing(key, context)
	}
	v, ok := raw.(string)
	if !ok {
		return "", &fcerrors.ConstructionTypeError{Field: key, Want: "string", Got: raw}
	}
	return v, nil
}

// Has reports whether key is present with a non-nil value.
func Has(values Values, key string) bool {
	_, ok := present(values, key)
	return ok
}

func present(values Values, key string) (any, bool) {
	raw, ok := values[key]
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// reader accumulates the first error across a sequence of reads so
// constructors can read every field before checking.
type reader struct {
	values  Values
	context string
	err     error
}

func (r *reader) float(key string) float64 {
	if r.err != nil {
		return 0
	}
	v, err := Float(r.values, key, r.context)
	r.err = err
	return v
}

func (r *reader) optionalFloat(key string) *float64 {
	if r.err != nil {
		return nil
	}
	v, ok, err := OptionalFloat(r.values, key)
	if err != nil {
		r.err = err
		return nil
	}
	if !ok {
		return nil
	}
	return &v
}

func (r *reader) string(key string) string {
	if r.err != nil {
		return ""
	}
	v, err := String(r.values, key, r.context)
	r.err = err
	return v
}
