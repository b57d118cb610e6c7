// Package fcerrors defines the error taxonomy shared by the parameter mapping,
// systematics composition and likelihood layers.
//
// Every failure is deterministic given its input. Each typed error unwraps to
// one of the sentinel kinds below so callers can branch with errors.Is, and
// errors.As recovers the offending key, systematic or source name.
package fcerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds.
var (
	ErrMissingParameter     = errors.New("missing parameter")
	ErrAmbiguousAmplitude   = errors.New("ambiguous amplitude")
	ErrUnsupportedFeature   = errors.New("unsupported feature")
	ErrUnresolvedSystematic = errors.New("unresolved systematic")
	ErrUnusedSystematic     = errors.New("unused systematic")
	ErrConstructionType     = errors.New("construction type error")
	ErrInvalidValue         = errors.New("invalid value")
	ErrRedundantParameter   = errors.New("redundant parameter")
	ErrUnknownType          = errors.New("unknown type")
	ErrInvalidState         = errors.New("invalid state")
)

// MissingParameterError reports a required configuration or sampler key that was absent.
type MissingParameterError struct {
	Key     string
	Context string // where the key was expected, e.g. "cosmosis_camb"
}

func (e *MissingParameterError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %q", ErrMissingParameter, e.Key)
	}
	return fmt.Sprintf("%s: %q (required by %s)", ErrMissingParameter, e.Key, e.Context)
}

func (e *MissingParameterError) Unwrap() error { return ErrMissingParameter }

// AmbiguousAmplitudeError reports that both or neither of A_s and sigma8 were supplied.
type AmbiguousAmplitudeError struct {
	Both bool
	Keys []string // the amplitude keys that were present
}

func (e *AmbiguousAmplitudeError) Error() string {
	if e.Both {
		return fmt.Sprintf("%s: exactly one of A_s and sigma8 must be supplied, got %s",
			ErrAmbiguousAmplitude, strings.Join(e.Keys, " and "))
	}
	return fmt.Sprintf("%s: exactly one of A_s and sigma8 must be supplied, got neither", ErrAmbiguousAmplitude)
}

func (e *AmbiguousAmplitudeError) Unwrap() error { return ErrAmbiguousAmplitude }

// UnsupportedFeatureError reports a configuration that a downstream component cannot handle.
type UnsupportedFeatureError struct {
	Feature   string
	Component string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("%s: %s is not supported by %s", ErrUnsupportedFeature, e.Feature, e.Component)
}

func (e *UnsupportedFeatureError) Unwrap() error { return ErrUnsupportedFeature }

// UnresolvedSystematicError reports a source referencing a systematic that was never declared.
type UnresolvedSystematicError struct {
	Systematic string
	Source     string
}

func (e *UnresolvedSystematicError) Error() string {
	return fmt.Sprintf("%s: systematic %q was specified for source %q but not defined in the systematics section",
		ErrUnresolvedSystematic, e.Systematic, e.Source)
}

func (e *UnresolvedSystematicError) Unwrap() error { return ErrUnresolvedSystematic }

// UnusedSystematicError reports a declared source systematic that no source references.
type UnusedSystematicError struct {
	Systematic string
}

func (e *UnusedSystematicError) Error() string {
	return fmt.Sprintf("%s: systematic %q was declared but never used by any source", ErrUnusedSystematic, e.Systematic)
}

func (e *UnusedSystematicError) Unwrap() error { return ErrUnusedSystematic }

// ConstructionTypeError reports a value of the wrong Go type for a typed field.
type ConstructionTypeError struct {
	Field string
	Want  string
	Got   any
}

func (e *ConstructionTypeError) Error() string {
	return fmt.Sprintf("%s: %s value is required for %q, got %T", ErrConstructionType, e.Want, e.Field, e.Got)
}

func (e *ConstructionTypeError) Unwrap() error { return ErrConstructionType }

// InvalidValueError reports a correctly typed value outside its allowed domain.
type InvalidValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("%s for %q (%v): %s", ErrInvalidValue, e.Field, e.Value, e.Reason)
}

func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// RedundantParameterError reports two parameterizations of the same quantity supplied together.
type RedundantParameterError struct {
	Keys []string
}

func (e *RedundantParameterError) Error() string {
	return fmt.Sprintf("%s: %s describe the same quantity, pick one", ErrRedundantParameter, strings.Join(e.Keys, " and "))
}

func (e *RedundantParameterError) Unwrap() error { return ErrRedundantParameter }

// UnknownTypeError reports a declared type string with no registered constructor.
type UnknownTypeError struct {
	Category string // "systematic", "source", "likelihood", "analysis", "framework"
	Type     string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s: no %s registered for type %q", ErrUnknownType, e.Category, e.Type)
}

func (e *UnknownTypeError) Unwrap() error { return ErrUnknownType }

// InvalidStateError reports an operation attempted from the wrong lifecycle state.
type InvalidStateError struct {
	Operation string
	State     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: cannot %s while %s", ErrInvalidState, e.Operation, e.State)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// Missing is shorthand for a MissingParameterError.
func Missing(key, context string) error {
	return &MissingParameterError{Key: key, Context: context}
}

// Invalid is shorthand for an InvalidValueError with a formatted reason.
func Invalid(field string, value any, format string, args ...any) error {
	return &InvalidValueError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}
