// Package systematics models nuisance effects applied at fixed stages of the
// prediction pipeline.
//
// A Systematic carries a Kind tag set at construction. The tag says which
// capability interface the instance implements: CosmologySystematic edits the
// oracle's native parameters, SourceSystematic edits a tracer spec and
// OutputSystematic rescales a computed statistic. Instances are built from
// configuration through a registry keyed on the declared type string.
package systematics

import (
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Kind is the pipeline stage a systematic acts on.
type Kind int

const (
	// Cosmology - modifies the cosmology calculation
	Cosmology Kind = iota
	// Source - modifies a source's tracer
	Source
	// Output - modifies a computed statistic post hoc
	Output
)

// String returns a human-readable kind.
func (k Kind) String() string {
	switch k {
	case Cosmology:
		return "Cosmology"
	case Source:
		return "Source"
	case Output:
		return "Output"
	default:
		return "Unknown"
	}
}

// Systematic is the common surface of every nuisance effect.
type Systematic interface {
	Name() string
	Kind() Kind
	// Parameters lists the flat sampler keys Update consumes.
	Parameters() []string
	// Update absorbs the values for a new parameter point.
	Update(values cosmology.Values) error
}

// CosmologySystematic edits the native parameters before the oracle builds a
// cosmology.
type CosmologySystematic interface {
	Systematic
	ApplyCosmology(params *oracle.NativeParameters) error
}

// SourceSystematic edits a tracer spec before the tracer is built.
type SourceSystematic interface {
	Systematic
	// AppliesTo reports whether the effect is meaningful for a tracer kind.
	AppliesTo(kind oracle.TracerKind) bool
	ApplySource(spec *oracle.TracerSpec) error
}

// OutputSystematic rescales a computed angular power spectrum in place.
// side names the source that triggered the application, or is empty for
// systematics that apply to every pair.
type OutputSystematic interface {
	Systematic
	ApplyOutput(side string, pair Pair, cl []float64) error
}

// Pair identifies a two-point statistic by its source names.
type Pair struct {
	First  string
	Second string
}

// Contains reports whether the named source is on either side of the pair.
func (p Pair) Contains(name string) bool {
	return p.First == name || p.Second == name
}

// String returns "first-second".
func (p Pair) String() string {
	return p.First + "-" + p.Second
}

// base carries the identity shared by all built-in systematics.
type base struct {
	name string
	kind Kind
}

func (b base) Name() string { return b.name }
func (b base) Kind() Kind { return b.kind }

// nuisance is one sampled parameter owned by a systematic.
type nuisance struct {
	key   string
	value float64
	set   bool
}

func newNuisance(owner, suffix string) nuisance {
	return nuisance{key: owner + "_" + suffix}
}

func (n *nuisance) update(values cosmology.Values, owner string) error {
	v, err := cosmology.Float(values, n.key, "systematic "+owner)
	if err != nil {
		return err
	}
	n.value = v
	n.set = true
	return nil
}

func (n *nuisance) get(owner string) (float64, error) {
	if !n.set {
		return 0, &fcerrors.InvalidStateError{
			Operation: "apply systematic " + owner,
			State:     "waiting for parameter " + n.key,
		}
	}
	return n.value, nil
}
