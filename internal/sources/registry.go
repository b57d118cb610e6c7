package sources

import (
	"fmt"
	"sort"
	"sync"

	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Built-in source type strings.
const (
	TypeNumberCounts = "lss"
	TypeWeakLensing  = "wl"
)

// Builder turns a source's tracer data into the template spec that source
// systematics edit for every parameter point.
type Builder func(name string, data TracerData) (oracle.TracerSpec, error)

// Registry maps declared source types to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty source-type registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
	}
}

// Register adds a builder under typ.
func (r *Registry) Register(typ string, builder Builder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if typ == "" {
		return fmt.Errorf("source type cannot be empty")
	}
	if builder == nil {
		return fmt.Errorf("source type %s has no builder", typ)
	}
	if _, exists := r.builders[typ]; exists {
		return fmt.Errorf("source type %s already registered", typ)
	}
	r.builders[typ] = builder
	return nil
}

// Get returns the builder for typ.
func (r *Registry) Get(typ string) (Builder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	builder, exists := r.builders[typ]
	if !exists {
		return nil, &fcerrors.UnknownTypeError{Category: "source", Type: typ}
	}
	return builder, nil
}

// Types returns the registered source types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.builders))
	for typ := range r.builders {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// GlobalRegistry holds the built-in source types.
var GlobalRegistry = NewRegistry()

// GetGlobalRegistry returns the process-wide source-type registry.
func GetGlobalRegistry() *Registry {
	return GlobalRegistry
}

// NumberCountsBuilder builds a galaxy clustering tracer with unit bias until
// a bias systematic overrides it.
func NumberCountsBuilder(name string, data TracerData) (oracle.TracerSpec, error) {
	spec := oracle.TracerSpec{
		Name: name,
		Kind: oracle.NumberCounts,
		Z:    append([]float64(nil), data.Z...),
		NZ:   append([]float64(nil), data.NZ...),
		Bias: make([]float64, len(data.Z)),
	}
	for i := range spec.Bias {
		spec.Bias[i] = 1
	}
	return spec, spec.Validate()
}

// WeakLensingBuilder builds a cosmic shear tracer without intrinsic
// alignments.
func WeakLensingBuilder(name string, data TracerData) (oracle.TracerSpec, error) {
	spec := oracle.TracerSpec{
		Name: name,
		Kind: oracle.WeakLensing,
		Z:    append([]float64(nil), data.Z...),
		NZ:   append([]float64(nil), data.NZ...),
	}
	return spec, spec.Validate()
}

func init() {
	for typ, builder := range map[string]Builder{
		TypeNumberCounts: NumberCountsBuilder,
		TypeWeakLensing:  WeakLensingBuilder,
	} {
		if err := GlobalRegistry.Register(typ, builder); err != nil {
			panic(fmt.Sprintf("failed to register %s source type: %v", typ, err))
		}
	}
}
