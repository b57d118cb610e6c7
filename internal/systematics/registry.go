package systematics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Info is a systematic's configuration record: its declared "type" plus any
// type-specific settings.
type Info map[string]any

// Type returns the declared type string.
func (i Info) Type(name string) (string, error) {
	raw, ok := i["type"]
	if !ok || raw == nil {
		return "", fcerrors.Missing("type", "systematic "+name)
	}
	typ, ok := raw.(string)
	if !ok {
		return "", &fcerrors.ConstructionTypeError{Field: name + ".type", Want: "string", Got: raw}
	}
	return typ, nil
}

// Float reads an optional float setting.
func (i Info) Float(name, key string, def float64) (float64, error) {
	raw, ok := i[key]
	if !ok || raw == nil {
		return def, nil
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, &fcerrors.ConstructionTypeError{Field: name + "." + key, Want: "float", Got: raw}
	}
	return v, nil
}

// Factory constructs a systematic instance from its configuration.
type Factory func(name string, info Info) (Systematic, error)

// Registry maps declared type strings to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty systematic registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under typ. Returns an error if the type is empty,
// already registered or the factory is nil.
func (r *Registry) Register(typ string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if typ == "" {
		return fmt.Errorf("systematic type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("systematic %s has no factory", typ)
	}
	if _, exists := r.factories[typ]; exists {
		return fmt.Errorf("systematic %s already registered", typ)
	}
	r.factories[typ] = factory
	return nil
}

// Get returns the factory for typ.
func (r *Registry) Get(typ string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[typ]
	if !exists {
		return nil, &fcerrors.UnknownTypeError{Category: "systematic", Type: typ}
	}
	return factory, nil
}

// Types returns the registered type strings in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for typ := range r.factories {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Build resolves info's declared type and constructs the named systematic.
// Resolution failures are logged with the declared type before they are
// returned.
func (r *Registry) Build(name string, info Info) (Systematic, error) {
	typ, err := info.Type(name)
	if err != nil {
		return nil, err
	}

	factory, err := r.Get(typ)
	logger.TypeResolution("systematic", typ, err)
	if err != nil {
		return nil, err
	}

	sys, err := factory(name, info)
	if err != nil {
		return nil, fmt.Errorf("systematic %s: %w", name, err)
	}
	if err := checkCapability(sys); err != nil {
		return nil, err
	}
	return sys, nil
}

// checkCapability verifies an instance implements the interface its Kind tag
// promises.
func checkCapability(sys Systematic) error {
	var ok bool
	switch sys.Kind() {
	case Cosmology:
		_, ok = sys.(CosmologySystematic)
	case Source:
		_, ok = sys.(SourceSystematic)
	case Output:
		_, ok = sys.(OutputSystematic)
	}
	if !ok {
		return &fcerrors.ConstructionTypeError{
			Field: sys.Name(),
			Want:  sys.Kind().String() + " systematic",
			Got:   sys,
		}
	}
	return nil
}

// GlobalRegistry holds every built-in systematic type.
var GlobalRegistry = NewRegistry()

// GetGlobalRegistry returns the process-wide systematic registry.
func GetGlobalRegistry() *Registry {
	return GlobalRegistry
}

func mustRegister(typ string, factory Factory) {
	if err := GlobalRegistry.Register(typ, factory); err != nil {
		panic(fmt.Sprintf("failed to register %s systematic: %v", typ, err))
	}
}

func init() {
	mustRegister(TypePhotoZShift, NewPhotoZShift)
	mustRegister(TypeLinearBias, NewLinearBias)
	mustRegister(TypeLinearAlignment, NewLinearAlignment)
	mustRegister(TypeMultiplicativeShearBias, NewMultiplicativeShearBias)
	mustRegister(TypeConstantCalibration, NewConstantCalibration)
	mustRegister(TypeBaryonicFeedback, NewBaryonicFeedback)
}
