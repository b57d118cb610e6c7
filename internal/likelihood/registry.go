package likelihood

import (
	"fmt"
	"sort"
	"sync"

	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Built-in likelihood type strings.
const (
	TypeGaussian = "gaussian"
	TypeStudentT = "student_t"
)

// Settings is a likelihood's configuration record: its declared "type" plus
// variant settings.
type Settings map[string]any

// Type returns the declared type string.
func (s Settings) Type() (string, error) {
	raw, ok := s["type"]
	if !ok || raw == nil {
		return "", fcerrors.Missing("type", "likelihood")
	}
	typ, ok := raw.(string)
	if !ok {
		return "", &fcerrors.ConstructionTypeError{Field: "likelihood.type", Want: "string", Got: raw}
	}
	return typ, nil
}

// Count reads a required count. Counts are naturally integers, so both int
// and float values are accepted.
func (s Settings) Count(key string) (float64, error) {
	raw, ok := s[key]
	if !ok || raw == nil {
		return 0, fcerrors.Missing(key, "likelihood")
	}
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, &fcerrors.ConstructionTypeError{Field: "likelihood." + key, Want: "number", Got: raw}
	}
}

// Factory builds a likelihood from its settings and data.
type Factory func(settings Settings, data Data) (Likelihood, error)

// Registry maps declared likelihood types to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty likelihood registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under typ.
func (r *Registry) Register(typ string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if typ == "" {
		return fmt.Errorf("likelihood type cannot be empty")
	}
	if _, exists := r.factories[typ]; exists {
		return fmt.Errorf("likelihood %s already registered", typ)
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
		return nil, &fcerrors.UnknownTypeError{Category: "likelihood", Type: typ}
	}
	return factory, nil
}

// Types returns the registered likelihood types in sorted order.
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

// Build resolves the declared type and constructs the likelihood. Resolution
// failures are logged with the declared type before they are returned.
func (r *Registry) Build(settings Settings, data Data) (Likelihood, error) {
	typ, err := settings.Type()
	if err != nil {
		return nil, err
	}
	factory, err := r.Get(typ)
	logger.TypeResolution("likelihood", typ, err)
	if err != nil {
		return nil, err
	}
	return factory(settings, data)
}

// GlobalRegistry holds the built-in likelihoods.
var GlobalRegistry = NewRegistry()

// GetGlobalRegistry returns the process-wide likelihood registry.
func GetGlobalRegistry() *Registry {
	return GlobalRegistry
}

func init() {
	factories := map[string]Factory{
		TypeGaussian: func(_ Settings, data Data) (Likelihood, error) {
			return NewGaussian(data)
		},
		TypeStudentT: func(settings Settings, data Data) (Likelihood, error) {
			nu, err := settings.Count("nu")
			if err != nil {
				return nil, err
			}
			return NewStudentT(data, nu)
		},
	}
	for typ, factory := range factories {
		if err := GlobalRegistry.Register(typ, factory); err != nil {
			panic(fmt.Sprintf("failed to register %s likelihood: %v", typ, err))
		}
	}
}
