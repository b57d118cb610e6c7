// Package mapping translates cosmological parameters between the reference
// parameterization and the conventions of individual cosmology codes.
//
// Every framework provides a pure From/To pair. Frameworks register
// themselves with the global registry at process start, so callers resolve a
// convention by name instead of importing it.
package mapping

import (
	"fmt"
	"sort"
	"sync"

	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Framework converts one code's parameter dictionary to and from the
// reference record.
type Framework interface {
	// Name returns the registry key, e.g. "cosmosis_camb".
	Name() string
	// From builds a reference record from the framework's raw dictionary.
	From(raw cosmology.Values) (*cosmology.Parameters, error)
	// To renders a record in the framework's convention.
	To(p *cosmology.Parameters) (cosmology.Values, error)
}

// Registry manages framework registration and lookup.
type Registry struct {
	mu         sync.RWMutex
	frameworks map[string]Framework
}

// NewRegistry creates an empty framework registry.
func NewRegistry() *Registry {
	return &Registry{
		frameworks: make(map[string]Framework),
	}
}

// Register adds a framework. Returns an error if the name is empty or taken.
func (r *Registry) Register(fw Framework) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fw.Name() == "" {
		return fmt.Errorf("framework name cannot be empty")
	}
	if _, exists := r.frameworks[fw.Name()]; exists {
		return fmt.Errorf("framework %s already registered", fw.Name())
	}
	r.frameworks[fw.Name()] = fw
	return nil
}

// Get returns the framework registered under name.
func (r *Registry) Get(name string) (Framework, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fw, exists := r.frameworks[name]
	if !exists {
		return nil, &fcerrors.UnknownTypeError{Category: "framework", Type: name}
	}
	return fw, nil
}

// Names returns the registered framework names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.frameworks))
	for name := range r.frameworks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GlobalRegistry holds every built-in framework.
var GlobalRegistry = NewRegistry()

// GetGlobalRegistry returns the process-wide framework registry.
func GetGlobalRegistry() *Registry {
	return GlobalRegistry
}

// Convert maps raw from one framework's convention into another's.
func (r *Registry) Convert(from, to string, raw cosmology.Values) (cosmology.Values, error) {
	src, err := r.Get(from)
	if err != nil {
		return nil, err
	}
	dst, err := r.Get(to)
	if err != nil {
		return nil, err
	}
	p, err := src.From(raw)
	if err != nil {
		return nil, fmt.Errorf("read %s parameters: %w", from, err)
	}
	out, err := dst.To(p)
	if err != nil {
		return nil, fmt.Errorf("write %s parameters: %w", to, err)
	}
	return out, nil
}

func mustRegister(fw Framework) {
	if err := GlobalRegistry.Register(fw); err != nil {
		panic(fmt.Sprintf("failed to register %s framework: %v", fw.Name(), err))
	}
}

func init() {
	mustRegister(CCL{})
	mustRegister(CosmoSISCAMB{})
	mustRegister(CAMB{})
	mustRegister(CLASS{})
	mustRegister(Cobaya{})
}
