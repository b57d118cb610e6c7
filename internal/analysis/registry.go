// Package analysis wires configured analyses into an evaluation pipeline.
//
// Each analysis entry in a configuration document names a module; the module
// is resolved through a registry, set up once from its configuration and then
// evaluated for every sampled parameter point.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/am610/firecrown/internal/config"
	"github.com/am610/firecrown/internal/consistency"
	"github.com/am610/firecrown/internal/datablock"
	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/internal/theory"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Analysis is one configured observable: theory plus likelihood.
type Analysis interface {
	// Name returns the analysis name from the configuration document.
	Name() string
	// Setup builds everything the analysis needs from its configuration.
	Setup(cfg config.Analysis) error
	// Evaluate computes the log-likelihood of point, writing intermediate
	// results into block.
	Evaluate(ctx context.Context, point *consistency.Point, block *datablock.Block) (float64, error)
}

// Factory creates an unconfigured analysis bound to an oracle. opts
// configure the analysis's theory calculator.
type Factory func(name string, orc oracle.Oracle, opts ...theory.Option) Analysis

// Registry maps module names to analysis factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty analysis registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under module.
func (r *Registry) Register(module string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if module == "" {
		return fmt.Errorf("analysis module cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("analysis %s has no factory", module)
	}
	if _, exists := r.factories[module]; exists {
		return fmt.Errorf("analysis %s already registered", module)
	}
	r.factories[module] = factory
	return nil
}

// Get returns the factory for module.
func (r *Registry) Get(module string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[module]
	if !exists {
		return nil, &fcerrors.UnknownTypeError{Category: "analysis", Type: module}
	}
	return factory, nil
}

// Modules returns the registered module names in sorted order.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	modules := make([]string, 0, len(r.factories))
	for module := range r.factories {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules
}

// Build resolves module and creates the named analysis. Resolution is logged
// with the declared module string.
func (r *Registry) Build(name, module string, orc oracle.Oracle, opts ...theory.Option) (Analysis, error) {
	factory, err := r.Get(module)
	logger.TypeResolution("analysis", module, err)
	if err != nil {
		return nil, err
	}
	return factory(name, orc, opts...), nil
}

// GlobalRegistry holds the built-in analysis modules.
var GlobalRegistry = NewRegistry()

// GetGlobalRegistry returns the process-wide analysis registry.
func GetGlobalRegistry() *Registry {
	return GlobalRegistry
}

func init() {
	if err := GlobalRegistry.Register(ModuleTwoPoint, NewTwoPoint); err != nil {
		panic(fmt.Sprintf("failed to register %s analysis: %v", ModuleTwoPoint, err))
	}
}
