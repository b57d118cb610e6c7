// Package sources builds the named tracers of an analysis and attaches their
// systematics.
//
// A source references systematics by name; the systematics themselves live
// in the analysis's systematics.Table and may be shared by several sources.
// After construction the references are validated in both directions: every
// name a source uses must exist, and every source systematic must be used.
package sources

import (
	"fmt"
	"sort"

	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/internal/oracle"
	"github.com/am610/firecrown/internal/systematics"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Decl is a source's configuration entry.
type Decl struct {
	Type        string   `yaml:"type" validate:"required"`
	Systematics []string `yaml:"systematics" validate:"dive,required"`
}

// TracerData is the metadata needed to build a source's tracer.
type TracerData struct {
	Z  []float64 `yaml:"z" validate:"required,min=2"`
	NZ []float64 `yaml:"nz" validate:"required,min=2"`
}

// Metadata holds tracer data keyed by source name.
type Metadata map[string]TracerData

// Source is one named tracer with its attached systematics.
type Source struct {
	name        string
	typ         string
	template    oracle.TracerSpec
	systematics []systematics.Systematic
}

// Name returns the source name.
func (s *Source) Name() string { return s.name }

// Type returns the declared source type.
func (s *Source) Type() string { return s.typ }

// Kind returns the tracer kind.
func (s *Source) Kind() oracle.TracerKind { return s.template.Kind }

// Systematics returns the attached systematics in attachment order.
func (s *Source) Systematics() []systematics.Systematic {
	return append([]systematics.Systematic(nil), s.systematics...)
}

// OutputSystematics returns the attached output systematics in attachment
// order.
func (s *Source) OutputSystematics() []systematics.OutputSystematic {
	var out []systematics.OutputSystematic
	for _, sys := range s.systematics {
		if o, ok := sys.(systematics.OutputSystematic); ok {
			out = append(out, o)
		}
	}
	return out
}

// TracerSpec returns a fresh copy of the template with every attached source
// systematic applied in attachment order. The template itself never changes.
func (s *Source) TracerSpec() (oracle.TracerSpec, error) {
	spec := s.template.Clone()
	for _, sys := range s.systematics {
		src, ok := sys.(systematics.SourceSystematic)
		if !ok {
			continue
		}
		if err := src.ApplySource(&spec); err != nil {
			return oracle.TracerSpec{}, fmt.Errorf("source %s: %w", s.name, err)
		}
	}
	if err := spec.Validate(); err != nil {
		return oracle.TracerSpec{}, fmt.Errorf("source %s: %w", s.name, err)
	}
	return spec, nil
}

// Build constructs every declared source in name order, attaches the named
// systematics from table and validates the references in both directions.
func Build(decls map[string]Decl, table *systematics.Table, metadata Metadata, registry *Registry) ([]*Source, error) {
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Source, 0, len(names))
	for _, name := range names {
		src, err := build(name, decls[name], table, metadata, registry)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}

	if err := ValidateReferences(decls, table); err != nil {
		return nil, err
	}
	return out, nil
}

func build(name string, decl Decl, table *systematics.Table, metadata Metadata, registry *Registry) (*Source, error) {
	builder, err := registry.Get(decl.Type)
	logger.TypeResolution("source", decl.Type, err)
	if err != nil {
		return nil, err
	}

	data, ok := metadata[name]
	if !ok {
		return nil, fcerrors.Missing(name, "source metadata")
	}
	template, err := builder(name, data)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", name, err)
	}

	src := &Source{name: name, typ: decl.Type, template: template}
	seen := make(map[string]bool, len(decl.Systematics))
	for _, ref := range decl.Systematics {
		if seen[ref] {
			return nil, fcerrors.Invalid(name+".systematics", ref, "systematic attached twice")
		}
		seen[ref] = true

		sys, ok := table.Get(ref)
		if !ok {
			// Reported by ValidateReferences.
			continue
		}
		if err := checkAttachable(src, sys); err != nil {
			return nil, err
		}
		src.systematics = append(src.systematics, sys)
	}
	return src, nil
}

func checkAttachable(src *Source, sys systematics.Systematic) error {
	switch sys.Kind() {
	case systematics.Cosmology:
		return fcerrors.Invalid(src.name+".systematics", sys.Name(),
			"cosmology systematics act on the whole calculation and cannot be attached to a source")
	case systematics.Source:
		if !sys.(systematics.SourceSystematic).AppliesTo(src.Kind()) {
			return fcerrors.Invalid(src.name+".systematics", sys.Name(),
				"systematic does not apply to %s tracers", src.Kind())
		}
	}
	return nil
}

// ValidateReferences checks both directions of the source/systematic
// reference graph: every referenced name exists in table, and every source
// systematic in table is referenced by at least one source.
func ValidateReferences(decls map[string]Decl, table *systematics.Table) error {
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	referenced := make(map[string]bool)
	for _, name := range names {
		for _, ref := range decls[name].Systematics {
			if _, ok := table.Get(ref); !ok {
				return &fcerrors.UnresolvedSystematicError{Systematic: ref, Source: name}
			}
			referenced[ref] = true
		}
	}

	for _, sys := range table.Source() {
		if !referenced[sys.Name()] {
			return &fcerrors.UnusedSystematicError{Systematic: sys.Name()}
		}
	}
	return nil
}
