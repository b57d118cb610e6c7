package systematics

import (
	"sort"

	"github.com/am610/firecrown/pkg/cosmology"
)

// Table is an analysis's set of systematics, indexed by name and partitioned
// by kind.
type Table struct {
	names     []string
	byName    map[string]Systematic
	cosmology []CosmologySystematic
	source    []SourceSystematic
	output    []OutputSystematic
}

// BuildTable instantiates every declared systematic in name order and
// partitions the instances by their Kind tag.
func BuildTable(decls map[string]Info, registry *Registry) (*Table, error) {
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &Table{
		names:  names,
		byName: make(map[string]Systematic, len(names)),
	}
	for _, name := range names {
		sys, err := registry.Build(name, decls[name])
		if err != nil {
			return nil, err
		}
		t.byName[name] = sys

		// Build has already checked the capability matches the tag.
		switch sys.Kind() {
		case Cosmology:
			t.cosmology = append(t.cosmology, sys.(CosmologySystematic))
		case Source:
			t.source = append(t.source, sys.(SourceSystematic))
		case Output:
			t.output = append(t.output, sys.(OutputSystematic))
		}
	}
	return t, nil
}

// Get returns the named systematic.
func (t *Table) Get(name string) (Systematic, bool) {
	sys, ok := t.byName[name]
	return sys, ok
}

// Names returns every systematic name in table order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of systematics.
func (t *Table) Len() int { return len(t.names) }

// Cosmology returns the cosmology bucket in name order.
func (t *Table) Cosmology() []CosmologySystematic {
	return append([]CosmologySystematic(nil), t.cosmology...)
}

// Source returns the source bucket in name order.
func (t *Table) Source() []SourceSystematic {
	return append([]SourceSystematic(nil), t.source...)
}

// Output returns the output bucket in name order.
func (t *Table) Output() []OutputSystematic {
	return append([]OutputSystematic(nil), t.output...)
}

// Parameters returns every nuisance key the table consumes, sorted.
func (t *Table) Parameters() []string {
	var keys []string
	for _, name := range t.names {
		keys = append(keys, t.byName[name].Parameters()...)
	}
	sort.Strings(keys)
	return keys
}

// Update moves every systematic to a new parameter point. All nuisance keys
// are checked before any systematic changes, so a failed update leaves the
// whole table at the previous point.
func (t *Table) Update(values cosmology.Values) error {
	for _, name := range t.names {
		for _, key := range t.byName[name].Parameters() {
			if _, err := cosmology.Float(values, key, "systematic "+name); err != nil {
				return err
			}
		}
	}
	for _, name := range t.names {
		if err := t.byName[name].Update(values); err != nil {
			return err
		}
	}
	return nil
}
