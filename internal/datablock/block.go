// Package datablock implements the host result store: named sections of
// named values, the shape a sampler framework hands to every pipeline module.
package datablock

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/am610/firecrown/pkg/fcerrors"
)

// Well-known sections and keys.
const (
	SectionLikelihoods = "likelihoods"
	KeyTotalLike       = "total_like"
)

// LikeKey returns the likelihoods key of an analysis, "<analysis>_like".
func LikeKey(analysis string) string {
	return analysis + "_like"
}

// Block stores values by section and key.
type Block struct {
	sections map[string]map[string]any
}

// New creates an empty block.
func New() *Block {
	return &Block{sections: make(map[string]map[string]any)}
}

// Put stores value under section/key, replacing any previous value.
func (b *Block) Put(section, key string, value any) {
	s, ok := b.sections[section]
	if !ok {
		s = make(map[string]any)
		b.sections[section] = s
	}
	s[key] = value
}

// Has reports whether section/key holds a value.
func (b *Block) Has(section, key string) bool {
	_, ok := b.sections[section][key]
	return ok
}

// Get returns the raw value at section/key.
func (b *Block) Get(section, key string) (any, error) {
	v, ok := b.sections[section][key]
	if !ok {
		return nil, fcerrors.Missing(key, "section "+section)
	}
	return v, nil
}

// GetFloat returns the float64 at section/key.
func (b *Block) GetFloat(section, key string) (float64, error) {
	raw, err := b.Get(section, key)
	if err != nil {
		return 0, err
	}
	v, ok := raw.(float64)
	if !ok {
		return 0, &fcerrors.ConstructionTypeError{Field: section + "/" + key, Want: "float", Got: raw}
	}
	return v, nil
}

// GetFloats returns the []float64 at section/key.
func (b *Block) GetFloats(section, key string) ([]float64, error) {
	raw, err := b.Get(section, key)
	if err != nil {
		return nil, err
	}
	v, ok := raw.([]float64)
	if !ok {
		return nil, &fcerrors.ConstructionTypeError{Field: section + "/" + key, Want: "float array", Got: raw}
	}
	return v, nil
}

// Sections returns the section names in sorted order.
func (b *Block) Sections() []string {
	names := make([]string, 0, len(b.sections))
	for name := range b.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keys returns the keys of a section in sorted order.
func (b *Block) Keys(section string) []string {
	keys := make([]string, 0, len(b.sections[section]))
	for key := range b.sections[section] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Subset returns a block holding only the named sections. Values are shared
// with the receiver.
func (b *Block) Subset(sections ...string) *Block {
	out := New()
	for _, name := range sections {
		if s, ok := b.sections[name]; ok {
			out.sections[name] = s
		}
	}
	return out
}

// MarshalYAML renders the block as a mapping of sections.
func (b *Block) MarshalYAML() (any, error) {
	return b.sections, nil
}

// YAML renders the block with sorted sections and keys.
func (b *Block) YAML() (string, error) {
	out, err := yaml.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to render data block: %w", err)
	}
	return string(out), nil
}
