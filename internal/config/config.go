// Package config loads firecrown configuration documents.
//
// A document is YAML with three kinds of top-level keys: "parameters" (the
// sampler block for a single evaluation), "requires" (a semantic version
// constraint on firecrown itself) and one entry per analysis. Sections
// belonging to the host framework or the sampler ("cosmosis", "emcee") are
// ignored. Several documents may be layered with Merge before decoding.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/am610/firecrown/internal/likelihood"
	"github.com/am610/firecrown/internal/sources"
	"github.com/am610/firecrown/internal/systematics"
	"github.com/am610/firecrown/internal/theory"
	"github.com/am610/firecrown/internal/version"
	"github.com/am610/firecrown/pkg/cosmology"
	"github.com/am610/firecrown/pkg/fcerrors"
)

// Top-level keys with a fixed meaning.
const (
	KeyParameters = "parameters"
	KeyRequires   = "requires"
)

// ReservedSections belong to the host framework or sampler and never
// describe an analysis.
var ReservedSections = []string{"cosmosis", "emcee"}

// Analysis is one analysis entry.
type Analysis struct {
	Module      string                      `yaml:"module" validate:"required"`
	Sources     map[string]sources.Decl     `yaml:"sources" validate:"required,min=1,dive"`
	Systematics map[string]systematics.Info `yaml:"systematics"`
	Likelihood  likelihood.Settings         `yaml:"likelihood" validate:"required"`
	Pairs       [][]string                  `yaml:"pairs" validate:"omitempty,dive,len=2,dive,required"`
	Ells        []float64                   `yaml:"ells" validate:"required,min=1,dive,gt=0"`
	Data        *likelihood.Data            `yaml:"data"`
	Metadata    sources.Metadata            `yaml:"metadata" validate:"required,dive"`
}

// PairList converts the declared pairs.
func (a Analysis) PairList() []systematics.Pair {
	pairs := make([]systematics.Pair, 0, len(a.Pairs))
	for _, p := range a.Pairs {
		pairs = append(pairs, systematics.Pair{First: p[0], Second: p[1]})
	}
	return pairs
}

// TheoryConfig returns the calculator configuration of the analysis.
func (a Analysis) TheoryConfig() theory.Config {
	return theory.Config{
		Sources:     a.Sources,
		Systematics: a.Systematics,
		Pairs:       a.PairList(),
		Ells:        append([]float64(nil), a.Ells...),
	}
}

// Document is a decoded configuration.
type Document struct {
	Requires   string
	Parameters cosmology.Values
	Analyses   map[string]Analysis
}

// AnalysisNames returns the analysis names in sorted order.
func (d *Document) AnalysisNames() []string {
	names := make([]string, 0, len(d.Analyses))
	for name := range d.Analyses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads, merges and decodes one or more documents. Later files
// override earlier ones key by key.
func Load(paths ...string) (*Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no configuration file given")
	}

	var merged map[string]any
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
		}
		merged = Merge(merged, raw)
	}
	return Decode(merged)
}

// Parse decodes a single YAML document.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return Decode(raw)
}

// Decode builds a Document from a generic map, checks the version
// requirement and validates every analysis.
func Decode(raw map[string]any) (*Document, error) {
	doc := &Document{Analyses: make(map[string]Analysis)}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	v := newValidator()
	for _, key := range keys {
		value := raw[key]
		switch {
		case key == KeyRequires:
			s, ok := value.(string)
			if !ok {
				return nil, &fcerrors.ConstructionTypeError{Field: KeyRequires, Want: "string", Got: value}
			}
			doc.Requires = s
		case key == KeyParameters:
			params, ok := value.(map[string]any)
			if !ok {
				return nil, &fcerrors.ConstructionTypeError{Field: KeyParameters, Want: "mapping", Got: value}
			}
			doc.Parameters = cosmology.Values(params)
		case isReserved(key):
			continue
		default:
			a, err := decodeAnalysis(key, value)
			if err != nil {
				return nil, err
			}
			if err := validateAnalysis(v, key, a); err != nil {
				return nil, err
			}
			doc.Analyses[key] = a
		}
	}

	if err := version.CheckRequirement(doc.Requires); err != nil {
		return nil, err
	}
	if len(doc.Analyses) == 0 {
		return nil, fmt.Errorf("configuration declares no analysis")
	}
	return doc, nil
}

// decodeAnalysis round-trips a generic value through YAML into the typed
// struct so numeric arrays decode as float64. The free-form systematics and
// likelihood records are taken from the generic value directly: re-encoding
// would turn a float such as 1.0 into the integer 1.
func decodeAnalysis(name string, value any) (Analysis, error) {
	var a Analysis
	raw, ok := value.(map[string]any)
	if !ok {
		return a, &fcerrors.ConstructionTypeError{Field: name, Want: "mapping", Got: value}
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return a, fmt.Errorf("analysis %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("analysis %s: %w", name, err)
	}

	if settings, ok := raw["likelihood"].(map[string]any); ok {
		a.Likelihood = likelihood.Settings(clone(settings).(map[string]any))
	}
	if decls, ok := raw["systematics"].(map[string]any); ok {
		a.Systematics = make(map[string]systematics.Info, len(decls))
		for sys, decl := range decls {
			info, ok := decl.(map[string]any)
			if !ok {
				return a, &fcerrors.ConstructionTypeError{Field: name + ".systematics." + sys, Want: "mapping", Got: decl}
			}
			a.Systematics[sys] = systematics.Info(clone(info).(map[string]any))
		}
	}
	return a, nil
}

func isReserved(key string) bool {
	for _, r := range ReservedSections {
		if key == r {
			return true
		}
	}
	return false
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateAnalysis validates an Analysis using the provided validator.
func validateAnalysis(v *validator.Validate, name string, a Analysis) error {
	err := v.Struct(a)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := name + strings.TrimPrefix(fe.Namespace(), "Analysis")
		return fmt.Errorf("configuration validation failed: %w",
			fcerrors.Invalid(field, fe.Value(), "failed %q validation", fe.Tag()))
	}
	return fmt.Errorf("analysis %s: configuration validation failed: %w", name, err)
}
