// Package formdef loads declarative form definitions: the initial data of a
// form and the rules of its fields. Definitions are written in YAML, TOML or
// JSON and turn into a ready Model plus per-field binding options.
//
//	name: contact
//	data:
//	  name: ""
//	  zip: ""
//	fields:
//	  - path: name
//	    required: true
//	  - path: zip
//	    pattern: '\d{5}'
//	    error_message: Zip-code should be 5 letters long
package formdef

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/formbind"
	"github.com/reoring/formbind/deep"
	"github.com/reoring/formbind/rules"
)

// Field declares the rules of one form path. Zero values mean "no rule".
type Field struct {
	Path         string `yaml:"path" toml:"path" json:"path"`
	Required     bool   `yaml:"required,omitempty" toml:"required" json:"required,omitempty"`
	Pattern      string `yaml:"pattern,omitempty" toml:"pattern" json:"pattern,omitempty"`
	ErrorMessage string `yaml:"error_message,omitempty" toml:"error_message" json:"errorMessage,omitempty"`
	MinLength    int    `yaml:"min_length,omitempty" toml:"min_length" json:"minLength,omitempty"`
	MaxLength    int    `yaml:"max_length,omitempty" toml:"max_length" json:"maxLength,omitempty"`
}

// Definition is a whole form.
type Definition struct {
	Name   string         `yaml:"name" toml:"name" json:"name"`
	Data   map[string]any `yaml:"data" toml:"data" json:"data"`
	Fields []Field        `yaml:"fields" toml:"fields" json:"fields"`
}

// LoadFile reads a definition, choosing the format from the file extension
// (.yaml/.yml, .toml or .json).
func LoadFile(path string) (*Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form definition %s: %w", path, err)
	}
	var def *Definition
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		def, err = ParseYAML(b)
	case ".toml":
		def, err = ParseTOML(b)
	case ".json":
		def, err = ParseJSON(b)
	default:
		return nil, fmt.Errorf("form definition %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}

// ParseYAML parses and validates a YAML definition.
func ParseYAML(b []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(b, &def); err != nil {
		return nil, fmt.Errorf("failed to parse form definition YAML: %w", err)
	}
	return finish(&def)
}

// ParseTOML parses and validates a TOML definition; fields are an array of
// tables ([[fields]]).
func ParseTOML(b []byte) (*Definition, error) {
	var def Definition
	if _, err := toml.Decode(string(b), &def); err != nil {
		return nil, fmt.Errorf("failed to parse form definition TOML: %w", err)
	}
	return finish(&def)
}

// ParseJSON parses and validates a JSON definition.
func ParseJSON(b []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(b, &def); err != nil {
		return nil, fmt.Errorf("failed to parse form definition JSON: %w", err)
	}
	return finish(&def)
}

func finish(def *Definition) (*Definition, error) {
	if def.Data == nil {
		def.Data = map[string]any{}
	}
	def.Data = normalize(def.Data).(map[string]any)
	for i := range def.Fields {
		def.Fields[i].Path = strings.TrimSpace(def.Fields[i].Path)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// normalize converts decoder output into form data: numbers become float64
// and every container becomes map[string]any or []any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = normalize(x)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[fmt.Sprint(k)] = normalize(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = normalize(x)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = normalize(x)
		}
		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}

// Validate checks that every field has a unique path resolving in Data, that
// patterns compile and that length bounds are consistent.
func (d *Definition) Validate() error {
	var iss formbind.Issues
	seen := make(map[string]bool, len(d.Fields))
	for i, f := range d.Fields {
		at := deep.Root().Field("fields").Index(i)
		switch {
		case f.Path == "":
			iss = append(iss, formbind.NewIssue(at, formbind.CodeRequired, "field path is required", nil))
			continue
		case seen[f.Path]:
			iss = append(iss, formbind.NewIssue(at, formbind.CodeInvalid, fmt.Sprintf("duplicate field path %q", f.Path), map[string]any{"path": f.Path}))
			continue
		}
		seen[f.Path] = true
		if _, ok := deep.Lookup(d.Data, f.Path); !ok {
			iss = append(iss, formbind.NewIssue(at, formbind.CodeInvalid, fmt.Sprintf("path %q does not resolve in data", f.Path), map[string]any{"path": f.Path}))
		}
		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				it := formbind.NewIssue(at.Field("pattern"), formbind.CodeBadPattern, err.Error(), map[string]any{"pattern": f.Pattern})
				it.Cause = err
				iss = append(iss, it)
			}
		}
		if f.MinLength < 0 || f.MaxLength < 0 || (f.MaxLength > 0 && f.MinLength > f.MaxLength) {
			iss = append(iss, formbind.NewIssue(at, formbind.CodeInvalid, "inconsistent length bounds",
				map[string]any{"min": f.MinLength, "max": f.MaxLength}))
		}
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// Validator composes the field's rules; it is nil when the field has none.
// ErrorMessage replaces the message of any failure.
func (f Field) Validator() formbind.Validator {
	var vs []formbind.Validator
	if f.Required {
		vs = append(vs, rules.Required())
	}
	if f.MinLength > 0 {
		vs = append(vs, rules.MinLength(f.MinLength))
	}
	if f.MaxLength > 0 {
		vs = append(vs, rules.MaxLength(f.MaxLength))
	}
	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err == nil {
			vs = append(vs, rules.Pattern(f.Pattern))
		}
	}
	if len(vs) == 0 {
		return nil
	}
	v := rules.All(vs...)
	if f.ErrorMessage != "" {
		v = rules.Message(v, f.ErrorMessage)
	}
	return v
}

// Options returns the binding options of the field.
func (f Field) Options() formbind.FieldOptions {
	return formbind.FieldOptions{Validate: f.Validator()}
}

// Field returns the field declared for path.
func (d *Definition) Field(path string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Path == path {
			return f, true
		}
	}
	return Field{}, false
}

// Options returns the binding options for path; undeclared paths get none.
func (d *Definition) Options(path string) formbind.FieldOptions {
	f, _ := d.Field(path)
	return f.Options()
}

// NewModel creates a model over a copy of Data with the validators of every
// declared field registered, so IsDataValid and ValidateAllFields work before
// any element is bound.
func (d *Definition) NewModel(opts ...formbind.Option) *formbind.Model {
	m := formbind.New(normalize(d.Data), opts...)
	for _, f := range d.Fields {
		if v := f.Validator(); v != nil {
			m.SetValidation(f.Path, v)
		}
	}
	return m
}
