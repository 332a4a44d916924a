package formbind

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// FromStruct converts a typed value into form data (map[string]any, []any
// and JSON scalars) following its json tags.
func FromStruct(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("formbind: encode %T: %w", v, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("formbind: decode form data: %w", err)
	}
	return out, nil
}

// NewFromStruct creates a model whose data is FromStruct(v).
func NewFromStruct(v any, opts ...Option) (*Model, error) {
	data, err := FromStruct(v)
	if err != nil {
		return nil, err
	}
	return New(data, opts...), nil
}

// DecodeInto converts the data at path back into T.
func DecodeInto[T any](m *Model, path string) (T, error) {
	var out T
	b, err := json.Marshal(m.GetData(path))
	if err != nil {
		return out, fmt.Errorf("formbind: encode %q: %w", path, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("formbind: decode %q into %T: %w", path, out, err)
	}
	return out, nil
}
