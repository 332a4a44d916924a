package formbind

import (
	"maps"
	"slices"
	"strings"
)

// EventBinding names an element event and how to read the field value from it.
type EventBinding struct {
	Name    string
	Extract func(ev Event) (any, error)
}

// Descriptor tells the engine how to read and write one kind of element.
type Descriptor struct {
	Events   []EventBinding
	SetValue func(el Element, v any) error
}

func (d Descriptor) usable() bool {
	if len(d.Events) == 0 || d.SetValue == nil {
		return false
	}
	for _, eb := range d.Events {
		if eb.Name == "" || eb.Extract == nil {
			return false
		}
	}
	return true
}

// Describe builds the descriptor of a self-describing element.
func Describe(sd SelfDescribing) Descriptor {
	return Descriptor{
		Events: sd.FormBindingEvents(),
		SetValue: func(_ Element, v any) error {
			return sd.SetFormValue(v)
		},
	}
}

// Registry maps element kinds to descriptors. Kinds are case-insensitive.
// A Registry is built at setup time by the composing application; the zero
// value is not usable, use NewRegistry.
type Registry struct {
	byKind map[string]Descriptor
}

// NewRegistry returns a registry holding the entries of every given registry,
// later ones winning for the same kind.
func NewRegistry(from ...*Registry) *Registry {
	r := &Registry{byKind: make(map[string]Descriptor)}
	return r.Merge(from...)
}

// Register inserts or overwrites the descriptor for kind.
func (r *Registry) Register(kind string, d Descriptor) *Registry {
	r.byKind[normalizeKind(kind)] = d
	return r
}

// Merge copies the entries of others into r; later registrations win.
func (r *Registry) Merge(others ...*Registry) *Registry {
	for _, o := range others {
		if o == nil {
			continue
		}
		maps.Copy(r.byKind, o.byKind)
	}
	return r
}

// Lookup returns the registered descriptor for kind.
func (r *Registry) Lookup(kind string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	d, ok := r.byKind[normalizeKind(kind)]
	return d, ok
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.byKind))
}

// Resolve finds the descriptor for el. A self-describing element wins over
// the registry. A nil registry resolves self-describing elements only.
func (r *Registry) Resolve(el Element) (Descriptor, bool) {
	if el == nil {
		return Descriptor{}, false
	}
	if sd, ok := el.(SelfDescribing); ok {
		d := Describe(sd)
		return d, d.usable()
	}
	d, ok := r.Lookup(el.Kind())
	if !ok || !d.usable() {
		return Descriptor{}, false
	}
	return d, true
}

func normalizeKind(kind string) string { return strings.ToUpper(strings.TrimSpace(kind)) }
