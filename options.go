package formbind

import (
	"github.com/rs/zerolog"
)

// Host is the view owning a Model. The model asks it to re-render only when
// the error state changes; raw data changes never force a render.
type Host interface {
	RequestUpdate()
}

// HostFunc adapts a plain function to the Host interface.
type HostFunc func()

func (f HostFunc) RequestUpdate() { f() }

// Option configures a Model.
type Option func(*Model)

// WithHost sets the view notified when error display must refresh.
func WithHost(h Host) Option { return func(m *Model) { m.host = h } }

// WithLogger sets the logger used by the model and its controllers.
func WithLogger(l zerolog.Logger) Option { return func(m *Model) { m.logger = l } }

// WithRegistry sets the registry used by binders created for the model.
func WithRegistry(r *Registry) Option { return func(m *Model) { m.registry = r } }

// FieldOptions configures one bound field. The validator is chosen in order:
// Validate, then Pattern (or the element's pattern attribute), then
// AlwaysValid.
type FieldOptions struct {
	Validate Validator
	// Pattern must match the whole value.
	Pattern string
	// ErrorMessage is the error leaf of a failed Pattern match.
	ErrorMessage string
}
