package formbind

// Binder is the entry point a rendering layer calls once per rendered field
// on every render pass. It keeps one controller per element, so repeated
// passes rebind idempotently.
type Binder struct {
	model    *Model
	registry *Registry
	fields   map[Element]*FieldController
}

// NewBinder creates a binder for m. A nil r uses the model's registry.
func NewBinder(m *Model, r *Registry) *Binder {
	if r == nil {
		r = m.registry
	}
	return &Binder{model: m, registry: r, fields: make(map[Element]*FieldController)}
}

// Bind binds el to path, reusing the element's controller from earlier
// passes. An unresolvable element yields a *BindError and is skipped.
func (b *Binder) Bind(el Element, path string, opts FieldOptions) (*FieldController, error) {
	c, ok := b.fields[el]
	if !ok || c.State() == Disposed {
		c = NewFieldController(b.model, b.registry)
	}
	if err := c.Bind(el, path, opts); err != nil {
		return nil, err
	}
	b.fields[el] = c
	return c, nil
}

// Controller returns the controller bound to el.
func (b *Binder) Controller(el Element) (*FieldController, bool) {
	c, ok := b.fields[el]
	return c, ok
}

// Len is the number of bound elements.
func (b *Binder) Len() int { return len(b.fields) }

// Attach reconnects the controller of el after Detach.
func (b *Binder) Attach(el Element) error {
	c, ok := b.fields[el]
	if !ok {
		return ErrNotBound
	}
	return c.Attach()
}

// Detach releases the subscriptions of el's controller.
func (b *Binder) Detach(el Element) {
	if c, ok := b.fields[el]; ok {
		c.Detach()
	}
}

// Remove disposes el's controller and forgets it.
func (b *Binder) Remove(el Element) {
	if c, ok := b.fields[el]; ok {
		c.Dispose()
		delete(b.fields, el)
	}
}

// Dispose disposes every controller.
func (b *Binder) Dispose() {
	for el, c := range b.fields {
		c.Dispose()
		delete(b.fields, el)
	}
}
