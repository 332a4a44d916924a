package formbind

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reoring/formbind/deep"
)

// State is the lifecycle state of a FieldController.
type State int

const (
	Unbound  State = iota // created, never bound
	Bound                 // listening to its element and the model
	Detached              // element removed from the document; subscriptions released
	Disposed              // terminal
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Detached:
		return "detached"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// FieldController binds one element instance to one model path.
//
//	Unbound -> Bound -> (Detached -> Bound)* -> Disposed
//
// While bound, element events write into the model and program-driven
// changes to the same path are pushed back into the element. A controller
// never receives the echo of a change its own element fired.
type FieldController struct {
	id       string
	model    *Model
	registry *Registry
	logger   zerolog.Logger

	el         Element
	path       string
	opts       FieldOptions
	desc       Descriptor
	validator  Validator
	state      State
	defaultSet bool

	subscribed bool
	subs       []Unsubscribe
	unwatch    func()
}

// NewFieldController creates an unbound controller for m. Element kinds are
// resolved against r; a nil r falls back to the model's registry.
func NewFieldController(m *Model, r *Registry) *FieldController {
	if r == nil {
		r = m.registry
	}
	id := uuid.NewString()
	return &FieldController{
		id:        id,
		model:     m,
		registry:  r,
		logger:    m.logger.With().Str("field", id).Logger(),
		validator: AlwaysValid,
	}
}

// BindField creates a controller and binds el to path in one step.
func BindField(m *Model, el Element, path string, opts FieldOptions) (*FieldController, error) {
	c := NewFieldController(m, nil)
	if err := c.Bind(el, path, opts); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FieldController) ID() string       { return c.id }
func (c *FieldController) Path() string     { return c.path }
func (c *FieldController) Element() Element { return c.el }
func (c *FieldController) State() State     { return c.state }

// Bind wires el to path. Binding the same element to the same path again is
// a no-op (a detached controller is re-attached); binding anything else
// releases the previous subscriptions first. Moving to another path drops the
// validator of the old path unless another controller or SetValidation has
// replaced it since.
//
// When no descriptor resolves for el, Bind logs a warning and returns a
// *BindError wrapping ErrUnresolvableBinding; the controller keeps its
// previous state.
func (c *FieldController) Bind(el Element, path string, opts FieldOptions) error {
	if c.state == Disposed {
		return ErrDisposed
	}
	if c.el != nil && c.el == el && c.path == path {
		if c.state == Detached {
			return c.Attach()
		}
		return nil
	}

	desc, ok := c.registry.Resolve(el)
	if !ok {
		kind := ""
		if el != nil {
			kind = el.Kind()
		}
		c.logger.Warn().
			Str("path", path).
			Str("kind", kind).
			Str("code", CodeUnresolvableBinding).
			Msg("field skipped: element is not a supported form binding element")
		return &BindError{Path: path, Kind: kind, Err: ErrUnresolvableBinding}
	}
	assertPath(c.model.AllData(), path)

	c.release()
	if c.el != el || c.path != path {
		c.defaultSet = false
	}
	if c.state != Unbound && c.path != path {
		c.model.removeValidationFrom(c.id, c.path)
	}
	c.el, c.path, c.opts, c.desc = el, path, opts, desc
	c.validator = c.deriveValidator()

	c.stampAttributes()
	c.pushDefault()
	c.model.setValidationFrom(c.id, path, c.validator)
	c.subscribe()
	c.state = Bound
	return nil
}

// Attach re-establishes subscriptions after Detach. Attaching a bound
// controller is a no-op.
func (c *FieldController) Attach() error {
	switch c.state {
	case Disposed:
		return ErrDisposed
	case Unbound:
		return ErrNotBound
	case Detached:
		c.subscribe()
		c.state = Bound
	}
	return nil
}

// Detach releases every subscription; no model write happens while detached.
func (c *FieldController) Detach() {
	if c.state != Bound {
		return
	}
	c.release()
	c.state = Detached
}

// Dispose releases every subscription for good. The validator stays
// registered with the model; use Model.RemoveValidation to drop it.
func (c *FieldController) Dispose() {
	c.release()
	c.state = Disposed
}

// Validate re-runs the validator against the current model value.
func (c *FieldController) Validate() error {
	return Check(c.validator, c.model.GetData(c.path))
}

// IsValid reports whether the current model value passes the validator.
func (c *FieldController) IsValid() bool { return c.Validate() == nil }

func (c *FieldController) deriveValidator() Validator {
	if c.opts.Validate != nil {
		return c.opts.Validate
	}
	expr := c.opts.Pattern
	if expr == "" {
		expr, _ = c.el.Attr(AttrPattern)
	}
	if expr == "" {
		return AlwaysValid
	}
	v, err := Pattern(expr, c.opts.ErrorMessage)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("path", c.path).
			Str("code", CodeBadPattern).
			Msg("pattern ignored; field accepts any value")
		return AlwaysValid
	}
	return v
}

func (c *FieldController) stampAttributes() {
	c.el.SetAttr(AttrName, deep.At(c.path).Last())
	c.el.SetAttr(AttrFieldPath, c.path)
}

// pushDefault writes the model value into the element once per path.
func (c *FieldController) pushDefault() {
	if c.defaultSet {
		return
	}
	c.defaultSet = true
	c.push(c.model.GetData(c.path), "default value not set")
}

func (c *FieldController) push(v any, msg string) {
	if err := c.desc.SetValue(c.el, v); err != nil {
		c.logger.Warn().Err(err).
			Str("path", c.path).
			Str("kind", c.el.Kind()).
			Str("code", CodeMisconfiguredDefault).
			Msg(msg)
	}
}

func (c *FieldController) subscribe() {
	if !c.subscribed {
		for _, eb := range c.desc.Events {
			c.subs = append(c.subs, c.el.Subscribe(eb.Name, func(ev Event) { c.handle(eb, ev) }))
		}
		c.subscribed = true
	}
	if c.unwatch == nil {
		c.unwatch = c.model.Watch(c.onChange)
	}
}

func (c *FieldController) release() {
	for _, u := range c.subs {
		u()
	}
	c.subs = nil
	c.subscribed = false
	if c.unwatch != nil {
		c.unwatch()
		c.unwatch = nil
	}
}

func (c *FieldController) handle(eb EventBinding, ev Event) {
	if c.state != Bound {
		return
	}
	v, err := eb.Extract(ev)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("path", c.path).
			Str("event", eb.Name).
			Str("code", CodeExtractFailed).
			Msg("event ignored")
		return
	}
	c.model.updateFrom(c.id, c.path, v)
	c.markValidity()
}

func (c *FieldController) markValidity() {
	if c.IsValid() {
		c.el.RemoveAttr(AttrInvalid)
		return
	}
	c.el.SetAttr(AttrInvalid, "")
}

// onChange pushes changes of this controller's path into the element:
// program-driven ones always, user-driven ones only when another element
// bound to the same path fired them.
func (c *FieldController) onChange(ev ChangeEvent) {
	if c.state != Bound || ev.Path != c.path || ev.Origin == c.id {
		return
	}
	if ev.Kind == ChangeUpdate && ev.Origin == "" {
		return
	}
	c.push(deep.Get(ev.New, c.path), "value not pushed into element")
}
