package formbind

// Attribute names the engine reads or stamps on bound elements.
const (
	AttrInvalid   = "invalid"
	AttrName      = "name"
	AttrFieldPath = "data-field-path"
	AttrPattern   = "pattern"
	AttrType      = "type"
	AttrValue     = "value"
	AttrChecked   = "checked"
)

// Event is a fired element event.
type Event struct {
	Name   string
	Target Element
	// Detail carries the payload of custom events.
	Detail any
}

// Handler receives fired events.
type Handler func(Event)

// Unsubscribe releases a subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// EventSource delivers each fired event at most once to every live
// subscription, in subscription order.
type EventSource interface {
	Subscribe(name string, h Handler) Unsubscribe
}

// Element is an already-rendered field element. Implementations must be
// comparable (typically pointers) because binders key controllers by element.
type Element interface {
	EventSource
	// Kind identifies the element for registry lookup (for example a tag name).
	Kind() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)
}

// ValueElement is an Element carrying a string value, like native inputs.
type ValueElement interface {
	Element
	Value() string
	SetValue(v string)
}

// SelfDescribing is implemented by custom elements that declare their own
// binding instead of relying on a registry entry. It takes precedence over
// any registry lookup.
type SelfDescribing interface {
	FormBindingEvents() []EventBinding
	SetFormValue(v any) error
}
