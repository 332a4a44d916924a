// Package dom is a headless element implementation for formbind. It lets
// forms be bound and driven outside a browser: in tests, terminal UIs or
// server-side form processing.
package dom

import (
	"maps"
	"slices"
	"strings"

	"github.com/reoring/formbind"
)

type listener struct {
	h      formbind.Handler
	active bool
}

// Element is a mutable element with a tag, attributes, a string value and
// event listeners. It is not safe for concurrent use.
type Element struct {
	tag       string
	attrs     map[string]string
	value     string
	listeners map[string][]*listener
	self      formbind.Element
}

// New creates an element. attrs are name/value pairs; a trailing name without
// a value is set to "".
func New(tag string, attrs ...string) *Element {
	e := &Element{
		tag:       tag,
		attrs:     make(map[string]string),
		listeners: make(map[string][]*listener),
	}
	for i := 0; i < len(attrs); i += 2 {
		v := ""
		if i+1 < len(attrs) {
			v = attrs[i+1]
		}
		e.attrs[attrs[i]] = v
	}
	return e
}

// Input is shorthand for an <input> of the given type.
func Input(typ string, attrs ...string) *Element {
	return New("input", append([]string{formbind.AttrType, typ}, attrs...)...)
}

// Kind returns the upper-cased tag name, like a DOM nodeName.
func (e *Element) Kind() string { return strings.ToUpper(e.tag) }

func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.attrs[name]
	return ok
}

func (e *Element) SetAttr(name, value string) { e.attrs[name] = value }

func (e *Element) RemoveAttr(name string) { delete(e.attrs, name) }

// Attrs returns a copy of the attributes.
func (e *Element) Attrs() map[string]string { return maps.Clone(e.attrs) }

func (e *Element) Value() string { return e.value }

func (e *Element) SetValue(v string) { e.value = v }

// Checked reports the checked state of checkboxes and radios.
func (e *Element) Checked() bool { return e.HasAttr(formbind.AttrChecked) }

// Adopt makes events fired by e report owner as their target. Custom
// elements embedding *Element call it so self-description is visible to
// handlers.
func (e *Element) Adopt(owner formbind.Element) { e.self = owner }

// Subscribe adds a listener for name.
func (e *Element) Subscribe(name string, h formbind.Handler) formbind.Unsubscribe {
	l := &listener{h: h, active: true}
	e.listeners[name] = append(e.listeners[name], l)
	return func() {
		if !l.active {
			return
		}
		l.active = false
		e.listeners[name] = slices.DeleteFunc(e.listeners[name], func(x *listener) bool { return x == l })
	}
}

// Listeners counts live listeners for name.
func (e *Element) Listeners(name string) int { return len(e.listeners[name]) }

// Dispatch fires name to the listeners present when it is called.
func (e *Element) Dispatch(name string, detail any) {
	var target formbind.Element = e
	if e.self != nil {
		target = e.self
	}
	ev := formbind.Event{Name: name, Target: target, Detail: detail}
	for _, l := range slices.Clone(e.listeners[name]) {
		if l.active {
			l.h(ev)
		}
	}
}

// Change simulates a user editing the value and committing it.
func (e *Element) Change(value string) {
	e.value = value
	e.Dispatch("input", nil)
	e.Dispatch("change", nil)
}

// Toggle simulates a user (un)checking a checkbox or selecting a radio.
func (e *Element) Toggle(on bool) {
	if on {
		e.SetAttr(formbind.AttrChecked, "")
	} else {
		e.RemoveAttr(formbind.AttrChecked)
	}
	e.Dispatch("change", nil)
}
