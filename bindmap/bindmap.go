// Package bindmap holds stock binding descriptors: native HTML controls and
// the Vaadin web component set. Applications merge them into the registry
// they pass to formbind.
package bindmap

import (
	"fmt"
	"strconv"

	"github.com/reoring/formbind"
)

// ChangeEvent is the event every stock descriptor listens to.
const ChangeEvent = "change"

// AttrBoolChecked marks a checkbox bound to a boolean. Such a checkbox
// reports its checked state instead of its value attribute. Setting a bool
// stamps it and setting a string removes it; markup may also preset it.
const AttrBoolChecked = "data-checked-bool"

// Native control kinds.
var StandardKinds = []string{"INPUT", "TEXTAREA", "SELECT"}

// Vaadin data-entry component kinds.
var VaadinKinds = []string{
	"VAADIN-TEXT-FIELD",
	"VAADIN-RICH-TEXT-EDITOR",
	"VAADIN-SELECT",
	"VAADIN-TEXT-AREA",
	"VAADIN-DATE-PICKER",
	"VAADIN-TIME-PICKER",
	"VAADIN-DATE-TIME-PICKER",
}

// Standard returns descriptors for input, textarea and select elements.
func Standard() *formbind.Registry {
	r := formbind.NewRegistry()
	d := formbind.Descriptor{
		Events: []formbind.EventBinding{{
			Name:    ChangeEvent,
			Extract: extractStandard,
		}},
		SetValue: setStandard,
	}
	for _, k := range StandardKinds {
		r.Register(k, d)
	}
	return r
}

// Vaadin returns descriptors for Vaadin components, which expose their
// current value on the element itself.
func Vaadin() *formbind.Registry {
	r := formbind.NewRegistry()
	d := formbind.Descriptor{
		Events: []formbind.EventBinding{{
			Name:    ChangeEvent,
			Extract: extractTargetValue,
		}},
		SetValue: func(el formbind.Element, v any) error {
			ve, err := valueElement(el)
			if err != nil {
				return err
			}
			s, ok := scalarText(v)
			if !ok {
				return fmt.Errorf("%w: %s accepts only string or number values, got %T",
					formbind.ErrMisconfiguredDefault, el.Kind(), v)
			}
			ve.SetValue(s)
			return nil
		},
	}
	for _, k := range VaadinKinds {
		r.Register(k, d)
	}
	return r
}

// Defaults merges Standard and Vaadin.
func Defaults() *formbind.Registry {
	return formbind.NewRegistry(Standard(), Vaadin())
}

func inputType(el formbind.Element) string {
	if el.Kind() != "INPUT" {
		return ""
	}
	t, _ := el.Attr(formbind.AttrType)
	return t
}

func extractStandard(ev formbind.Event) (any, error) {
	ve, err := valueElement(ev.Target)
	if err != nil {
		return nil, err
	}
	switch inputType(ve) {
	case "checkbox":
		_, on := ve.Attr(formbind.AttrChecked)
		v, hasValue := ve.Attr(formbind.AttrValue)
		if _, isBool := ve.Attr(AttrBoolChecked); isBool || !hasValue {
			return on, nil
		}
		if !on {
			return "", nil
		}
		return v, nil
	case "radio":
		v, _ := ve.Attr(formbind.AttrValue)
		return v, nil
	case "number", "range":
		raw := ve.Value()
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, nil
		}
		return raw, nil
	default:
		return ve.Value(), nil
	}
}

func extractTargetValue(ev formbind.Event) (any, error) {
	ve, err := valueElement(ev.Target)
	if err != nil {
		return nil, err
	}
	return ve.Value(), nil
}

func setStandard(el formbind.Element, v any) error {
	ve, err := valueElement(el)
	if err != nil {
		return err
	}
	switch inputType(ve) {
	case "file":
		// never set programmatically
		return nil
	case "checkbox", "radio":
		if b, isBool := v.(bool); isBool && inputType(ve) == "checkbox" {
			ve.SetAttr(AttrBoolChecked, "")
			setChecked(ve, b)
			return nil
		}
		ve.RemoveAttr(AttrBoolChecked)
		want, ok := ve.Attr(formbind.AttrValue)
		if !ok {
			return fmt.Errorf("%w: %s[type=%s] must specify a value attribute",
				formbind.ErrMisconfiguredDefault, ve.Kind(), inputType(ve))
		}
		on := v == true
		if s, isStr := v.(string); isStr {
			on = s == want
		}
		setChecked(ve, on)
		return nil
	}
	s, ok := scalarText(v)
	if !ok {
		return fmt.Errorf("%w: default value for input, select and textarea elements can only be a string or a number, got %T",
			formbind.ErrMisconfiguredDefault, v)
	}
	ve.SetValue(s)
	return nil
}

func setChecked(ve formbind.ValueElement, on bool) {
	if on {
		ve.SetAttr(formbind.AttrChecked, "")
	} else {
		ve.RemoveAttr(formbind.AttrChecked)
	}
}

func valueElement(el formbind.Element) (formbind.ValueElement, error) {
	ve, ok := el.(formbind.ValueElement)
	if !ok || ve == nil {
		return nil, fmt.Errorf("bindmap: element %T carries no value", el)
	}
	return ve, nil
}

// scalarText renders strings and numbers; nil renders empty.
func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	default:
		return "", false
	}
}
