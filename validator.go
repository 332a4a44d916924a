package formbind

import (
	"errors"
	"fmt"
	"regexp"
)

// Validator checks one field value. It returns nil when the value is valid.
// Any error marks the value invalid: its message becomes the error leaf, and
// ErrInvalid (or an empty message) yields the bare `true` leaf.
type Validator func(value any) error

// AlwaysValid is the validator of fields bound without rules.
func AlwaysValid(any) error { return nil }

// Check runs v against value; a nil validator accepts everything.
func Check(v Validator, value any) error {
	if v == nil {
		return nil
	}
	return v(value)
}

// Pattern returns a validator requiring the whole value to match expr, like
// the HTML pattern attribute. Non-string scalars are matched on their
// formatted text. An empty message yields a bare invalid mark.
func Pattern(expr, message string) (Validator, error) {
	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, fmt.Errorf("formbind: pattern %q: %w", expr, err)
	}
	return func(value any) error {
		s, ok := value.(string)
		if !ok {
			if value == nil {
				s = ""
			} else {
				s = fmt.Sprint(value)
			}
		}
		if re.MatchString(s) {
			return nil
		}
		if message == "" {
			return ErrInvalid
		}
		return Issue{Code: CodePattern, Message: message, Params: map[string]any{"pattern": expr}}
	}, nil
}

// errorLeaf converts a validation outcome into an error state leaf: false for
// valid, the message for a described failure, true otherwise.
func errorLeaf(err error) any {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalid) || err.Error() == "" {
		return true
	}
	return err.Error()
}
