// Package rules provides composable per-field validators for formbind.
// Failures are formbind.Issue values, so the message becomes the error leaf
// and the code survives into Model.ValidateAllFields.
package rules

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/reoring/formbind"
	"github.com/reoring/formbind/deep"
	"github.com/reoring/formbind/i18n"
)

func fail(rule, code string, params map[string]any) formbind.Issue {
	data := make(map[string]string, len(params))
	for k, v := range params {
		data[k] = fmt.Sprint(v)
	}
	return formbind.Issue{Code: code, Message: i18n.T(code, data), Params: params, Rule: rule}
}

// Required rejects nil, empty strings, empty arrays and objects, and false.
func Required() formbind.Validator {
	return func(v any) error {
		if isEmpty(v) {
			return fail("required", formbind.CodeRequired, nil)
		}
		return nil
	}
}

// MinLength requires strings (in runes) or arrays to have at least n elements.
// Values of other types pass.
func MinLength(n int) formbind.Validator {
	return func(v any) error {
		if l, ok := length(v); ok && l < n {
			return fail("min_length", formbind.CodeTooShort, map[string]any{"min": n, "got": l})
		}
		return nil
	}
}

// MaxLength requires strings (in runes) or arrays to have at most n elements.
func MaxLength(n int) formbind.Validator {
	return func(v any) error {
		if l, ok := length(v); ok && l > n {
			return fail("max_length", formbind.CodeTooLong, map[string]any{"max": n, "got": l})
		}
		return nil
	}
}

// Pattern requires the whole text of the value to match expr. It panics when
// expr does not compile, like regexp.MustCompile.
func Pattern(expr string) formbind.Validator {
	re := regexp.MustCompile("^(?:" + expr + ")$")
	return func(v any) error {
		s := ""
		switch t := v.(type) {
		case nil:
		case string:
			s = t
		default:
			s = fmt.Sprint(t)
		}
		if !re.MatchString(s) {
			return fail("pattern", formbind.CodePattern, map[string]any{"pattern": expr})
		}
		return nil
	}
}

// Every requires the value to be an array whose items all satisfy pred.
func Every(pred func(item any) bool) formbind.Validator {
	return func(v any) error {
		items, ok := v.([]any)
		if !ok {
			return fail("every", formbind.CodeNotAll, nil)
		}
		for i, it := range items {
			if !pred(it) {
				return fail("every", formbind.CodeNotAll, map[string]any{"index": i})
			}
		}
		return nil
	}
}

// Truthy is an Every predicate checking that the leaf at path inside an item
// is the boolean true.
func Truthy(path string) func(item any) bool {
	return func(item any) bool { return deep.Get(item, path) == true }
}

// Equals is an Every predicate checking the leaf at path strictly equals want.
func Equals(path string, want any) func(item any) bool {
	return func(item any) bool { return deep.Equal(deep.Get(item, path), want) }
}

// All runs validators in order and returns the first failure.
func All(vs ...formbind.Validator) formbind.Validator {
	return func(v any) error {
		for _, r := range vs {
			if r == nil {
				continue
			}
			if err := r(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// Any succeeds when some validator accepts the value. When all fail the
// error of the last one is returned. Nil validators are skipped like in All,
// so Any with nothing to run accepts every value.
func Any(vs ...formbind.Validator) formbind.Validator {
	return func(v any) error {
		var last error
		for _, r := range vs {
			if r == nil {
				continue
			}
			err := r(v)
			if err == nil {
				return nil
			}
			last = err
		}
		return last
	}
}

// Message replaces the message of any failure of v. An empty msg turns
// failures into a bare invalid mark.
func Message(v formbind.Validator, msg string) formbind.Validator {
	return func(val any) error {
		err := v(val)
		if err == nil {
			return nil
		}
		if msg == "" {
			return formbind.ErrInvalid
		}
		var it formbind.Issue
		if errors.As(err, &it) {
			it.Message = msg
			return it
		}
		return formbind.Issue{Code: formbind.CodeInvalid, Message: msg, Cause: err}
	}
}

// Func adapts a boolean predicate; failures carry msg, or a bare invalid mark
// when msg is empty.
func Func(pred func(v any) bool, msg string) formbind.Validator {
	return func(v any) error {
		if pred(v) {
			return nil
		}
		if msg == "" {
			return formbind.ErrInvalid
		}
		return formbind.Issue{Code: formbind.CodeInvalid, Message: msg}
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

func length(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case []any:
		return len(t), true
	case float64:
		// number inputs yield float64; their length is that of the text
		return len(strconv.FormatFloat(t, 'f', -1, 64)), true
	}
	return 0, false
}
