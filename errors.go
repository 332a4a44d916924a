package formbind

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalid  = "invalid"
	CodeRequired = "required"
	CodePattern  = "pattern"
	CodeTooShort = "too_short"
	CodeTooLong  = "too_long"
	CodeNotAll   = "not_all"
	// Binding diagnostics (logged, never returned from mutations)
	CodeUnresolvableBinding  = "unresolvable_binding"
	CodeMisconfiguredDefault = "misconfigured_default"
	CodeExtractFailed        = "extract_failed"
	CodeBadPattern           = "bad_pattern"
)

var (
	// ErrInvalid marks a value as invalid without a message. Its error leaf is true.
	ErrInvalid = errors.New("formbind: invalid value")
	// ErrUnresolvableBinding means no descriptor exists for an element kind.
	ErrUnresolvableBinding = errors.New("formbind: no binding descriptor for element")
	// ErrMisconfiguredDefault means a model value could not be pushed into an element.
	ErrMisconfiguredDefault = errors.New("formbind: misconfigured default value")
	// ErrDisposed is returned by lifecycle calls on a disposed controller.
	ErrDisposed = errors.New("formbind: controller disposed")
	// ErrNotBound is returned when attaching a controller that was never bound.
	ErrNotBound = errors.New("formbind: controller not bound")
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // dotted form path (for example: phones.work.0).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1}) for i18n.
	Params map[string]any
	// Rule optionally records the rule name that produced this issue.
	Rule string
}

// Error returns the message, falling back to the code. An Issue returned by a
// Validator becomes the message leaf of the error state.
func (it Issue) Error() string {
	if it.Message != "" {
		return it.Message
	}
	return it.Code
}

func (it Issue) Unwrap() error { return it.Cause }

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at name
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// BindError reports a field that could not be bound. The field is skipped and
// the rest of the form keeps working.
type BindError struct {
	Path string
	Kind string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("formbind: bind %q (%s): %v", e.Path, strings.ToLower(e.Kind), e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }
