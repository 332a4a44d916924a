package formbind

import (
	"errors"

	"github.com/reoring/formbind/deep"
)

// NewIssue creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func NewIssue(p deep.Ref, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.String(), Code: code, Message: msg, Params: params}
}

// IssueAt converts a validator error for path into an Issue, keeping the code
// of an Issue returned by the validator.
func IssueAt(path string, err error) Issue {
	var it Issue
	if errors.As(err, &it) {
		it.Path = path
		if it.Code == "" {
			it.Code = CodeInvalid
		}
		return it
	}
	msg := ""
	if !errors.Is(err, ErrInvalid) {
		msg = err.Error()
	}
	return Issue{Path: path, Code: CodeInvalid, Message: msg, Cause: err}
}
