package formbind

import (
	"reflect"
	"slices"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/reoring/formbind/deep"
)

// Model owns the data of one logical form, its per-path validators and the
// error state mirroring the data.
//
// A Model is driven from a single goroutine (the host's event loop) and is
// not safe for concurrent use. Snapshots returned by GetData, AllData and
// Errors are shared and must not be modified; every write replaces nodes
// instead of mutating them.
type Model struct {
	data       any
	errors     any
	validators map[string]Validator
	owners     map[string]string // path -> controller ID that registered its validator
	order      []string
	watchers   []*watcher

	host     Host
	logger   zerolog.Logger
	registry *Registry
}

// New creates a model over data, typically a map[string]any. The error state
// starts as a copy of data with every leaf set to false.
func New(data any, opts ...Option) *Model {
	m := &Model{
		data:       data,
		validators: make(map[string]Validator),
		owners:     make(map[string]string),
		logger:     log.Logger,
	}
	for _, o := range opts {
		o(m)
	}
	m.errors = errorShape(data)
	return m
}

// GetData returns the value at path; the empty path returns all data.
func (m *Model) GetData(path string) any { return deep.Get(m.data, path) }

// AllData returns the current data snapshot.
func (m *Model) AllData() any { return m.data }

// Errors returns the current error state snapshot.
func (m *Model) Errors() any { return m.errors }

// ErrorAt returns the error leaf at path: false, true or a message.
func (m *Model) ErrorAt(path string) any { return deep.Get(m.errors, path) }

// Logger returns the model's logger.
func (m *Model) Logger() zerolog.Logger { return m.logger }

// Registry returns the registry binders use by default; it may be nil.
func (m *Model) Registry() *Registry { return m.registry }

// UpdateData writes a user-driven value. Elements bound to path are not
// refreshed with it, so the originating element never sees its own echo.
func (m *Model) UpdateData(path string, value any) {
	m.apply(path, value, ChangeUpdate, "")
}

// SetData writes a program-driven value. Every controller bound to exactly
// path pushes the new value into its element.
func (m *Model) SetData(path string, value any) {
	m.apply(path, value, ChangeSet, "")
}

func (m *Model) updateFrom(origin, path string, value any) {
	m.apply(path, value, ChangeUpdate, origin)
}

func (m *Model) apply(path string, value any, kind ChangeKind, origin string) {
	old := m.data
	next, landed := deep.TryUpdate(old, path, value)
	if !landed {
		m.logger.Debug().Str("path", path).Msg("path does not resolve; data unchanged")
	}
	m.data = next
	assertPath(m.data, path)

	valid := m.IsDataValid()
	errorsChanged := landed && m.refreshErrors(path)

	m.publish(ChangeEvent{Old: old, New: m.data, Valid: valid, Path: path, Kind: kind, Origin: origin})
	if errorsChanged {
		m.requestUpdate()
	}
}

// refreshErrors recomputes the error entry at path and reports whether it
// changed in a way the view must display. A verdict shown above path covers
// it: that verdict is judged again, and path gets its own leaf only once the
// verdict clears.
func (m *Model) refreshErrors(path string) bool {
	scope := path
	above, covered := m.verdictAbove(path)
	if covered {
		scope = above
	}
	before := deep.Get(m.errors, scope)
	if covered {
		leaf := any(false)
		if v, ok := m.validators[above]; ok {
			leaf = errorLeaf(Check(v, deep.Get(m.data, above)))
		}
		m.errors = deep.Update(m.errors, above, leaf)
	}
	if _, still := m.verdictAbove(path); !still {
		value := deep.Get(m.data, path)
		if v, ok := m.validators[path]; ok {
			m.writeError(path, errorLeaf(Check(v, value)))
		} else if !deep.Has(m.errors, path) || deep.IsContainer(value) {
			m.writeError(path, errorShape(value))
		}
	}
	after := deep.Get(m.errors, scope)
	if reflect.DeepEqual(before, after) {
		return false
	}
	return hasErrors(before) || hasErrors(after)
}

// writeError stores leaf at path, first defaulting any part of the path the
// error state does not have yet from the data. Prefixes holding false are
// defaulted too; a verdict above path is kept and the write is dropped.
func (m *Model) writeError(path string, leaf any) {
	if _, covered := m.verdictAbove(path); covered {
		return
	}
	segs := deep.Split(path)
	if len(segs) > 0 && !deep.IsContainer(m.errors) {
		m.errors = errorShape(m.data)
	}
	for i := 1; i < len(segs); i++ {
		prefix := deep.Join(segs[:i]...)
		if node, ok := deep.Lookup(m.errors, prefix); ok && deep.IsContainer(node) {
			continue
		}
		m.errors = deep.Update(m.errors, prefix, errorShape(deep.Get(m.data, prefix)))
		break
	}
	m.errors = deep.Update(m.errors, path, leaf)
}

// verdictAbove returns the proper prefix of path whose error entry is a
// verdict (true or a message), if any.
func (m *Model) verdictAbove(path string) (string, bool) {
	segs := deep.Split(path)
	for i := 0; i < len(segs); i++ {
		prefix := deep.Join(segs[:i]...)
		node, ok := deep.Lookup(m.errors, prefix)
		switch {
		case !ok:
			return "", false
		case deep.IsContainer(node):
			continue
		case isVerdict(node):
			return prefix, true
		default:
			return "", false
		}
	}
	return "", false
}

// SetValidation registers v for path, replacing any previous validator.
func (m *Model) SetValidation(path string, v Validator) {
	m.setValidationFrom("", path, v)
}

func (m *Model) setValidationFrom(owner, path string, v Validator) {
	if _, ok := m.validators[path]; !ok {
		m.order = append(m.order, path)
	}
	m.validators[path] = v
	m.owners[path] = owner
}

// RemoveValidation drops the validator for path.
func (m *Model) RemoveValidation(path string) {
	if _, ok := m.validators[path]; !ok {
		return
	}
	delete(m.validators, path)
	delete(m.owners, path)
	for i, p := range m.order {
		if p == path {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
}

// removeValidationFrom drops the validator for path only while owner is the
// one that registered it.
func (m *Model) removeValidationFrom(owner, path string) {
	if o, ok := m.owners[path]; ok && o == owner {
		m.RemoveValidation(path)
	}
}

// Validator returns the validator registered for path.
func (m *Model) Validator(path string) (Validator, bool) {
	v, ok := m.validators[path]
	return v, ok
}

// IsDataValid reports whether every registered validator accepts the current
// value at its path. It does not touch the error state.
func (m *Model) IsDataValid() bool {
	for _, p := range m.order {
		if Check(m.validators[p], deep.Get(m.data, p)) != nil {
			return false
		}
	}
	return true
}

// ValidateAllFields runs every validator, writes all error leaves and asks the
// host for a single refresh. It returns Issues when some field is invalid, in
// registration order. Leaves are written parents first, so a failing parent
// keeps its verdict over the leaves of its children.
func (m *Model) ValidateAllFields() error {
	var iss Issues
	leaves := make(map[string]any, len(m.order))
	for _, p := range m.order {
		err := Check(m.validators[p], deep.Get(m.data, p))
		leaves[p] = errorLeaf(err)
		if err != nil {
			iss = AppendIssues(iss, IssueAt(p, err))
		}
	}
	byDepth := slices.Clone(m.order)
	slices.SortStableFunc(byDepth, func(a, b string) int {
		return len(deep.Split(a)) - len(deep.Split(b))
	})
	for _, p := range byDepth {
		m.writeError(p, leaves[p])
	}
	m.requestUpdate()
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// Issues projects the current error state into Issues, in path order.
func (m *Model) Issues() Issues {
	var iss Issues
	deep.Walk(m.errors, func(path string, leaf any) bool {
		switch v := leaf.(type) {
		case string:
			iss = append(iss, Issue{Path: path, Code: CodeInvalid, Message: v})
		case bool:
			if v {
				iss = append(iss, Issue{Path: path, Code: CodeInvalid})
			}
		}
		return true
	})
	return iss
}

func (m *Model) requestUpdate() {
	if m.host != nil {
		m.host.RequestUpdate()
	}
}

// errorShape mirrors v with false leaves; empty root containers stay
// containers so later paths can be defaulted into them.
func errorShape(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			return map[string]any{}
		}
	case []any:
		if len(t) == 0 {
			return []any{}
		}
	}
	return deep.SetAll(v, false)
}

func isVerdict(leaf any) bool {
	switch v := leaf.(type) {
	case string:
		return true
	case bool:
		return v
	default:
		return false
	}
}

func hasErrors(node any) bool {
	found := false
	deep.Walk(node, func(_ string, leaf any) bool {
		switch v := leaf.(type) {
		case string:
			found = true
		case bool:
			found = v
		}
		return !found
	})
	return found
}
