// Package deep reads and writes nested form data addressed by dotted paths.
//
// Form data is composed of map[string]any, []any and scalars. A path is a
// list of segments joined by "."; a segment addressing a []any must be a
// base-10 index made of ASCII digits only. The empty path addresses the root.
//
// Writes never mutate their input: every container on the path is shallow
// copied and all other branches are shared with the original value.
//
// Misses are silent. Get returns nil when a path escapes the structure, and
// Update returns the target unchanged when the write cannot land:
//
//   - an intermediate segment is missing or addresses a scalar;
//   - an array segment is negative, not numeric, or greater than the length.
//
// Writing at index == len(array) appends one element when it is the last
// segment of the path.
//
// Map keys that are empty or contain Sep have no path of their own. They are
// not supported: Join drops empty segments and Walk skips such keys.
package deep

import (
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Sep separates path segments.
const Sep = "."

// Split breaks a path into segments. The empty path has no segments.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Sep)
}

// Join builds a path from segments, skipping empty ones.
func Join(segs ...string) string {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, Sep)
}

// Get returns the value at path, or nil when the path does not resolve.
func Get(target any, path string) any {
	v, _ := Lookup(target, path)
	return v
}

// Lookup returns the value at path and whether the path resolved.
func Lookup(target any, path string) (any, bool) {
	cur := target
	for _, seg := range Split(path) {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Has reports whether path resolves against target.
func Has(target any, path string) bool {
	_, ok := Lookup(target, path)
	return ok
}

func child(node any, seg string) (any, bool) {
	switch t := node.(type) {
	case map[string]any:
		v, ok := t[seg]
		return v, ok
	case []any:
		i, ok := parseIndex(seg)
		if !ok || i >= len(t) {
			return nil, false
		}
		return t[i], true
	default:
		return nil, false
	}
}

// Update returns a copy of target with the value at path replaced.
func Update(target any, path string, value any) any {
	out, _ := TryUpdate(target, path, value)
	return out
}

// TryUpdate is Update that also reports whether the write landed. On a miss
// the original target is returned.
func TryUpdate(target any, path string, value any) (any, bool) {
	segs := Split(path)
	if len(segs) == 0 {
		return value, true
	}
	return update(target, segs, value)
}

func update(node any, segs []string, value any) (any, bool) {
	head, rest := segs[0], segs[1:]
	switch t := node.(type) {
	case map[string]any:
		next := value
		if len(rest) > 0 {
			cur, ok := t[head]
			if !ok {
				return node, false
			}
			var landed bool
			if next, landed = update(cur, rest, value); !landed {
				return node, false
			}
		}
		out := make(map[string]any, len(t)+1)
		maps.Copy(out, t)
		out[head] = next
		return out, true
	case []any:
		i, ok := parseIndex(head)
		if !ok || i > len(t) {
			return node, false
		}
		if i == len(t) {
			if len(rest) > 0 {
				return node, false
			}
			out := make([]any, len(t), len(t)+1)
			copy(out, t)
			return append(out, value), true
		}
		next := value
		if len(rest) > 0 {
			var landed bool
			if next, landed = update(t[i], rest, value); !landed {
				return node, false
			}
		}
		out := slices.Clone(t)
		out[i] = next
		return out, true
	default:
		return node, false
	}
}

// SetAll returns a copy of target with every leaf replaced by v. Containers
// without children are leaves themselves.
func SetAll(target any, v any) any {
	switch t := target.(type) {
	case map[string]any:
		if len(t) == 0 {
			return v
		}
		out := make(map[string]any, len(t))
		for k, c := range t {
			out[k] = SetAll(c, v)
		}
		return out
	case []any:
		if len(t) == 0 {
			return v
		}
		out := make([]any, len(t))
		for i, c := range t {
			out[i] = SetAll(c, v)
		}
		return out
	default:
		return v
	}
}

// AnyEquals reports whether some leaf of target is strictly equal to value.
// The search is depth-first and stops at the first match.
func AnyEquals(target, value any) bool {
	switch t := target.(type) {
	case map[string]any:
		for _, c := range t {
			if AnyEquals(c, value) {
				return true
			}
		}
		return false
	case []any:
		for _, c := range t {
			if AnyEquals(c, value) {
				return true
			}
		}
		return false
	default:
		return Equal(target, value)
	}
}

// Equal reports strict equality of two leaves: same dynamic type and same
// value. Values of incomparable types are never equal.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// IsContainer reports whether v is a map[string]any or a []any.
func IsContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

// Walk calls fn for every leaf of target in a stable order (map keys sorted,
// arrays by index). Keys without a path of their own (see Addressable) are
// skipped with their subtree. Walking stops when fn returns false.
func Walk(target any, fn func(path string, leaf any) bool) {
	walk(target, "", fn)
}

func walk(node any, cur string, fn func(string, any) bool) bool {
	switch t := node.(type) {
	case map[string]any:
		if len(t) == 0 {
			return fn(cur, node)
		}
		for _, k := range slices.Sorted(maps.Keys(t)) {
			if !Addressable(k) {
				continue
			}
			if !walk(t[k], Join(cur, k), fn) {
				return false
			}
		}
		return true
	case []any:
		if len(t) == 0 {
			return fn(cur, node)
		}
		for i, c := range t {
			if !walk(c, Join(cur, strconv.Itoa(i)), fn) {
				return false
			}
		}
		return true
	default:
		return fn(cur, node)
	}
}

// Addressable reports whether a map key can be a path segment.
func Addressable(key string) bool {
	return key != "" && !strings.Contains(key, Sep)
}

// parseIndex accepts only non-empty runs of ASCII digits.
func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
