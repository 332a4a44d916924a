package deep

import (
	"strconv"
)

// Ref builds dotted paths in a chain-safe way:
//
//	deep.Root().Field("phones").Field("work").Index(0).String() // "phones.work.0"
type Ref struct {
	parts []string
}

// Root returns the reference to the whole form data.
func Root() Ref { return Ref{} }

// At parses an existing path.
func At(path string) Ref { return Ref{parts: Split(path)} }

// Field appends an object key. Empty names are ignored since they have no
// dotted path; keys containing Sep are split like any other path.
func (r Ref) Field(name string) Ref {
	if name == "" {
		return r
	}
	return Ref{parts: append(append([]string{}, r.parts...), name)}
}

// Index appends an array index.
func (r Ref) Index(i int) Ref {
	return Ref{parts: append(append([]string{}, r.parts...), strconv.Itoa(i))}
}

// Parent drops the last segment. The parent of Root is Root.
func (r Ref) Parent() Ref {
	if len(r.parts) == 0 {
		return r
	}
	return Ref{parts: append([]string{}, r.parts[:len(r.parts)-1]...)}
}

// Last returns the final segment, or "" for Root.
func (r Ref) Last() string {
	if len(r.parts) == 0 {
		return ""
	}
	return r.parts[len(r.parts)-1]
}

// Segments returns a copy of the path segments.
func (r Ref) Segments() []string { return append([]string(nil), r.parts...) }

// HasPrefix reports whether r lies at or below p.
func (r Ref) HasPrefix(p Ref) bool {
	if len(p.parts) > len(r.parts) {
		return false
	}
	for i, s := range p.parts {
		if r.parts[i] != s {
			return false
		}
	}
	return true
}

func (r Ref) String() string { return Join(r.parts...) }
