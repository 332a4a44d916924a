//go:build formbind_assert

package formbind

import (
	"fmt"

	"github.com/reoring/formbind/deep"
)

// assertPath panics when path does not resolve against data. Compiled in only
// with the formbind_assert build tag, for test builds.
func assertPath(data any, path string) {
	if !deep.Has(data, path) {
		panic(fmt.Sprintf("formbind: path %q does not resolve against the form data", path))
	}
}
