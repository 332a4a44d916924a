//go:build !formbind_assert

package formbind

func assertPath(any, string) {}
