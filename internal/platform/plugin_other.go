//go:build !linux

package platform

import "fmt"

// openLibrary is unsupported on every platform other than Linux, the only
// one plugin_linux.go is built for. Spec §1 scopes platform support to "the
// minimal contract required to load shared libraries"; these platforms
// report a clear error instead of silently failing every reloadable
// extension.
func openLibrary(path string) (Library, error) {
	return nil, fmt.Errorf("platform: shared library loading is not supported on this platform (path %q)", path)
}
