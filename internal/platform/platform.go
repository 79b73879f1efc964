// Package platform is the minimal platform shim: loading and unloading
// shared libraries, statting file mtimes, and process-wide atomic counters.
// Everything above this package treats the host OS only through this
// interface, matching spec §1's "minimal contract required to load shared
// libraries and query monotonic file mtimes."
package platform

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Symbol is a resolved, callable entry point looked up by name inside a
// loaded library. Callers type-assert it to the expected function shape.
type Symbol any

// Library is a handle to a loaded shared library.
type Library interface {
	// Lookup resolves a symbol by name. Returns an error if the symbol
	// does not exist.
	Lookup(name string) (Symbol, error)
	// Close unloads the library. Symbols obtained from it become invalid.
	Close() error
}

// Shim is the platform abstraction consumed by pkg/extreg. The production
// implementation (plugin_linux.go) wraps the stdlib plugin package; tests
// use a fake so the hot-reload state machine can be exercised without
// compiling actual .so files.
type Shim interface {
	// OpenLibrary loads the shared library at path.
	OpenLibrary(path string) (Library, error)
	// Stat returns the modification time of path, truncated to the
	// platform's mtime resolution.
	Stat(path string) (time.Time, error)
}

// osShim is the production Shim. Library loading is delegated to the
// build-tagged plugin_*.go files so platforms without plugin support still
// compile (plugin.Open is linux/freebsd-only in the Go toolchain).
type osShim struct{}

// New returns the production platform shim.
func New() Shim {
	return osShim{}
}

func (osShim) OpenLibrary(path string) (Library, error) {
	return openLibrary(path)
}

func (osShim) Stat(path string) (time.Time, error) {
	return statMtime(path)
}

// Counter is a process-lifetime atomic counter, used by internal/memtrack
// to total bytes in use across all call sites so the total can be read
// without taking the tracker's mutex.
type Counter struct {
	v atomic.Int64
}

// Add adds delta (which may be negative) and returns the new value.
func (c *Counter) Add(delta int64) int64 {
	return c.v.Add(delta)
}

// Load returns the current value.
func (c *Counter) Load() int64 {
	return c.v.Load()
}

// ErrSymbolNotFound is returned by Library.Lookup when the named symbol
// does not exist in the library.
type ErrSymbolNotFound struct {
	Library string
	Symbol  string
}

func (e *ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("platform: symbol %q not found in %q", e.Symbol, e.Library)
}
