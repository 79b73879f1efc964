package platform

import (
	"fmt"
	"sync"
	"time"
)

// FakeLibrary is an in-memory Library used by extension-registry tests.
// It never touches the filesystem or the Go plugin loader, so the
// hot-reload state machine in pkg/extreg can be exercised deterministically.
type FakeLibrary struct {
	mu      sync.Mutex
	path    string
	symbols map[string]Symbol
	closed  bool
}

// NewFakeLibrary creates a FakeLibrary exposing the given symbols.
func NewFakeLibrary(path string, symbols map[string]Symbol) *FakeLibrary {
	return &FakeLibrary{path: path, symbols: symbols}
}

func (l *FakeLibrary) Lookup(name string) (Symbol, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, fmt.Errorf("platform: lookup %q on closed library %q", name, l.path)
	}
	sym, ok := l.symbols[name]
	if !ok {
		return nil, &ErrSymbolNotFound{Library: l.path, Symbol: name}
	}
	return sym, nil
}

func (l *FakeLibrary) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// FakeShim is a Shim backed by an in-memory path -> (library, mtime) table,
// mutated directly by tests to simulate a rebuilt library.
type FakeShim struct {
	mu       sync.Mutex
	libs     map[string]func() (Library, error)
	mtimes   map[string]time.Time
	openErrs map[string]error
}

// NewFakeShim creates an empty FakeShim.
func NewFakeShim() *FakeShim {
	return &FakeShim{
		libs:     make(map[string]func() (Library, error)),
		mtimes:   make(map[string]time.Time),
		openErrs: make(map[string]error),
	}
}

// SetLibrary registers a factory used to produce a fresh Library each time
// path is opened, and sets its mtime.
func (s *FakeShim) SetLibrary(path string, mtime time.Time, factory func() (Library, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.libs[path] = factory
	s.mtimes[path] = mtime
	delete(s.openErrs, path)
}

// Touch updates path's mtime without changing its contents, simulating a
// filesystem touch that doesn't represent a real rebuild.
func (s *FakeShim) Touch(path string, mtime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mtimes[path] = mtime
}

// SetOpenError makes the next OpenLibrary(path) calls fail, simulating a
// library that fails to load (spec §4.E LibraryLoadFailure).
func (s *FakeShim) SetOpenError(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErrs[path] = err
}

func (s *FakeShim) OpenLibrary(path string) (Library, error) {
	s.mu.Lock()
	factory, ok := s.libs[path]
	openErr := s.openErrs[path]
	s.mu.Unlock()
	if openErr != nil {
		return nil, openErr
	}
	if !ok {
		return nil, fmt.Errorf("platform: fake shim has no library registered for %q", path)
	}
	return factory()
}

func (s *FakeShim) Stat(path string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mtime, ok := s.mtimes[path]
	if !ok {
		return time.Time{}, fmt.Errorf("platform: fake shim has no mtime for %q", path)
	}
	return mtime, nil
}
