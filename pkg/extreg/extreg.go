// Package extreg implements the extension registry (spec §4.E): dynamic
// library lifecycle, hot reload on mtime change, and dispatch into an
// extension's load/unload entry points with the API registry.
package extreg

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pilotlight-tech/pilotlight/internal/platform"
	"github.com/pilotlight-tech/pilotlight/pkg/apiregistry"
)

// ErrNotLoaded is returned by Unload when the named library isn't tracked.
var ErrNotLoaded = errors.New("extreg: extension not loaded")

// Default entry point symbol names (spec §4.E). Go's plugin package can
// only resolve exported (capitalized) package-level identifiers, unlike C's
// unrestricted symbol table, so these are capitalized rather than the
// literal "pl_load_ext"/"pl_unload_ext" spelling the original uses.
const (
	DefaultLoadFuncName   = "LoadExt"
	DefaultUnloadFuncName = "UnloadExt"
)

// EntryPoint is the function shape an extension exports for both its load
// and unload symbols (spec §6 "Extension entry points").
type EntryPoint func(apiReg *apiregistry.Registry, reload bool)

// Record describes one loaded (or load-attempted) extension, mirroring
// spec §3's "Extension record".
type Record struct {
	LibraryPath    string
	LoadFuncName   string
	UnloadFuncName string
	Reloadable     bool

	mu        sync.Mutex
	handle    platform.Library
	lastMtime time.Time
	failed    bool
	failErr   error
}

// Failed reports whether the most recent load or reload attempt for this
// record failed (spec §4.E "the record is marked failed").
func (r *Record) Failed() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed, r.failErr
}

// Registry tracks every loaded extension and drives hot reload.
type Registry struct {
	shim   platform.Shim
	apiReg *apiregistry.Registry

	mu      sync.Mutex
	records map[string]*Record // keyed by LibraryPath
}

// New returns a Registry that loads libraries through shim and passes
// apiReg to every extension's load/unload entry point.
func New(shim platform.Shim, apiReg *apiregistry.Registry) *Registry {
	return &Registry{
		shim:    shim,
		apiReg:  apiReg,
		records: make(map[string]*Record),
	}
}

// Option configures a Load call.
type Option func(*Record)

// WithEntryPoints overrides the default load/unload symbol names.
func WithEntryPoints(loadFunc, unloadFunc string) Option {
	return func(r *Record) {
		r.LoadFuncName = loadFunc
		r.UnloadFuncName = unloadFunc
	}
}

// WithReloadable marks the extension for mtime polling by Poll.
func WithReloadable(reloadable bool) Option {
	return func(r *Record) { r.Reloadable = reloadable }
}

// Load opens libraryPath, resolves its load/unload symbols (defaulting to
// DefaultLoadFuncName/DefaultUnloadFuncName), and calls load(apiReg, reload=false). If
// reloadable, the library's current mtime is recorded for Poll.
func (reg *Registry) Load(libraryPath string, opts ...Option) (*Record, error) {
	rec := &Record{
		LibraryPath:    libraryPath,
		LoadFuncName:   DefaultLoadFuncName,
		UnloadFuncName: DefaultUnloadFuncName,
	}
	for _, opt := range opts {
		opt(rec)
	}

	handle, load, _, err := reg.open(rec)
	if err != nil {
		rec.mu.Lock()
		rec.failed = true
		rec.failErr = err
		rec.mu.Unlock()
		reg.put(rec)
		return rec, err
	}

	rec.mu.Lock()
	rec.handle = handle
	if rec.Reloadable {
		if mtime, statErr := reg.shim.Stat(libraryPath); statErr == nil {
			rec.lastMtime = mtime
		}
	}
	rec.mu.Unlock()

	load(reg.apiReg, false)
	reg.put(rec)
	return rec, nil
}

func (reg *Registry) put(rec *Record) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.records[rec.LibraryPath] = rec
}

// open loads the library and resolves both entry points, without invoking
// either of them.
func (reg *Registry) open(rec *Record) (platform.Library, EntryPoint, EntryPoint, error) {
	handle, err := reg.shim.OpenLibrary(rec.LibraryPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("extreg: open %q: %w", rec.LibraryPath, err)
	}

	loadSym, err := handle.Lookup(rec.LoadFuncName)
	if err != nil {
		_ = handle.Close()
		return nil, nil, nil, fmt.Errorf("extreg: resolve %q in %q: %w", rec.LoadFuncName, rec.LibraryPath, err)
	}
	unloadSym, err := handle.Lookup(rec.UnloadFuncName)
	if err != nil {
		_ = handle.Close()
		return nil, nil, nil, fmt.Errorf("extreg: resolve %q in %q: %w", rec.UnloadFuncName, rec.LibraryPath, err)
	}

	load, ok := loadSym.(EntryPoint)
	if !ok {
		_ = handle.Close()
		return nil, nil, nil, fmt.Errorf("extreg: %q in %q has the wrong signature", rec.LoadFuncName, rec.LibraryPath)
	}
	unload, ok := unloadSym.(EntryPoint)
	if !ok {
		_ = handle.Close()
		return nil, nil, nil, fmt.Errorf("extreg: %q in %q has the wrong signature", rec.UnloadFuncName, rec.LibraryPath)
	}

	return handle, load, unload, nil
}

// Unload calls unload(apiReg, reload=false) on the named extension and
// closes its library.
func (reg *Registry) Unload(libraryPath string) error {
	reg.mu.Lock()
	rec, ok := reg.records[libraryPath]
	if ok {
		delete(reg.records, libraryPath)
	}
	reg.mu.Unlock()
	if !ok {
		return fmt.Errorf("extreg: %q is not loaded: %w", libraryPath, ErrNotLoaded)
	}
	return reg.unloadRecord(rec, false)
}

func (reg *Registry) unloadRecord(rec *Record, reload bool) error {
	rec.mu.Lock()
	handle := rec.handle
	unloadFuncName := rec.UnloadFuncName
	rec.mu.Unlock()

	if handle == nil {
		return nil
	}
	unloadSym, err := handle.Lookup(unloadFuncName)
	if err != nil {
		return fmt.Errorf("extreg: resolve %q in %q: %w", unloadFuncName, rec.LibraryPath, err)
	}
	unload, ok := unloadSym.(EntryPoint)
	if !ok {
		return fmt.Errorf("extreg: %q in %q has the wrong signature", unloadFuncName, rec.LibraryPath)
	}
	unload(reg.apiReg, reload)
	return handle.Close()
}

// Poll checks every reloadable record for a newer mtime and, for each
// changed one, performs unload(reload=true) -> close -> reopen ->
// load(reload=true). Independent records are polled concurrently, bounded
// by an errgroup so a single failing reload doesn't block or abort the
// others (spec §4.E "other extensions continue").
func (reg *Registry) Poll() error {
	reg.mu.Lock()
	recs := make([]*Record, 0, len(reg.records))
	for _, rec := range reg.records {
		if rec.Reloadable {
			recs = append(recs, rec)
		}
	}
	reg.mu.Unlock()

	var g errgroup.Group
	for _, rec := range recs {
		rec := rec
		g.Go(func() error {
			return reg.pollOne(rec)
		})
	}
	return g.Wait()
}

func (reg *Registry) pollOne(rec *Record) error {
	mtime, err := reg.shim.Stat(rec.LibraryPath)
	if err != nil {
		return fmt.Errorf("extreg: stat %q: %w", rec.LibraryPath, err)
	}

	rec.mu.Lock()
	changed := mtime.After(rec.lastMtime)
	rec.mu.Unlock()
	if !changed {
		return nil
	}

	return reg.reload(rec, mtime)
}

// reload performs the mtime-triggered hot-reload sequence. A failed
// reload marks the record failed but keeps its previous handle in memory
// (spec §4.E "best-effort continuity") rather than leaving the extension
// unloaded.
func (reg *Registry) reload(rec *Record, newMtime time.Time) error {
	if err := reg.unloadRecord(rec, true); err != nil {
		rec.mu.Lock()
		rec.failed = true
		rec.failErr = err
		rec.mu.Unlock()
		return err
	}

	handle, load, _, err := reg.open(rec)
	if err != nil {
		rec.mu.Lock()
		rec.failed = true
		rec.failErr = err
		rec.mu.Unlock()
		return err
	}

	rec.mu.Lock()
	rec.handle = handle
	rec.lastMtime = newMtime
	rec.failed = false
	rec.failErr = nil
	rec.mu.Unlock()

	load(reg.apiReg, true)
	return nil
}

// Records returns a snapshot of every tracked extension, for diagnostics.
func (reg *Registry) Records() []*Record {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]*Record, 0, len(reg.records))
	for _, rec := range reg.records {
		out = append(out, rec)
	}
	return out
}

