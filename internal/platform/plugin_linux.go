//go:build linux

package platform

import (
	"fmt"
	"plugin"
)

// pluginLibrary adapts stdlib *plugin.Plugin to the Library interface.
// plugin.Plugin has no Close — once loaded, a .so stays mapped for the life
// of the process, so reload is implemented one level up in pkg/extreg by
// re-resolving symbols against a freshly opened plugin and treating the old
// one as garbage; Close here is a no-op that only exists to satisfy the
// interface.
type pluginLibrary struct {
	path string
	p    *plugin.Plugin
}

func openLibrary(path string) (Library, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("platform: open library %q: %w", path, err)
	}
	return &pluginLibrary{path: path, p: p}, nil
}

func (l *pluginLibrary) Lookup(name string) (Symbol, error) {
	sym, err := l.p.Lookup(name)
	if err != nil {
		return nil, &ErrSymbolNotFound{Library: l.path, Symbol: name}
	}
	return sym, nil
}

func (l *pluginLibrary) Close() error {
	return nil
}
