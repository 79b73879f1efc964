// Package apiregistry implements versioned, address-stable interface
// tables (spec §3/§4.D). A Slot is a heap cell whose pointee is replaced
// in place on re-registration; callers that cache a *Slot see every
// subsequent implementation, including ones installed by a hot-reloaded
// extension, without re-fetching anything (spec §5 "Hot-reload safety").
package apiregistry

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

// Descriptor identifies a versioned API. Two descriptors "match" (spec §3)
// when Name and Major are equal and the candidate's Minor is >= the
// requested Minor.
type Descriptor struct {
	Name  string
	Major uint32
	Minor uint32
	Patch uint32
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s v%d.%d.%d", d.Name, d.Major, d.Minor, d.Patch)
}

// sameNameMajor reports whether d and other share a name and major version.
func (d Descriptor) sameNameMajor(other Descriptor) bool {
	return d.Name == other.Name && d.Major == other.Major
}

// Slot is a stable heap cell holding the current implementation registered
// for a versioned API. Slot addresses never change for the process
// lifetime once allocated (spec §4.D "Slots are address-stable").
type Slot struct {
	desc atomic.Pointer[Descriptor] // current version served by this slot
	ptr  atomic.Pointer[any]        // current table; nil after Remove
}

// Get returns the table currently registered in the slot, or nil if the
// slot has been cleared by Remove. Safe to call from any goroutine.
func (s *Slot) Get() any {
	p := s.ptr.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Descriptor returns the version currently served by this slot.
func (s *Slot) Descriptor() Descriptor {
	return *s.desc.Load()
}

func (s *Slot) store(desc Descriptor, table any) {
	d := desc
	s.desc.Store(&d)
	s.ptr.Store(&table)
}

func (s *Slot) clear() {
	s.ptr.Store(nil)
}

// Registry is the process-wide API table. Mutating operations (Set,
// Remove) are expected to run only on the control thread during startup
// and extension load/unload callbacks (spec §5); Get/GetLatest/Enumerate
// may be called from anywhere.
type Registry struct {
	mu    sync.RWMutex
	slots []*Slot
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Set registers table under desc. If an existing slot shares desc's name
// and major version and currently serves a minor version <= desc.Minor,
// that slot's pointee is replaced in place and its descriptor updated;
// otherwise a new slot is allocated. The returned *Slot is address-stable
// for as long as the registry exists.
func (r *Registry) Set(desc Descriptor, table any) *Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		cur := s.Descriptor()
		if cur.sameNameMajor(desc) && cur.Minor <= desc.Minor {
			s.store(desc, table)
			return s
		}
	}

	s := &Slot{}
	s.store(desc, table)
	r.slots = append(r.slots, s)
	return s
}

// Get finds the slot whose current version matches desc: same name and
// major, registered minor >= desc.Minor. Among multiple candidates the one
// with the highest minor wins, ties broken by highest patch. Returns nil
// if no slot matches or the matching slot has been Removed.
func (r *Registry) Get(desc Descriptor) *Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Slot
	var bestDesc Descriptor
	for _, s := range r.slots {
		cur := s.Descriptor()
		if !cur.sameNameMajor(desc) || cur.Minor < desc.Minor {
			continue
		}
		if s.Get() == nil {
			continue
		}
		if best == nil || cur.Minor > bestDesc.Minor ||
			(cur.Minor == bestDesc.Minor && cur.Patch > bestDesc.Patch) {
			best = s
			bestDesc = cur
		}
	}
	return best
}

// GetLatest finds the slot with the highest (minor, patch) among those
// sharing name and major, regardless of any specific minor requirement.
func (r *Registry) GetLatest(name string, major uint32) *Slot {
	return r.Get(Descriptor{Name: name, Major: major})
}

// Remove clears the pointee of slot but keeps the slot allocated; Get on
// the slot returns nil from then on. The slot keeps its last descriptor, so
// a later Set with the same name and major and a minor >= that descriptor's
// minor refills this same slot, while a lower minor allocates a fresh one.
func (r *Registry) Remove(slot *Slot) {
	if slot == nil {
		return
	}
	slot.clear()
}

// Enumerate returns a snapshot of every slot's current descriptor, for
// diagnostics. Removed slots are included with their last-known
// descriptor; callers should check Slot.Get() for liveness.
func (r *Registry) Enumerate() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		if out[i].Major != out[j].Major {
			return out[i].Major < out[j].Major
		}
		if out[i].Minor != out[j].Minor {
			return out[i].Minor < out[j].Minor
		}
		return out[i].Patch < out[j].Patch
	})
	return out
}
