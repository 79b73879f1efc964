package ecs

import (
	"reflect"
	"unsafe"

	"github.com/pilotlight-tech/pilotlight/internal/memtrack"
)

// ComponentTypeKey is the small dense integer assigned to a component type
// at registration (spec §3 "component type key").
type ComponentTypeKey int

// componentStore is the type-erased half of a pool[T]: just enough for
// World to drive bulk operations (entity destruction, diagnostics) without
// knowing T. All per-element access goes through the generic functions
// below instead, so there is no virtual dispatch on the hot path — the
// design note in spec §9 calls this out explicitly.
type componentStore interface {
	removeEntity(e Entity) bool
	len() int
}

// pool is a dense component array plus a sparse entity->slot index (spec
// §3 "Component library"). Invariants: (i) sparse[e.Index()] points at a
// slot whose entities[slot] == e; (ii) dense/entities are contiguous with
// no holes after any mutation.
type pool[T any] struct {
	dense      []T
	entities   []Entity
	sparse     map[uint32]int
	destroy    func(*T)
	allocSites []memtrack.Site // parallel to dense/entities, for memtrack.Default.Free
	elemSize   int64
}

func newPool[T any](destroy func(*T)) *pool[T] {
	var zero T
	return &pool[T]{
		sparse:   make(map[uint32]int),
		destroy:  destroy,
		elemSize: int64(unsafe.Sizeof(zero)),
	}
}

// add appends a new zero-initialised component for e, or returns the
// existing one if e already has this component (spec §4.F "If entity
// already has the component, returns the existing slot"). Growing the
// dense array is reported to memtrack.Default, the Go analogue of the
// original's per-call-site realloc accounting (spec §3 "memory tracker").
func (p *pool[T]) add(e Entity) *T {
	if slot, ok := p.sparse[e.Index()]; ok {
		return &p.dense[slot]
	}
	var zero T
	p.dense = append(p.dense, zero)
	p.entities = append(p.entities, e)
	p.allocSites = append(p.allocSites, memtrack.Default.Alloc(p.elemSize))
	slot := len(p.dense) - 1
	p.sparse[e.Index()] = slot
	return &p.dense[slot]
}

func (p *pool[T]) get(e Entity) (*T, bool) {
	slot, ok := p.sparse[e.Index()]
	if !ok || p.entities[slot] != e {
		return nil, false
	}
	return &p.dense[slot], true
}

func (p *pool[T]) has(e Entity) bool {
	slot, ok := p.sparse[e.Index()]
	return ok && p.entities[slot] == e
}

// removeEntity swap-deletes e's component: the last dense element is moved
// into the removed slot and the moved entity's sparse pointer is updated,
// then the arrays shrink by one. O(1), matching spec §4.F.
func (p *pool[T]) removeEntity(e Entity) bool {
	slot, ok := p.sparse[e.Index()]
	if !ok || p.entities[slot] != e {
		return false
	}
	if p.destroy != nil {
		p.destroy(&p.dense[slot])
	}
	memtrack.Default.Free(p.allocSites[slot], p.elemSize)

	last := len(p.dense) - 1
	movedEntity := p.entities[last]
	p.dense[slot] = p.dense[last]
	p.entities[slot] = p.entities[last]
	p.allocSites[slot] = p.allocSites[last]
	var zero T
	p.dense[last] = zero
	p.dense = p.dense[:last]
	p.entities = p.entities[:last]
	p.allocSites = p.allocSites[:last]
	delete(p.sparse, e.Index())
	if movedEntity != e {
		p.sparse[movedEntity.Index()] = slot
	}
	return true
}

func (p *pool[T]) len() int { return len(p.dense) }

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func poolFor[T any](w *World) (*pool[T], bool) {
	key, ok := w.typeKeys[typeOf[T]()]
	if !ok {
		return nil, false
	}
	p, ok := w.stores[key].(*pool[T])
	return p, ok
}

// RegisterComponent assigns T a component type key and allocates its pool.
// Registration is one-shot (spec §4.F): calling it again for the same T
// is a benign duplicate (spec §7 DuplicateRegistration) that returns the
// existing key. destroy, if non-nil, is invoked on a component's value
// just before it is removed (by Remove or DestroyEntity).
func RegisterComponent[T any](w *World, destroy func(*T)) ComponentTypeKey {
	t := typeOf[T]()
	if key, ok := w.typeKeys[t]; ok {
		return key
	}
	key := w.nextKey
	w.nextKey++
	w.typeKeys[t] = key
	w.stores[key] = newPool[T](destroy)
	return key
}

// Add attaches a T component to e, or returns the existing one if e
// already has it. ok is false if e is not alive or T was never
// registered.
func Add[T any](w *World, e Entity) (component *T, ok bool) {
	if !w.IsAlive(e) {
		return nil, false
	}
	p, ok := poolFor[T](w)
	if !ok {
		return nil, false
	}
	return p.add(e), true
}

// Get returns e's T component, or nil if e lacks one, is not alive, or T
// was never registered.
func Get[T any](w *World, e Entity) (component *T, ok bool) {
	if !w.IsAlive(e) {
		return nil, false
	}
	p, ok := poolFor[T](w)
	if !ok {
		return nil, false
	}
	return p.get(e)
}

// Has reports whether e currently has a T component.
func Has[T any](w *World, e Entity) bool {
	if !w.IsAlive(e) {
		return false
	}
	p, ok := poolFor[T](w)
	return ok && p.has(e)
}

// Remove detaches e's T component, invoking its destroy callback first.
// Returns false if e had no T component.
func Remove[T any](w *World, e Entity) bool {
	p, ok := poolFor[T](w)
	if !ok {
		return false
	}
	return p.removeEntity(e)
}

// All returns the live entities carrying a T component and their packed,
// contiguous component values, in the same order. Systems iterate these
// slices directly rather than calling Get per entity (spec §4.F
// "Iteration"); mutating a slot in the returned slice mutates the stored
// component in place.
func All[T any](w *World) (entities []Entity, components []T) {
	p, ok := poolFor[T](w)
	if !ok {
		return nil, nil
	}
	return p.entities, p.dense
}

// Count returns the number of live T components, or 0 if T was never
// registered.
func Count[T any](w *World) int {
	p, ok := poolFor[T](w)
	if !ok {
		return 0
	}
	return p.len()
}
