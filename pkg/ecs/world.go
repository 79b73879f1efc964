package ecs

import (
	"fmt"
	"os"
	"reflect"
)

// World owns entity identity, every registered component pool, and the
// system schedule. One World is never mutated concurrently (spec §5);
// it is owned by the application, not by this package.
type World struct {
	debug bool

	em entityManager

	stores   map[ComponentTypeKey]componentStore
	typeKeys map[reflect.Type]ComponentTypeKey
	nextKey  ComponentTypeKey

	systemsByPhase map[Phase][]System
}

// NewWorld returns an empty World with the built-in tag, hierarchy,
// transform, and animation components pre-registered.
func NewWorld() *World {
	w := &World{
		stores:         make(map[ComponentTypeKey]componentStore),
		typeKeys:       make(map[reflect.Type]ComponentTypeKey),
		systemsByPhase: make(map[Phase][]System),
	}
	RegisterComponent[TagComponent](w, nil)
	RegisterComponent[HierarchyComponent](w, nil)
	RegisterComponent[TransformComponent](w, nil)
	RegisterComponent[AnimationComponent](w, nil)
	return w
}

// SetDebug enables a stderr diagnostic when DestroyEntity is given a stale
// handle. It adds no other checks: invariant violations are reported
// through false or error returns whether or not debug is set.
func (w *World) SetDebug(debug bool) { w.debug = debug }

// CreateEntity allocates a new entity and attaches its tag component.
func (w *World) CreateEntity(name string) Entity {
	e := w.em.create()
	tag, _ := Add[TagComponent](w, e)
	tag.Name = name
	return e
}

// DestroyEntity removes every component attached to e (invoking each
// type's destroy callback), reparents e's hierarchy children to e's own
// parent, and bumps e's generation. Returns false if e was already stale.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.em.isAlive(e) {
		if w.debug {
			fmt.Fprintf(os.Stderr, "[pilotlight] ecs debug: DestroyEntity called on stale handle %v\n", e)
		}
		return false
	}
	w.reparentChildrenOf(e)
	for _, store := range w.stores {
		store.removeEntity(e)
	}
	return w.em.destroy(e)
}

// IsAlive reports whether e's generation matches its slot's current
// generation (spec §8 invariant 2).
func (w *World) IsAlive(e Entity) bool {
	return w.em.isAlive(e)
}

// EntityCount returns the number of currently-alive entities. Every live
// entity carries exactly one TagComponent (CreateEntity attaches it, and
// DestroyEntity strips every component before freeing the slot), so the
// tag pool's size is the live entity count.
func (w *World) EntityCount() int {
	return Count[TagComponent](w)
}
