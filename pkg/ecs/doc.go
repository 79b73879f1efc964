// Package ecs is Pilot Light's entity-component system core (spec §4.F):
// entity allocation with generations, type-erased-but-type-safe component
// storage (sparse index over a dense array, swap-delete on removal),
// ordered system execution by phase, and hierarchy/transform propagation.
//
// The world is single-threaded and cooperative (spec §5): no method here
// takes a lock, matching willow's own "no atomic — willow is single-
// threaded" convention for its node ID counter.
package ecs
