package ecs

// TagComponent is attached to every live entity by CreateEntity, satisfying
// spec §3 invariant (i): "every live entity has a tag component." It also
// gives every entity a debug-friendly name without requiring one.
type TagComponent struct {
	Name string
}
