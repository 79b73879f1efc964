// Package coreapi holds the API descriptors and data registry keys shared
// between cmd/pilotlightd and the extensions it loads. The original source
// gives every cross-extension interface a compile-time macro name (e.g.
// plDataRegistryI, plEcsI); this package is the Go equivalent of that
// naming convention, so the host and an extension agree on a descriptor or
// key without either one reaching into the other's package.
package coreapi

import "github.com/pilotlight-tech/pilotlight/pkg/apiregistry"

// Well-known API descriptors. An extension depending on one of these calls
// apiReg.GetLatest(Name, Major) and type-asserts the slot's value to the
// matching interface below.
var (
	// DataRegistryAPI names the process-wide data registry itself,
	// published once by cmd/pilotlightd at startup so every extension can
	// reach it without the host importing the extension's own state types.
	DataRegistryAPI = apiregistry.Descriptor{Name: "DataRegistry", Major: 1}

	// ECSAPI names the ECS world an extension such as extensions/unity
	// publishes. The host drives it generically through the ECS interface
	// below without importing pkg/ecs itself (spec §2's "host calls
	// app_update once per frame" is satisfied by the host calling
	// ECS.Update, not by the host owning a *ecs.World directly).
	ECSAPI = apiregistry.Descriptor{Name: "ECS", Major: 1}

	// PointerAPI names the pointer/mouse state extensions/input publishes.
	PointerAPI = apiregistry.Descriptor{Name: "Pointer", Major: 1}
)

// Data registry keys for state that must survive a hot reload (spec §4.E,
// §9 "the only state that may outlive a reload is that published in the
// data registry").
const (
	ECSWorldKey = "pilotlight.ecs.world"
)

// ECS is the generic surface cmd/pilotlightd drives every tick. Any
// extension publishing ECSAPI must provide a value implementing this.
type ECS interface {
	// Update runs every ECS phase once, in the fixed §4.F order.
	Update(dt float64)
	// EntityCount reports the number of currently-alive entities, for the
	// host's debug HUD.
	EntityCount() int
}

// Pointer is the generic surface extensions/input publishes: the current
// cursor position and button state, independent of the windowing backend.
type Pointer interface {
	Position() (x, y float64)
	Pressed(button int) bool
}
