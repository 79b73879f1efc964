// Command unity is a reloadable extension exporting LoadExt/UnloadExt. It
// owns the application's ecs.World: it creates one on first load, publishes
// it in the data registry so a later hot reload finds the same world
// instead of recreating it, and registers the world under coreapi.ECSAPI so
// cmd/pilotlightd can drive it without importing pkg/ecs itself. Grounded
// on original_source/extensions/pl_starter_ext.c's pl_load_starter_ext /
// pl_unload_starter_ext (build an API table, fetch dependency APIs, stash
// or recover the extension's persistent context via the data registry
// depending on the reload flag).
package main

import (
	"fmt"

	"github.com/pilotlight-tech/pilotlight/pkg/apiregistry"
	"github.com/pilotlight-tech/pilotlight/pkg/coreapi"
	"github.com/pilotlight-tech/pilotlight/pkg/dataregistry"
	"github.com/pilotlight-tech/pilotlight/pkg/ecs"
)

// ecsSlot is the apiregistry.Slot this extension registered coreapi.ECSAPI
// in, kept so UnloadExt can remove it on a real (non-reload) unload.
var ecsSlot *apiregistry.Slot

// worldAPI adapts *ecs.World to coreapi.ECS; the two already share the same
// method shapes, this only exists so the published value's type doesn't
// leak pkg/ecs into the host's import graph beyond the interface itself.
type worldAPI struct{ world *ecs.World }

func (a worldAPI) Update(dt float64) { a.world.Update(dt) }
func (a worldAPI) EntityCount() int  { return a.world.EntityCount() }

var _ coreapi.ECS = worldAPI{}

// LoadExt registers coreapi.ECSAPI, recovering the ecs.World from the data
// registry on reload (spec §4.E "the only state that may outlive a reload
// is that published in the data registry") or creating a fresh one and
// registering this extension's systems against the TRANSFORM, HIERARCHY,
// and ANIMATION phases otherwise — a reloaded World already carries its
// registered systems, so they are only added once per process.
func LoadExt(apiReg *apiregistry.Registry, reload bool) {
	dataReg := fetchDataRegistry(apiReg)

	var world *ecs.World
	if reload {
		w, ok := dataregistry.Get[*ecs.World](dataReg, coreapi.ECSWorldKey)
		if !ok {
			panic("unity: reload with no ecs.World in the data registry")
		}
		world = w
	} else {
		world = ecs.NewWorld()
		world.RegisterSystem(ecs.System{Name: "transform", Phase: ecs.PhaseTransform, Fn: ecs.TransformSystem})
		world.RegisterSystem(ecs.System{Name: "hierarchy", Phase: ecs.PhaseHierarchy, Fn: ecs.HierarchySystem})
		world.RegisterSystem(ecs.System{Name: "animation", Phase: ecs.PhaseAnimation, Fn: ecs.AnimationSystem})
		dataReg.Set(coreapi.ECSWorldKey, world)
	}

	ecsSlot = apiReg.Set(coreapi.ECSAPI, coreapi.ECS(worldAPI{world: world}))
}

// UnloadExt removes the ECS API registration on a real unload. On a
// reload-triggered unload the world stays in the data registry and the API
// registration is left for the fresh LoadExt call to replace in place.
func UnloadExt(apiReg *apiregistry.Registry, reload bool) {
	if reload {
		return
	}
	apiReg.Remove(ecsSlot)
	ecsSlot = nil
}

func fetchDataRegistry(apiReg *apiregistry.Registry) *dataregistry.Registry {
	slot := apiReg.GetLatest(coreapi.DataRegistryAPI.Name, coreapi.DataRegistryAPI.Major)
	if slot == nil {
		panic("unity: DataRegistry API not published by the host")
	}
	dataReg, ok := slot.Get().(*dataregistry.Registry)
	if !ok {
		panic(fmt.Sprintf("unity: DataRegistry API slot holds %T, not *dataregistry.Registry", slot.Get()))
	}
	return dataReg
}

func main() {}
