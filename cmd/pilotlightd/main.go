// Command pilotlightd is the bootstrap host (spec §2, modules A-E only): it
// owns the platform shim, data registry, API registry, and extension
// registry, publishes the data registry so extensions can reach
// it, loads the "unity" extension, and drives the frame pump. It never
// imports pkg/ecs or pkg/cdlod directly - everything past module E is
// reached only through coreapi's published interfaces, the same way the
// original's editor never links an extension's internals into app.c.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/pilotlight-tech/pilotlight/internal/platform"
	"github.com/pilotlight-tech/pilotlight/pkg/apiregistry"
	"github.com/pilotlight-tech/pilotlight/pkg/coreapi"
	"github.com/pilotlight-tech/pilotlight/pkg/dataregistry"
	"github.com/pilotlight-tech/pilotlight/pkg/extreg"
)

func main() {
	unityPath := flag.String("unity", "unity.so", "path to the unity extension library")
	inputPath := flag.String("input", "", "path to the input extension library (optional)")
	debug := flag.Bool("debug", false, "enable debug diagnostics on stderr")
	flag.Parse()

	host, err := newHost(*unityPath, *inputPath, *debug)
	if err != nil {
		log.Fatalf("[pilotlight] startup failed: %v", err)
	}

	ebiten.SetWindowTitle("Pilot Light")
	ebiten.SetWindowSize(960, 540)
	if err := ebiten.RunGame(host); err != nil {
		log.Fatalf("[pilotlight] run failed: %v", err)
	}
}

// host implements ebiten.Game as the frame pump described in spec §2: each
// Update calls extReg.Poll() for hot reload, then drives the published ECS
// API once per tick, exactly the shape of app_update being called once per
// frame.
type host struct {
	debug bool

	apiReg  *apiregistry.Registry
	dataReg *dataregistry.Registry
	extReg  *extreg.Registry
}

func newHost(unityPath, inputPath string, debug bool) (*host, error) {
	shim := platform.New()
	apiReg := apiregistry.New()
	dataReg := dataregistry.New()
	extReg := extreg.New(shim, apiReg)

	// Publish the data registry itself so an extension's LoadExt can reach
	// it without the host importing the extension's own state types (spec
	// §4.E's data registry is process-wide, not extension-private).
	apiReg.Set(coreapi.DataRegistryAPI, dataReg)

	if _, err := extReg.Load(unityPath, extreg.WithReloadable(true)); err != nil {
		return nil, fmt.Errorf("pilotlightd: loading unity extension: %w", err)
	}
	if inputPath != "" {
		if _, err := extReg.Load(inputPath, extreg.WithReloadable(true)); err != nil {
			return nil, fmt.Errorf("pilotlightd: loading input extension: %w", err)
		}
	}

	return &host{debug: debug, apiReg: apiReg, dataReg: dataReg, extReg: extReg}, nil
}

// ecsAPI returns the currently published ECS API, or nil if no extension
// has registered one yet (or it was removed by a non-reload unload).
func (h *host) ecsAPI() coreapi.ECS {
	slot := h.apiReg.GetLatest(coreapi.ECSAPI.Name, coreapi.ECSAPI.Major)
	if slot == nil {
		return nil
	}
	api, _ := slot.Get().(coreapi.ECS)
	return api
}

func (h *host) Update() error {
	if err := h.extReg.Poll(); err != nil && h.debug {
		log.Printf("[pilotlight] debug: extension poll reported an error: %v", err)
	}

	if api := h.ecsAPI(); api != nil {
		api.Update(1.0 / float64(ebiten.TPS()))
	}
	return nil
}

func (h *host) Draw(screen *ebiten.Image) {
	entityCount := 0
	if api := h.ecsAPI(); api != nil {
		entityCount = api.EntityCount()
	}
	apiCount := len(h.apiReg.Enumerate())

	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"Pilot Light\nentities: %d\nAPIs: %d\nFPS: %.1f",
		entityCount, apiCount, ebiten.ActualFPS(),
	))
}

func (h *host) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
