// Command input is a reloadable extension publishing pointer/mouse state as
// coreapi.Pointer. It carries no persistent state of its own (ebiten's
// input functions are already queryable at any time), so unlike
// extensions/unity it has nothing to stash in the data registry across a
// reload — it simply re-registers the same API table.
package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pilotlight-tech/pilotlight/pkg/apiregistry"
	"github.com/pilotlight-tech/pilotlight/pkg/coreapi"
)

var pointerSlot *apiregistry.Slot

// ebitenPointer implements coreapi.Pointer directly over ebiten's global
// input queries (grounded on willow/input.go's processInput, which reads
// ebiten.CursorPosition and ebiten.IsMouseButtonPressed the same way).
type ebitenPointer struct{}

func (ebitenPointer) Position() (x, y float64) {
	ix, iy := ebiten.CursorPosition()
	return float64(ix), float64(iy)
}

func (ebitenPointer) Pressed(button int) bool {
	return ebiten.IsMouseButtonPressed(ebiten.MouseButton(button))
}

var _ coreapi.Pointer = ebitenPointer{}

// LoadExt registers the pointer API. reload is irrelevant here since the
// table carries no state of its own.
func LoadExt(apiReg *apiregistry.Registry, reload bool) {
	pointerSlot = apiReg.Set(coreapi.PointerAPI, coreapi.Pointer(ebitenPointer{}))
}

// UnloadExt removes the registration on a real unload; a reload leaves it
// for the next LoadExt to replace in place.
func UnloadExt(apiReg *apiregistry.Registry, reload bool) {
	if reload {
		return
	}
	apiReg.Remove(pointerSlot)
	pointerSlot = nil
}

func main() {}
