package ecs

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// AnimatedField selects which TransformComponent field an AnimationComponent
// drives.
type AnimatedField uint8

const (
	FieldTranslationX AnimatedField = iota
	FieldTranslationY
	FieldTranslationZ
	FieldScaleX
	FieldScaleY
	FieldScaleZ
)

// AnimationComponent drives one field of the Target entity's
// TransformComponent via a gween tween, run during the ANIMATION phase
// (spec §4.F). This generalizes willow's TweenGroup (animation.go), which
// advances a *float64 it holds directly — Pilot Light cannot do that
// safely, because a component pool's swap-delete on removal (or slice
// growth on Add) can relocate any element, turning a cached field pointer
// into a dangling one. Instead AnimationSystem re-resolves Target's
// TransformComponent through Get every tick.
type AnimationComponent struct {
	Target Entity
	Field  AnimatedField
	Tween  *gween.Tween
	Done   bool
}

// NewTween creates an AnimationComponent tweening target's Field from from
// to to over duration seconds using the given easing function.
func NewTween(target Entity, field AnimatedField, from, to, duration float32, fn ease.TweenFunc) AnimationComponent {
	return AnimationComponent{
		Target: target,
		Field:  field,
		Tween:  gween.New(from, to, duration, fn),
	}
}

// AnimationSystem advances every AnimationComponent by dt and writes the
// result into its target's TransformComponent. Entities whose target has
// been destroyed, or has no TransformComponent, are skipped (not an
// error: the animation simply has nothing to drive).
func AnimationSystem(w *World, dt float64) {
	_, comps := All[AnimationComponent](w)
	for i := range comps {
		c := &comps[i]
		if c.Done || c.Tween == nil {
			continue
		}
		val, finished := c.Tween.Update(float32(dt))
		c.Done = finished

		tr, ok := Get[TransformComponent](w, c.Target)
		if !ok {
			continue
		}
		switch c.Field {
		case FieldTranslationX:
			tr.Translation.X = float64(val)
		case FieldTranslationY:
			tr.Translation.Y = float64(val)
		case FieldTranslationZ:
			tr.Translation.Z = float64(val)
		case FieldScaleX:
			tr.Scale.X = float64(val)
		case FieldScaleY:
			tr.Scale.Y = float64(val)
		case FieldScaleZ:
			tr.Scale.Z = float64(val)
		}
	}
}
