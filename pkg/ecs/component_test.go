package ecs

import "testing"

type velocityComponent struct {
	X, Y float64
}

func TestAddGetRemove(t *testing.T) {
	w := NewWorld()
	RegisterComponent[velocityComponent](w, nil)
	e := w.CreateEntity("e")

	if _, ok := Get[velocityComponent](w, e); ok {
		t.Fatal("Get before Add should fail")
	}

	v, ok := Add[velocityComponent](w, e)
	if !ok {
		t.Fatal("Add should succeed")
	}
	v.X, v.Y = 1, 2

	got, ok := Get[velocityComponent](w, e)
	if !ok || got.X != 1 || got.Y != 2 {
		t.Errorf("Get after Add = (%v,ok=%v), want ({1 2},ok=true)", got, ok)
	}

	if !Remove[velocityComponent](w, e) {
		t.Fatal("Remove should succeed")
	}
	if _, ok := Get[velocityComponent](w, e); ok {
		t.Error("Get after Remove should fail")
	}
}

func TestAddTwiceReturnsExisting(t *testing.T) {
	w := NewWorld()
	RegisterComponent[velocityComponent](w, nil)
	e := w.CreateEntity("e")

	v1, _ := Add[velocityComponent](w, e)
	v1.X = 5
	v2, _ := Add[velocityComponent](w, e)
	if v2.X != 5 {
		t.Errorf("second Add should return the existing component, got X=%v", v2.X)
	}
}

// TestSwapDeleteKeepsDenseContiguous is scenario S3: on a library with
// entities a,b,c each carrying T, remove T from a. Expect get(T,a)=nil,
// get(T,b)!=nil, get(T,c)!=nil, dense count=2.
func TestSwapDeleteKeepsDenseContiguous(t *testing.T) {
	w := NewWorld()
	RegisterComponent[velocityComponent](w, nil)

	a := w.CreateEntity("a")
	b := w.CreateEntity("b")
	c := w.CreateEntity("c")
	va, _ := Add[velocityComponent](w, a)
	va.X = 1
	vb, _ := Add[velocityComponent](w, b)
	vb.X = 2
	vc, _ := Add[velocityComponent](w, c)
	vc.X = 3

	if !Remove[velocityComponent](w, a) {
		t.Fatal("Remove(a) should succeed")
	}

	if _, ok := Get[velocityComponent](w, a); ok {
		t.Error("Get(a) should fail after removal")
	}
	if got, ok := Get[velocityComponent](w, b); !ok || got.X != 2 {
		t.Errorf("Get(b) = (%v,%v), want (2,true)", got, ok)
	}
	if got, ok := Get[velocityComponent](w, c); !ok || got.X != 3 {
		t.Errorf("Get(c) = (%v,%v), want (3,true)", got, ok)
	}
	if got := Count[velocityComponent](w); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}

	entities, comps := All[velocityComponent](w)
	if len(entities) != 2 || len(comps) != 2 {
		t.Fatalf("All() returned %d entities, %d comps, want 2,2", len(entities), len(comps))
	}
	for _, e := range entities {
		if e == a {
			t.Error("All() should not include the removed entity")
		}
	}
}

func TestDestroyEntityRemovesAllComponents(t *testing.T) {
	w := NewWorld()
	RegisterComponent[velocityComponent](w, nil)
	e := w.CreateEntity("e")
	Add[velocityComponent](w, e)
	AddTransform(w, e)

	w.DestroyEntity(e)

	if Count[velocityComponent](w) != 0 {
		t.Error("velocity component should be gone after DestroyEntity")
	}
	if Count[TransformComponent](w) != 0 {
		t.Error("transform component should be gone after DestroyEntity")
	}
	if Count[TagComponent](w) != 0 {
		t.Error("tag component should be gone after DestroyEntity")
	}
}

func TestDestroyInvokesCallback(t *testing.T) {
	w := NewWorld()
	var destroyed []float64
	RegisterComponent[velocityComponent](w, func(v *velocityComponent) {
		destroyed = append(destroyed, v.X)
	})
	e := w.CreateEntity("e")
	v, _ := Add[velocityComponent](w, e)
	v.X = 42

	Remove[velocityComponent](w, e)

	if len(destroyed) != 1 || destroyed[0] != 42 {
		t.Errorf("destroy callback saw %v, want [42]", destroyed)
	}
}

func TestEveryEntityHasTag(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity("named")
	tag, ok := Get[TagComponent](w, e)
	if !ok {
		t.Fatal("every live entity should carry a TagComponent")
	}
	if tag.Name != "named" {
		t.Errorf("tag.Name = %q, want %q", tag.Name, "named")
	}
}
