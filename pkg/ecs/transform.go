package ecs

import "math"

// Vec3 is a 3D vector used for translation and scale.
type Vec3 struct {
	X, Y, Z float64
}

// Quat is a unit quaternion used for rotation. The zero value is NOT the
// identity; use IdentityQuat.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat is the no-rotation quaternion.
var IdentityQuat = Quat{W: 1}

// IdentityScale is the no-scale Vec3 (1,1,1); the Vec3 zero value means
// "collapse to a point," so TransformComponent must default to this
// rather than its zero value.
var IdentityScale = Vec3{X: 1, Y: 1, Z: 1}

// Mat4 is a column-major 4x4 matrix, stored as 16 floats: column c, row r
// is at index c*4+r. This matches the layout graphics APIs expect when the
// array is uploaded directly.
type Mat4 [16]float64

// Identity4 returns the identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul4 multiplies a*b (a applied after b, i.e. a point p transforms as
// Mul4(parent,local)*p = parent*(local*p)).
func Mul4(a, b Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Translation extracts the matrix's translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{X: m[12], Y: m[13], Z: m[14]}
}

// Compose builds a TRS matrix: scale first, then rotate, then translate —
// the 3D generalization of willow's 2D computeLocalTransform (spec §4.F
// TransformComponent: "local = T*R*S").
func Compose(t Vec3, r Quat, s Vec3) Mat4 {
	rot := r.toMat4()
	// Apply scale to rotation's basis columns, then set translation.
	m := Mat4{
		rot[0] * s.X, rot[1] * s.X, rot[2] * s.X, 0,
		rot[4] * s.Y, rot[5] * s.Y, rot[6] * s.Y, 0,
		rot[8] * s.Z, rot[9] * s.Z, rot[10] * s.Z, 0,
		t.X, t.Y, t.Z, 1,
	}
	return m
}

// toMat4 converts a unit quaternion to a rotation matrix.
func (q Quat) toMat4() Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n == 0 {
		return Identity4()
	}
	x, y, z, w = x/n, y/n, z/n, w/n

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0,
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0,
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// TransformComponent holds an entity's local TRS fields plus the composed
// local and world matrices (spec §3/§4.F). Construct via NewTransform so
// Scale defaults to (1,1,1) and Rotation to identity.
type TransformComponent struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3

	Local Mat4
	World Mat4
}

// NewTransform returns a TransformComponent at the origin with identity
// rotation and unit scale.
func NewTransform() TransformComponent {
	return TransformComponent{
		Rotation: IdentityQuat,
		Scale:    IdentityScale,
		Local:    Identity4(),
		World:    Identity4(),
	}
}

// AddTransform attaches a default-initialised TransformComponent to e,
// or returns the existing one.
func AddTransform(w *World, e Entity) *TransformComponent {
	if tr, ok := Get[TransformComponent](w, e); ok {
		return tr
	}
	tr, ok := Add[TransformComponent](w, e)
	if !ok {
		return nil
	}
	*tr = NewTransform()
	return tr
}

// TransformSystem recomputes every entity's Local matrix from its TRS
// fields (spec §4.F "The transform system composes local = T·R·S for
// every transform"). It must run before HierarchySystem within the same
// frame; the fixed phase order (TRANSFORM then HIERARCHY) guarantees this.
func TransformSystem(w *World, dt float64) {
	_, transforms := All[TransformComponent](w)
	for i := range transforms {
		t := &transforms[i]
		t.Local = Compose(t.Translation, t.Rotation, t.Scale)
	}
}
