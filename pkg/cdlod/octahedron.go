package cdlod

import "math"

// encodeNormal packs a unit normal into two floats via an octahedral
// projection: fold the lower hemisphere into the upper one, then remap
// [-1,1] to [0,1] so the bytes are friendly to unsigned texture formats.
// decodeNormal must invert this exactly; TestEncodeDecodeNormalRoundTrip
// pins the pairing.
func encodeNormal(n Vec3) [2]float32 {
	denom := math.Abs(n.X) + math.Abs(n.Y) + math.Abs(n.Z)
	if denom == 0 {
		denom = 1
	}
	n = n.Scale(1 / denom)

	xy := Vec2{X: n.X, Y: n.Y}
	if n.Z <= 0 {
		xy = octWrap(xy)
	}
	xy = xy.Scale(0.5)
	xy.X += 0.5
	xy.Y += 0.5
	return [2]float32{float32(xy.X), float32(xy.Y)}
}

func decodeNormal(e [2]float32) Vec3 {
	x := float64(e[0])*2 - 1
	y := float64(e[1])*2 - 1
	z := 1 - math.Abs(x) - math.Abs(y)
	if z < 0 {
		oldX := x
		x = (1 - math.Abs(y)) * sign(oldX)
		y = (1 - math.Abs(oldX)) * sign(y)
	}
	return Vec3{x, y, z}.Normalize()
}

func octWrap(v Vec2) Vec2 {
	w := Vec2{X: 1 - math.Abs(v.Y), Y: 1 - math.Abs(v.X)}
	if v.X < 0 {
		w.X = -w.X
	}
	if v.Y < 0 {
		w.Y = -w.Y
	}
	return w
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
