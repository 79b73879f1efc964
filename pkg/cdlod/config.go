package cdlod

// BoundaryPolicy controls what happens to a diamond-merge candidate whose
// mate lies outside the current chunking node (spec open question: the
// boundary-triangle policy is implementation-defined and must be exposed
// as a flag rather than silently decided).
type BoundaryPolicy int

const (
	// BoundaryStaySplit never drops detail at a chunk boundary that has
	// no merge mate; it is the conservative default.
	BoundaryStaySplit BoundaryPolicy = iota
	// BoundaryForceMerge merges a boundary diamond even without a mate,
	// trading a small quality loss at chunk seams for fewer triangles.
	BoundaryForceMerge
)

// EllipsoidParams switches the preprocessor from planar to spherical
// sampling, for planet-scale terrain. Radius is in the same world units
// as MetersPerPixel. The sphere is centered at the origin: Config.Center.X
// and Center.Z offset the planar sample coordinates before they are mapped
// onto it, and Center.Y is not used.
type EllipsoidParams struct {
	Radius float64
}

// Config parameterizes a single Preprocess run.
type Config struct {
	MaxBaseError   float64
	MetersPerPixel float64
	MinHeight      float64
	MaxHeight      float64
	// TreeDepth is D: the preprocessor emits (4^(D+1)-1)/3 chunks across
	// D+1 quadtree levels, root included.
	TreeDepth int
	Center    Vec3

	Ellipsoid      *EllipsoidParams
	BoundaryPolicy BoundaryPolicy
}

func (c Config) isEllipsoid() bool { return c.Ellipsoid != nil }
