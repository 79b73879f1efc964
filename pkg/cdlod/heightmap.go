package cdlod

import (
	"fmt"
	"image"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"golang.org/x/image/tiff"

	"github.com/pilotlight-tech/pilotlight/internal/memtrack"
)

const noVertexIndex = ^uint32(0)

// mapElement is one sample of the world-space grid: its world position,
// octahedron-encoded normal, and the Lindstrom-Koller error/activation
// state computed over it.
type mapElement struct {
	x, z int
	pos  Vec3

	normal [2]float32

	errorVal   float64
	activation int

	vertexIndex uint32
}

// heightMap is the padded N = 2^k+1 world-space sampling grid a heightmap
// image is resampled into, plus the per-sample LK state needed by both the
// error/activation pass and the chunking pass.
type heightMap struct {
	size    int
	logSize int

	elements []mapElement
	cfg      Config

	allocSite  memtrack.Site
	allocBytes int64
}

// free reports the grid's allocation as released (spec §3 "memory
// tracker"). Called once the grid has been fully consumed by the
// error/activation and chunking passes.
func (hm *heightMap) free() {
	memtrack.Default.Free(hm.allocSite, hm.allocBytes)
}

func (hm *heightMap) get(x, z int) *mapElement {
	return &hm.elements[x+hm.size*z]
}

func (hm *heightMap) elementAt(idx int) *mapElement {
	return &hm.elements[idx]
}

// vertexIndex returns the linear index of grid sample (x,z), or -1 if the
// coordinates fall outside the grid.
func (hm *heightMap) vertexIndex(x, z int) int {
	if x < 0 || x >= hm.size || z < 0 || z >= hm.size {
		return -1
	}
	return x + hm.size*z
}

// nodeIndex returns the breadth-first quadtree rank of the node centered
// at grid coordinates (x,z), in NW-NE-SW-SE traversal order.
func (hm *heightMap) nodeIndex(x, z int) int {
	if x < 0 || x >= hm.size || z < 0 || z >= hm.size {
		return -1
	}
	l1 := lowestOneBit(x | z)
	depth := hm.logSize - l1 - 1
	if depth < 0 {
		// x and z are both 0: this node sits exactly on the grid origin,
		// the finest possible granularity this heightmap can express.
		depth = 0
	}

	base := 0x55555555 & ((1 << uint(depth*2)) - 1)
	shift := uint(l1 + 1)
	col := x >> shift
	row := z >> shift
	return base + (row << uint(depth)) + col
}

func lowestOneBit(x int) int {
	if x == 0 {
		return 32
	}
	n := 0
	for x&1 == 0 {
		x >>= 1
		n++
	}
	return n
}

func activate(e *mapElement, level int) {
	if level > e.activation {
		e.activation = level
	}
}

// buildHeightMap resamples a raw 16-bit grayscale image of size srcW x
// srcH into the padded world-space sampling grid (spec §4.G Step 1).
// Rows/columns beyond the source image repeat the last valid sample, and
// the grid's last row and column repeat the ones before them, so a source
// that is already 2^k+1 wide has its own last row and column replaced.
func buildHeightMap(raw []uint16, srcW, srcH int, cfg Config) *heightMap {
	n := srcW
	if srcH > n {
		n = srcH
	}
	logSize := 0
	for (1<<uint(logSize))+1 < n {
		logSize++
	}
	size := (1 << uint(logSize)) + 1

	padded := make([]uint16, size*size)
	for i := 0; i < size-1; i++ {
		for j := 0; j < size-1; j++ {
			sx, sy := i, j
			if sx > srcW-1 {
				sx = srcW - 1
			}
			if sy > srcH-1 {
				sy = srcH - 1
			}
			padded[j*size+i] = raw[sy*srcW+sx]
		}
	}

	elements := make([]mapElement, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			x := i
			if x > size-2 {
				x = size - 2
			}
			y := j
			if y > size-2 {
				y = size - 2
			}
			raw16 := padded[y*size+x]
			height := float64(raw16)/65535*(cfg.MaxHeight-cfg.MinHeight) + cfg.MinHeight

			var pos Vec3
			if cfg.isEllipsoid() {
				pos = ellipsoidPosition(i, j, size, cfg, height)
			} else {
				pos = planarPosition(i, j, size, cfg, height)
			}

			elements[i+size*j] = mapElement{
				x: i, z: j, pos: pos,
				activation:  -1,
				vertexIndex: noVertexIndex,
			}
		}
	}

	elemBytes := int64(len(elements)) * int64(unsafe.Sizeof(mapElement{}))
	hm := &heightMap{
		size: size, logSize: logSize, elements: elements, cfg: cfg,
		allocBytes: elemBytes,
	}
	hm.allocSite = memtrack.Default.Alloc(elemBytes)
	hm.computeNormals()
	return hm
}

func planarPosition(i, j, size int, cfg Config, height float64) Vec3 {
	half := float64(size) * cfg.MetersPerPixel * 0.5
	x := float64(i)*cfg.MetersPerPixel + cfg.Center.X - half
	z := float64(j)*cfg.MetersPerPixel + cfg.Center.Z - half
	return Vec3{X: x, Y: height + cfg.Center.Y, Z: z}
}

func ellipsoidPosition(i, j, size int, cfg Config, height float64) Vec3 {
	minExtent := -float64(size) * cfg.MetersPerPixel * 0.5
	extent := float64(size-1) * cfg.MetersPerPixel

	x := float64(i)*extent/float64(size-1) + minExtent + cfg.Center.X
	z := float64(j)*extent/float64(size-1) + minExtent + cfg.Center.Z

	longitude := math.Atan2(x, z)
	r := math.Hypot(x, z)
	latitude := -math.Pi/2 + 2*math.Atan2(r, cfg.Ellipsoid.Radius)

	spherePos := Vec3{
		X: cfg.Ellipsoid.Radius * math.Cos(latitude) * math.Cos(longitude),
		Y: cfg.Ellipsoid.Radius * math.Sin(latitude),
		Z: cfg.Ellipsoid.Radius * math.Cos(latitude) * math.Sin(longitude),
	}
	normal := spherePos.Normalize()
	return spherePos.Add(normal.Scale(height))
}

// computeNormals fills in each sample's octahedron-encoded normal from
// central differences against its grid neighbours.
func (hm *heightMap) computeNormals() {
	n := hm.size
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			iL, iR := i, i
			if i > 0 {
				iL = i - 1
			}
			if i < n-1 {
				iR = i + 1
			}
			jD, jU := j, j
			if j > 0 {
				jD = j - 1
			}
			if j < n-1 {
				jU = j + 1
			}

			var normal Vec3
			if hm.cfg.isEllipsoid() {
				pL, pR := hm.get(iL, j).pos, hm.get(iR, j).pos
				pD, pU := hm.get(i, jD).pos, hm.get(i, jU).pos
				tX := pR.Sub(pL)
				tZ := pU.Sub(pD)
				normal = cross(tZ, tX).Normalize()
			} else {
				hL, hR := hm.get(iL, j).pos.Y, hm.get(iR, j).pos.Y
				hD, hU := hm.get(i, jD).pos.Y, hm.get(i, jU).pos.Y
				dx, dz := hm.cfg.MetersPerPixel, hm.cfg.MetersPerPixel
				tX := Vec3{X: 2 * dx, Y: hR - hL, Z: 0}
				tZ := Vec3{X: 0, Y: hU - hD, Z: 2 * dz}
				normal = cross(tZ, tX).Normalize()
			}
			hm.get(i, j).normal = encodeNormal(normal)
		}
	}
}

// loadHeightmapRaw16 decodes a heightmap image file and normalises every
// sample to 16-bit, regardless of the source bit depth. An 8-bit PNG, a
// 16-bit PNG, and a 32-bit-float TIFF carrying the same visible values
// therefore produce identical LODs, per §4.G's numeric notes.
func loadHeightmapRaw16(path string) (raw []uint16, width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	img, err := decodeHeightmapImage(path, f)
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	raw = make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			raw[y*width+x] = uint16(r)
		}
	}
	return raw, width, height, nil
}

func decodeHeightmapImage(path string, r io.Reader) (image.Image, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return image.Decode(r)
	case ".tif", ".tiff":
		return tiff.Decode(r)
	default:
		return nil, fmt.Errorf("cdlod: unsupported heightmap format %q", ext)
	}
}
