// Command cdlodgen is the offline preprocessor CLI (spec §6): it runs the
// CDLOD pipeline over a heightmap file and writes a chunk file, the only
// artifact the system persists to disk outside of the loaded extensions
// themselves.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pilotlight-tech/pilotlight/pkg/cdlod"
)

func main() {
	heightmapPath := flag.String("heightmap", "", "path to the source heightmap (PNG or float32 TIFF)")
	outputPath := flag.String("out", "", "path to write the chunk file to")
	treeDepth := flag.Int("depth", 4, "quadtree depth (root included); emits (4^(depth+1)-1)/3 chunks")
	maxBaseError := flag.Float64("max-error", 1.0, "maximum allowed geometric error at the base level, in world units")
	metersPerPixel := flag.Float64("meters-per-pixel", 1.0, "world-space spacing between adjacent heightmap samples")
	minHeight := flag.Float64("min-height", 0, "world-space height mapped from a raw sample value of 0")
	maxHeight := flag.Float64("max-height", 100, "world-space height mapped from the maximum raw sample value")
	ellipsoidRadius := flag.Float64("ellipsoid-radius", 0, "if > 0, sample onto a sphere of this radius instead of a flat plane")
	forceMerge := flag.Bool("force-merge-boundaries", false, "merge boundary diamonds without a mate, trading quality for fewer triangles")
	flag.Parse()

	if *heightmapPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "cdlodgen: -heightmap and -out are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := cdlod.Config{
		MaxBaseError:   *maxBaseError,
		MetersPerPixel: *metersPerPixel,
		MinHeight:      *minHeight,
		MaxHeight:      *maxHeight,
		TreeDepth:      *treeDepth,
	}
	if *ellipsoidRadius > 0 {
		cfg.Ellipsoid = &cdlod.EllipsoidParams{Radius: *ellipsoidRadius}
	}
	if *forceMerge {
		cfg.BoundaryPolicy = cdlod.BoundaryForceMerge
	}

	if err := cdlod.Preprocess(cfg, *heightmapPath, *outputPath); err != nil {
		log.Fatalf("cdlodgen: %v", err)
	}
}
