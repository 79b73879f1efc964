package cdlod

import (
	"fmt"
	"io"
	"os"
)

// Preprocess reads the heightmap at heightmapPath, runs the full CDLOD
// pipeline, and writes the resulting chunk file to outputPath. It is the
// preprocessor's only entry point; IOError per spec §7 is fatal here.
func Preprocess(cfg Config, heightmapPath, outputPath string) error {
	raw, w, h, err := loadHeightmapRaw16(heightmapPath)
	if err != nil {
		return fmt.Errorf("cdlod: reading heightmap %s: %w", heightmapPath, err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("cdlod: creating output file %s: %w", outputPath, err)
	}
	defer out.Close()

	hm := buildHeightMap(raw, w, h, cfg)
	defer hm.free()
	return WritePreprocessed(hm, cfg, out)
}

// WritePreprocessed runs the error/activation and chunking passes over an
// already-sampled grid and writes the chunk file header and body. Split
// out from Preprocess so tests can drive it with a synthetic grid and an
// in-memory writer instead of real files.
func WritePreprocessed(hm *heightMap, cfg Config, w io.Writer) error {
	if err := hm.computeErrorAndActivation(); err != nil {
		return fmt.Errorf("cdlod: computing activation: %w", err)
	}
	hm.propagateQuadtree()

	bw := &binWriter{w: w}
	bw.write(int32(cfg.TreeDepth))
	bw.write(float32(cfg.MaxBaseError))
	bw.write(totalChunkCount(cfg.TreeDepth))
	if bw.err != nil {
		return fmt.Errorf("cdlod: writing header: %w", bw.err)
	}

	if err := meshNode(hm, w, cfg, 0, 0, hm.logSize, cfg.TreeDepth); err != nil {
		return fmt.Errorf("cdlod: writing chunks: %w", err)
	}
	return nil
}

// totalChunkCount returns 4^0 + 4^1 + ... + 4^depth = (4^(depth+1)-1)/3,
// the number of nodes in a quadtree of depth `depth` (root included).
func totalChunkCount(depth int) uint32 {
	var count, power uint32 = 0, 1
	for i := 0; i <= depth; i++ {
		count += power
		power *= 4
	}
	return count
}
