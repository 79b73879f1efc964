package chunkfile

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pilotlight-tech/pilotlight/pkg/cdlod"
)

// rawChunk is the on-wire shape of one chunk record, used by encodeManual
// to hand-encode fixture files byte-for-byte: Chunk no longer holds vertex/
// index payloads, so tests can't round-trip through Tree.Write to produce
// the "original" bytes the way they used to.
type rawChunk struct {
	label   int32
	level   int32
	aabbMin [3]float32
	aabbMax [3]float32
	verts   []Vertex
	indices []uint32
}

func encodeManual(t *testing.T, chunks []rawChunk) []byte {
	t.Helper()
	var buf bytes.Buffer
	write := func(v any) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("encoding fixture: %v", err)
		}
	}
	write(int32(1))            // tree_depth
	write(float32(0.5))        // max_base_error
	write(uint32(len(chunks))) // chunk_count
	for _, c := range chunks {
		write(c.label)
		write(c.level)
		write(c.aabbMin)
		write(c.aabbMax)
		write(uint32(len(c.verts)))
		for _, v := range c.verts {
			write(v)
		}
		write(uint32(len(c.indices)))
		for _, idx := range c.indices {
			write(idx)
		}
	}
	return buf.Bytes()
}

// buildManual encodes a two-chunk file matching a TreeDepth=1 tree: one
// root (level 1) with a single leaf child (level 0), the simplest shape
// that still exercises the parent/child reconstruction in Load.
func buildManual(t *testing.T) []byte {
	t.Helper()
	return encodeManual(t, []rawChunk{
		{
			label:   0,
			level:   1,
			aabbMin: [3]float32{0, 0, 0},
			aabbMax: [3]float32{1, 0, 1},
			verts: []Vertex{
				{Pos: [3]float32{0, 0, 0}, Normal: [2]float32{0.5, 0.5}},
				{Pos: [3]float32{1, 0, 1}, Normal: [2]float32{0.5, 0.5}},
				{Pos: [3]float32{1, 0, 0}, Normal: [2]float32{0.5, 0.5}},
			},
			indices: []uint32{0, 1, 2},
		},
		{
			label:   1,
			level:   0,
			aabbMin: [3]float32{0, 0, 0},
			aabbMax: [3]float32{1, 0, 1},
			verts: []Vertex{
				{Pos: [3]float32{0, 0, 0}, Normal: [2]float32{0.5, 0.5}},
				{Pos: [3]float32{1, 0, 1}, Normal: [2]float32{0.5, 0.5}},
				{Pos: [3]float32{0, 0, 1}, Normal: [2]float32{0.5, 0.5}},
			},
			indices: []uint32{0, 1, 2},
		},
	})
}

// TestLoadThenWriteRoundTrips is scenario S7: load a chunk file, serialise
// the loaded tree back out, and expect byte-identical output. Write never
// decodes the payload; it streams it straight back out of the same reader
// Load consumed.
func TestLoadThenWriteRoundTrips(t *testing.T) {
	original := buildManual(t)

	tree, err := Load(bytes.NewReader(original))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var out bytes.Buffer
	if err := tree.Write(&out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(original, out.Bytes()) {
		t.Error("load -> write did not reproduce the original bytes")
	}
}

// TestFileOffsetsAreMonotonicAndWithinBounds checks that each chunk's
// FileOffset marks the start of its own record: offsets strictly increase
// and the first one sits right after the 12-byte header.
func TestFileOffsetsAreMonotonicAndWithinBounds(t *testing.T) {
	data := buildManual(t)
	tree, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	const headerSize = 4 + 4 + 4
	if tree.Chunks[0].FileOffset != headerSize {
		t.Errorf("first chunk offset = %d, want %d", tree.Chunks[0].FileOffset, headerSize)
	}
	for i := 1; i < len(tree.Chunks); i++ {
		if tree.Chunks[i].FileOffset <= tree.Chunks[i-1].FileOffset {
			t.Errorf("chunk %d offset %d did not increase past chunk %d offset %d",
				i, tree.Chunks[i].FileOffset, i-1, tree.Chunks[i-1].FileOffset)
		}
	}
}

// TestReadChunkNeverMaterialisesPayload checks that Load doesn't allocate
// vertex/index data: it only records counts and byte offsets, and those
// offsets must fall strictly inside the file.
func TestReadChunkNeverMaterialisesPayload(t *testing.T) {
	data := buildManual(t)
	tree, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i, c := range tree.Chunks {
		if c.VertexCount != 3 {
			t.Errorf("chunk %d VertexCount = %d, want 3", i, c.VertexCount)
		}
		if c.IndexCount != 3 {
			t.Errorf("chunk %d IndexCount = %d, want 3", i, c.IndexCount)
		}
		if c.VertexByteOffset <= c.FileOffset {
			t.Errorf("chunk %d VertexByteOffset %d not past FileOffset %d", i, c.VertexByteOffset, c.FileOffset)
		}
		if c.IndexByteOffset <= c.VertexByteOffset {
			t.Errorf("chunk %d IndexByteOffset %d not past VertexByteOffset %d", i, c.IndexByteOffset, c.VertexByteOffset)
		}
		if int64(len(data)) < c.IndexByteOffset+int64(c.IndexCount)*indexSize {
			t.Errorf("chunk %d index array runs past end of file", i)
		}
	}
}

// TestParentChildLinksMatchWriteOrder checks the reconstructed tree shape
// for a TreeDepth=1 file: a root (level 1) followed by its one recorded
// leaf child (level 0), in the NW-NE-SW-SE slot pkg/cdlod's writer used.
func TestParentChildLinksMatchWriteOrder(t *testing.T) {
	data := buildManual(t)
	tree, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	root := tree.Chunks[0]
	if root.Parent != -1 {
		t.Errorf("root.Parent = %d, want -1", root.Parent)
	}
	if root.Children[0] != 1 {
		t.Errorf("root.Children[0] = %d, want 1 (first child slot is NW)", root.Children[0])
	}
	for slot := 1; slot < 4; slot++ {
		if root.Children[slot] != -1 {
			t.Errorf("root.Children[%d] = %d, want -1 (only one child was written)", slot, root.Children[slot])
		}
	}

	leaf := tree.Chunks[1]
	if leaf.Parent != 0 {
		t.Errorf("leaf.Parent = %d, want 0", leaf.Parent)
	}
	for slot, child := range leaf.Children {
		if child != -1 {
			t.Errorf("leaf.Children[%d] = %d, want -1 (leaves have no children)", slot, child)
		}
	}
}

// TestParentChildLinksNestedTree checks reconstruction over a deeper tree:
// a root (level 2) with 4 children, the first of which (level 1) itself has
// 4 leaf children (level 0) — exercising the stack unwinding across more
// than one level.
func TestParentChildLinksNestedTree(t *testing.T) {
	leaf := func(label int32) rawChunk {
		return rawChunk{
			label:   label,
			level:   0,
			aabbMin: [3]float32{0, 0, 0},
			aabbMax: [3]float32{1, 0, 1},
			verts:   []Vertex{{Pos: [3]float32{0, 0, 0}}},
			indices: []uint32{0},
		}
	}
	inner := func(label int32) rawChunk {
		return rawChunk{
			label:   label,
			level:   1,
			aabbMin: [3]float32{0, 0, 0},
			aabbMax: [3]float32{1, 0, 1},
			verts:   []Vertex{{Pos: [3]float32{0, 0, 0}}},
			indices: []uint32{0},
		}
	}
	root := rawChunk{
		label:   0,
		level:   2,
		aabbMin: [3]float32{0, 0, 0},
		aabbMax: [3]float32{1, 0, 1},
		verts:   []Vertex{{Pos: [3]float32{0, 0, 0}}},
		indices: []uint32{0},
	}

	// Pre-order: root, child0(inner)+its 4 leaves, child1, child2, child3.
	data := encodeManual(t, []rawChunk{
		root,
		inner(1), leaf(2), leaf(3), leaf(4), leaf(5),
		leaf(6),
		leaf(7),
		leaf(8),
	})

	tree, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tree.Chunks) != 9 {
		t.Fatalf("parsed %d chunks, want 9", len(tree.Chunks))
	}

	rootC := tree.Chunks[0]
	wantRootChildren := [4]int32{1, 6, 7, 8}
	if rootC.Children != wantRootChildren {
		t.Errorf("root.Children = %v, want %v", rootC.Children, wantRootChildren)
	}

	innerC := tree.Chunks[1]
	if innerC.Parent != 0 {
		t.Errorf("inner.Parent = %d, want 0", innerC.Parent)
	}
	wantInnerChildren := [4]int32{2, 3, 4, 5}
	if innerC.Children != wantInnerChildren {
		t.Errorf("inner.Children = %v, want %v", innerC.Children, wantInnerChildren)
	}

	for _, idx := range []int{2, 3, 4, 5} {
		if tree.Chunks[idx].Parent != 1 {
			t.Errorf("chunk %d Parent = %d, want 1", idx, tree.Chunks[idx].Parent)
		}
	}
	for _, idx := range []int{6, 7, 8} {
		if tree.Chunks[idx].Parent != 0 {
			t.Errorf("chunk %d Parent = %d, want 0", idx, tree.Chunks[idx].Parent)
		}
	}
}

// TestWalkVisitsDepthFirstOrder checks that Walk visits chunks in the exact
// order they were stored, matching the preprocessor's NW-NE-SW-SE write order.
func TestWalkVisitsDepthFirstOrder(t *testing.T) {
	data := buildManual(t)
	tree, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var labels []int32
	tree.Walk(func(c Chunk) { labels = append(labels, c.Label) })
	want := []int32{0, 1}
	if len(labels) != len(want) {
		t.Fatalf("Walk visited %d chunks, want %d", len(labels), len(want))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("Walk order[%d] = %d, want %d", i, labels[i], want[i])
		}
	}
}

func TestByLabel(t *testing.T) {
	data := buildManual(t)
	tree, err := Load(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, ok := tree.ByLabel(1)
	if !ok {
		t.Fatal("ByLabel(1) not found")
	}
	if c.Level != 0 {
		t.Errorf("ByLabel(1).Level = %d, want 0", c.Level)
	}
	if _, ok := tree.ByLabel(99); ok {
		t.Error("ByLabel(99) unexpectedly found")
	}
}

// TestLoadRejectsTruncatedFile checks that a file cut off mid-record
// produces an error instead of a partially-populated Tree (spec §7 IOError).
func TestLoadRejectsTruncatedFile(t *testing.T) {
	data := buildManual(t)
	truncated := data[:len(data)-10]
	if _, err := Load(bytes.NewReader(truncated)); err == nil {
		t.Error("Load on a truncated file returned no error")
	}
}

// TestPreprocessorOutputLoadsAndMatchesHeader is an integration round trip
// against the real preprocessor: pkg/cdlod.Preprocess writes a chunk file
// for a small flat heightmap, and this package's Load must reproduce the
// same tree_depth, max_base_error, and chunk_count (spec §8 "Round-trip").
func TestPreprocessorOutputLoadsAndMatchesHeader(t *testing.T) {
	dir := t.TempDir()
	heightmapPath := filepath.Join(dir, "flat.png")
	outputPath := filepath.Join(dir, "flat.chunks")

	img := image.NewGray16(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.SetGray16(x, y, color.Gray16{Y: 30000})
		}
	}
	f, err := os.Create(heightmapPath)
	if err != nil {
		t.Fatalf("creating heightmap fixture: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("encoding heightmap fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing heightmap fixture: %v", err)
	}

	cfg := cdlod.Config{
		MaxBaseError:   1.0,
		MetersPerPixel: 1,
		MinHeight:      0,
		MaxHeight:      10,
		TreeDepth:      1,
	}
	if err := cdlod.Preprocess(cfg, heightmapPath, outputPath); err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	out, err := os.Open(outputPath)
	if err != nil {
		t.Fatalf("opening chunk file: %v", err)
	}
	defer out.Close()

	tree, err := Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tree.TreeDepth != 1 {
		t.Errorf("TreeDepth = %d, want 1", tree.TreeDepth)
	}
	if tree.ChunkCount != 5 {
		t.Errorf("ChunkCount = %d, want 5", tree.ChunkCount)
	}
	if len(tree.Chunks) != 5 {
		t.Errorf("parsed %d chunks, want 5", len(tree.Chunks))
	}

	root := tree.Chunks[0]
	if root.Parent != -1 {
		t.Errorf("root.Parent = %d, want -1", root.Parent)
	}
	for slot, child := range root.Children {
		if child == -1 {
			t.Errorf("root.Children[%d] = -1, want a leaf index", slot)
		}
	}
}
