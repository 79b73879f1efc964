// Package cdlod preprocesses a heightmap into a chunked CDLOD terrain mesh:
// a quadtree of LEB-simplified triangle chunks, written to the binary chunk
// file format consumed by pkg/chunkfile.
//
// The pipeline is four steps, run once per Preprocess call: sample the
// heightmap into a world-space grid, compute a Lindstrom-Koller error and
// activation level per grid vertex, propagate that activation up the
// quadtree, then walk the quadtree depth-first (NW, NE, SW, SE) densifying
// and diamond-merging each node's triangles before writing it.
package cdlod
