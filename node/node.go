// Package node implements the deduplication of (barcode, minimizers_1,
// minimizers_2) read tuples into Nodes, per spec.md §3 and §4.1. A Node
// is the clustering unit: all reads that reduce to the same Node are,
// by construction, indistinguishable under the clustering features and
// always end up in the same output cluster.
package node

import (
	"encoding/binary"
	"fmt"

	farm "github.com/dgryski/go-farm"
)

// ReadID identifies a read in the input order, [0, N).
type ReadID uint32

// ID identifies a deduplicated Node, [0, V).
type ID uint32

// Node is the clustering unit: a barcode plus two fixed-length ordered
// minimizer vectors, one per mate. Position is semantic — position i
// on mate 1 of node A is only ever compared against position i on mate
// 1 of node B.
type Node struct {
	Barcode     string
	Minimizers1 []uint64
	Minimizers2 []uint64
}

// Fingerprint returns a 64-bit content hash of n, combining the
// barcode and both minimizer vectors with go-farm's multiplicative
// mixer. This exists so a node can be identified in the per-node log
// (emit.Writer.WriteNodeLog) without repeating its full minimizer
// vectors; Go's map equality (used by Dedup, below) is exact, so
// unlike the C++ NodeHash/NodeEqual pair this spec was distilled
// from, Fingerprint is never relied on for correctness — a
// fingerprint collision cannot cause two distinct nodes to merge.
// lsh's worker sharding is independent of this: it partitions mask
// enumeration indices, not nodes, so it has no use for a per-node hash.
func (n *Node) Fingerprint() uint64 {
	buf := make([]byte, 8*(1+len(n.Minimizers1)+len(n.Minimizers2)))
	off := 0
	h := farm.Hash64([]byte(n.Barcode))
	binary.LittleEndian.PutUint64(buf[off:], h)
	off += 8
	for _, m := range n.Minimizers1 {
		binary.LittleEndian.PutUint64(buf[off:], m)
		off += 8
	}
	for _, m := range n.Minimizers2 {
		binary.LittleEndian.PutUint64(buf[off:], m)
		off += 8
	}
	return farm.Hash64WithSeed(buf, h)
}

// ErrLengthMismatch is returned when a minimizer vector's length does
// not match the configured minimizer count. Per spec.md §4.1 this is a
// contract violation and the caller must abort.
type ErrLengthMismatch struct {
	Mate     int
	Got      int
	Expected int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("minimizer vector for mate %d has length %d, expected %d", e.Mate, e.Got, e.Expected)
}
