package node

import "encoding/binary"

// Dedup folds a stream of (barcode, minimizers_1, minimizers_2) read
// tuples into a set of unique Nodes, and records the read→node and
// node→reads maps (spec.md §4.1). Nodes are numbered in first-seen
// (insertion) order; dedup correctness does not depend on that order,
// only determinism of the rest of the pipeline does.
type Dedup struct {
	minimizerCount int

	index       map[string]ID
	nodes       []Node
	nodeToReads [][]ReadID
}

// NewDedup creates a Dedup expecting minimizerCount-length minimizer
// vectors on both mates.
func NewDedup(minimizerCount int) *Dedup {
	return &Dedup{
		minimizerCount: minimizerCount,
		index:          make(map[string]ID),
	}
}

// Add folds one read's tuple into the node set, returning the ID of
// the Node it was assigned to. If m1 or m2 does not have exactly minimizerCount
// elements, Add returns an *ErrLengthMismatch without modifying the
// Dedup's state — per spec.md §4.1, this is a contract violation the
// caller must abort on, not attempt to salvage.
func (d *Dedup) Add(readID ReadID, barcode string, m1, m2 []uint64) (ID, error) {
	if len(m1) != d.minimizerCount {
		return 0, &ErrLengthMismatch{Mate: 1, Got: len(m1), Expected: d.minimizerCount}
	}
	if len(m2) != d.minimizerCount {
		return 0, &ErrLengthMismatch{Mate: 2, Got: len(m2), Expected: d.minimizerCount}
	}

	key := dedupKey(barcode, m1, m2)
	id, ok := d.index[key]
	if !ok {
		id = ID(len(d.nodes))
		d.nodes = append(d.nodes, Node{
			Barcode:     barcode,
			Minimizers1: append([]uint64(nil), m1...),
			Minimizers2: append([]uint64(nil), m2...),
		})
		d.nodeToReads = append(d.nodeToReads, nil)
		d.index[key] = id
	}
	d.nodeToReads[id] = append(d.nodeToReads[id], readID)
	return id, nil
}

// Nodes returns the deduplicated nodes, indexed by ID, in insertion
// order.
func (d *Dedup) Nodes() []Node {
	return d.nodes
}

// ReadsOf returns the read ids folded into node id, in the order they
// were added. The slice is never empty for a valid ID.
func (d *Dedup) ReadsOf(id ID) []ReadID {
	return d.nodeToReads[id]
}

// NodeToReads returns the full node→reads table, indexed by ID, for
// callers (cluster.Extract) that need to expand every node at once
// rather than look one up at a time.
func (d *Dedup) NodeToReads() [][]ReadID {
	return d.nodeToReads
}

// dedupKey builds an exact composite key from a node's three
// attributes. Because the minimizer vectors are fixed-width (both
// exactly minimizerCount elements by the time this is called), a plain
// concatenation of binary-encoded fields is unambiguous without
// delimiters, and Go's map equality on the resulting string gives
// exact (not probabilistic) dedup: two distinct (barcode, m1, m2)
// triples can never collide into the same node. This sidesteps the
// weak-mixer concern spec.md §9 raises about the original NodeHash
// entirely — see node.Fingerprint for where a real hash is still used.
func dedupKey(barcode string, m1, m2 []uint64) string {
	buf := make([]byte, len(barcode)+8*(len(m1)+len(m2)))
	n := copy(buf, barcode)
	for _, m := range m1 {
		binary.LittleEndian.PutUint64(buf[n:], m)
		n += 8
	}
	for _, m := range m2 {
		binary.LittleEndian.PutUint64(buf[n:], m)
		n += 8
	}
	return string(buf)
}
