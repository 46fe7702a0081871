// Package verify implements the minimizer verifier (spec.md §4.3):
// pruning LSH candidate pairs by position-wise minimizer agreement on
// both mates.
package verify

import (
	"github.com/bowhan/calib/lsh"
	"github.com/bowhan/calib/node"
)

// Stats summarizes one verification pass. Counts reflect edges
// processed, not unique node pairs: the same pair may have been
// proposed by more than one mask (spec.md §4.2/§4.3), and this package
// deliberately does not deduplicate before counting — see spec.md §9's
// open question on adjacency multiplicity. Anything exported here
// documents that policy rather than silently picking one.
type Stats struct {
	// Candidates is the number of candidate edges examined (including
	// duplicate proposals of the same node pair).
	Candidates int
	// Verified is the number of candidate edges (again, including
	// duplicates) that passed the agreement threshold on both mates.
	Verified int
}

// Agreement counts the position-wise equal-minimizer count between a
// and b on one mate.
func Agreement(a, b []uint64) int {
	n := 0
	for i := range a {
		if a[i] == b[i] {
			n++
		}
	}
	return n
}

// Passes reports whether the pair (a, b) survives verification: it
// must have at least threshold equal minimizers on both mate 1 and
// mate 2 (spec.md §4.3). Position-wise comparison is intentional —
// the extractor's minimizer scheme is positional, and shuffling
// positions would discard information.
func Passes(a, b *node.Node, threshold int) bool {
	return Agreement(a.Minimizers1, b.Minimizers1) >= threshold &&
		Agreement(a.Minimizers2, b.Minimizers2) >= threshold
}

// Filter keeps every candidate edge in edges that passes verification
// against threshold, using nodes to resolve edge endpoints. It returns
// the surviving edges plus summary Stats; self-edges are never
// produced by lsh.Generate, so Filter does not special-case them.
func Filter(nodes []node.Node, edges []lsh.Edge, threshold int) ([]lsh.Edge, Stats) {
	stats := Stats{Candidates: len(edges)}
	kept := make([]lsh.Edge, 0, len(edges))
	for _, e := range edges {
		if Passes(&nodes[e.A], &nodes[e.B], threshold) {
			kept = append(kept, e)
			stats.Verified++
		}
	}
	return kept, stats
}
