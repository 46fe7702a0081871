// Package cluster extracts connected components from the verified
// similarity graph (spec.md §4.4) and expands them into the final,
// deterministically-ordered read clusters.
package cluster

import (
	"sort"

	"github.com/grailbio/base/log"

	"github.com/bowhan/calib/lsh"
	"github.com/bowhan/calib/node"
)

// dsu is a disjoint-set-union over node ids, with path compression and
// union by size. cluster.h (the header this package's contract is
// grounded on) declares extract_clusters over an adjacency list but its
// body was never retrieved, so the DSU itself is written fresh; nothing
// here is a translation of unseen C++.
type dsu struct {
	parent []node.ID
	size   []int
}

func newDSU(n int) *dsu {
	d := &dsu{parent: make([]node.ID, n), size: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = node.ID(i)
		d.size[i] = 1
	}
	return d
}

func (d *dsu) find(x node.ID) node.ID {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *dsu) union(a, b node.ID) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
}

// Cluster is a connected component of the verified similarity graph,
// expanded to its constituent read ids (spec.md §4.4). ReadIDs is
// sorted ascending. NodeIDs is retained alongside it so callers that
// need a per-node (not per-read) view — the per-node log — don't have
// to re-derive node membership from read ids.
type Cluster struct {
	NodeIDs []node.ID
	ReadIDs []node.ReadID
}

// Extract runs a union-find over edges (nodeCount nodes, surviving the
// verifier) and expands each resulting component into its member read
// ids via nodeToReads. Nodes reached by no edge form singleton
// components (spec.md §4.4's "nodes reached by no edge" edge case).
//
// The returned slice is ordered by descending cluster size, then
// ascending smallest-read-id (spec.md §4.4 "Output ordering"); within
// a cluster, read ids are sorted ascending. This ordering is a
// deterministic function of cluster contents alone, so it is
// unaffected by edge emission order, which spec.md §5 leaves
// unspecified across thread counts.
func Extract(nodeCount int, edges []lsh.Edge, nodeToReads [][]node.ReadID) []Cluster {
	d := newDSU(nodeCount)
	for _, e := range edges {
		d.union(e.A, e.B)
	}

	members := map[node.ID][]node.ID{}
	for id := 0; id < nodeCount; id++ {
		root := d.find(node.ID(id))
		members[root] = append(members[root], node.ID(id))
	}

	clusters := make([]Cluster, 0, len(members))
	for _, nodeIDs := range members {
		var reads []node.ReadID
		for _, nid := range nodeIDs {
			reads = append(reads, nodeToReads[nid]...)
		}
		sort.Slice(reads, func(i, j int) bool { return reads[i] < reads[j] })
		sort.Slice(nodeIDs, func(i, j int) bool { return nodeIDs[i] < nodeIDs[j] })
		clusters = append(clusters, Cluster{NodeIDs: nodeIDs, ReadIDs: reads})
	}

	sort.Slice(clusters, func(i, j int) bool {
		a, b := clusters[i], clusters[j]
		if len(a.ReadIDs) != len(b.ReadIDs) {
			return len(a.ReadIDs) > len(b.ReadIDs)
		}
		return a.ReadIDs[0] < b.ReadIDs[0]
	})

	log.Debug.Printf("cluster: %d nodes collapsed into %d clusters", nodeCount, len(clusters))
	return clusters
}

// Assignments returns, for each read id in [0, readCount), the index
// into clusters that it belongs to. Every read id must appear in
// exactly one cluster (spec.md §4.1 edge case); callers that violate
// this by passing an incomplete clusters slice will leave the
// corresponding entries at their zero value, which Assignments cannot
// detect on its own — see cluster_test.go's completeness check for the
// invariant this is meant to uphold.
func Assignments(readCount int, clusters []Cluster) []int {
	assignments := make([]int, readCount)
	for clusterID, c := range clusters {
		for _, r := range c.ReadIDs {
			assignments[r] = clusterID
		}
	}
	return assignments
}

// NodeAssignments is Assignments' counterpart for nodes, used by the
// per-node log (spec.md §6) which reports a cluster id per node rather
// than per read.
func NodeAssignments(nodeCount int, clusters []Cluster) []int {
	assignments := make([]int, nodeCount)
	for clusterID, c := range clusters {
		for _, n := range c.NodeIDs {
			assignments[n] = clusterID
		}
	}
	return assignments
}
