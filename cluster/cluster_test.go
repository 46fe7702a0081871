package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bowhan/calib/lsh"
	"github.com/bowhan/calib/node"
)

func readIDs(ids ...node.ReadID) []node.ReadID { return ids }

func TestExtractSingletonsWhenNoEdges(t *testing.T) {
	nodeToReads := [][]node.ReadID{readIDs(0), readIDs(1), readIDs(2)}
	clusters := Extract(3, nil, nodeToReads)
	assert.Len(t, clusters, 3)
	for _, c := range clusters {
		assert.Len(t, c.ReadIDs, 1)
	}
}

func TestExtractMergesDirectEdge(t *testing.T) {
	// Scenario S2 shape: node 0 and 1 are linked, node 2 is isolated.
	nodeToReads := [][]node.ReadID{readIDs(0), readIDs(1), readIDs(2)}
	edges := []lsh.Edge{{A: 0, B: 1}}
	clusters := Extract(3, edges, nodeToReads)
	assert.Len(t, clusters, 2)
	assert.Equal(t, []node.ReadID{0, 1}, clusters[0].ReadIDs)
	assert.Equal(t, []node.ReadID{2}, clusters[1].ReadIDs)
}

func TestExtractTransitiveChain(t *testing.T) {
	// Scenario S4: 0-1 and 1-2 edges, no direct 0-2 edge, all three
	// must still land in one cluster.
	nodeToReads := [][]node.ReadID{readIDs(0), readIDs(1), readIDs(2)}
	edges := []lsh.Edge{{A: 0, B: 1}, {A: 1, B: 2}}
	clusters := Extract(3, edges, nodeToReads)
	assert.Len(t, clusters, 1)
	assert.Equal(t, []node.ReadID{0, 1, 2}, clusters[0].ReadIDs)
}

func TestExtractIsEdgeOrderIndependent(t *testing.T) {
	nodeToReads := [][]node.ReadID{readIDs(0), readIDs(1), readIDs(2), readIDs(3)}
	base := []lsh.Edge{{A: 0, B: 1}, {A: 1, B: 2}, {A: 2, B: 3}}
	want := Extract(4, base, nodeToReads)

	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]lsh.Edge, len(base))
		copy(shuffled, base)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := Extract(4, shuffled, nodeToReads)
		assert.Equal(t, want, got)
	}
}

func TestExtractDuplicateEdgesDontChangeResult(t *testing.T) {
	nodeToReads := [][]node.ReadID{readIDs(0), readIDs(1)}
	once := Extract(2, []lsh.Edge{{A: 0, B: 1}}, nodeToReads)
	duped := Extract(2, []lsh.Edge{{A: 0, B: 1}, {A: 0, B: 1}, {A: 1, B: 0}}, nodeToReads)
	assert.Equal(t, once, duped)
}

func TestExtractCollapsesDedupedNodesIntoOneCluster(t *testing.T) {
	// A node that absorbed multiple reads during dedup (spec.md §4.1)
	// must keep every one of those reads in the same cluster even with
	// zero edges.
	nodeToReads := [][]node.ReadID{readIDs(3, 7, 9)}
	clusters := Extract(1, nil, nodeToReads)
	assert.Len(t, clusters, 1)
	assert.Equal(t, []node.ReadID{3, 7, 9}, clusters[0].ReadIDs)
}

func TestExtractOrdersByDescendingSizeThenSmallestReadID(t *testing.T) {
	nodeToReads := [][]node.ReadID{
		readIDs(5), readIDs(6), // node 0,1: pair, smallest read id 5
		readIDs(0), readIDs(1), readIDs(2), // node 2,3,4: triple, smallest read id 0
		readIDs(10), // node 5: singleton
	}
	edges := []lsh.Edge{{A: 0, B: 1}, {A: 2, B: 3}, {A: 3, B: 4}}
	clusters := Extract(6, edges, nodeToReads)
	assert.Len(t, clusters, 3)
	assert.Equal(t, []node.ReadID{0, 1, 2}, clusters[0].ReadIDs) // size 3 first
	assert.Equal(t, []node.ReadID{5, 6}, clusters[1].ReadIDs)    // size 2 next
	assert.Equal(t, []node.ReadID{10}, clusters[2].ReadIDs)      // size 1 last
}

func TestAssignmentsCoverEveryReadExactlyOnce(t *testing.T) {
	nodeToReads := [][]node.ReadID{readIDs(0), readIDs(1), readIDs(2), readIDs(3)}
	edges := []lsh.Edge{{A: 0, B: 1}}
	clusters := Extract(4, edges, nodeToReads)
	assignments := Assignments(4, clusters)

	seen := map[int]bool{}
	for _, clusterID := range assignments {
		assert.True(t, clusterID >= 0 && clusterID < len(clusters))
		seen[clusterID] = true
	}
	// Completeness of read coverage (spec.md §8 property 1): every
	// cluster index produced is reachable from some read.
	assert.Equal(t, len(clusters), len(seen))
	assert.Equal(t, assignments[0], assignments[1])
	assert.NotEqual(t, assignments[0], assignments[2])
	assert.NotEqual(t, assignments[2], assignments[3])
}

func TestNodeAssignmentsMatchReadAssignments(t *testing.T) {
	nodeToReads := [][]node.ReadID{readIDs(0), readIDs(1, 2), readIDs(3)}
	edges := []lsh.Edge{{A: 0, B: 1}}
	clusters := Extract(3, edges, nodeToReads)
	nodeAssignments := NodeAssignments(3, clusters)
	readAssignments := Assignments(4, clusters)

	assert.Equal(t, nodeAssignments[0], readAssignments[0])
	assert.Equal(t, nodeAssignments[1], readAssignments[1])
	assert.Equal(t, nodeAssignments[1], readAssignments[2])
	assert.NotEqual(t, nodeAssignments[0], nodeAssignments[2])
}
