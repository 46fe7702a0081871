// Package pipeline orchestrates the core clustering stages — dedup,
// LSH, verification, and component extraction — the way calib.cc's
// main ties extract_barcodes_and_minimizers() and cluster() together
// (see emit.Writer's doc comment for the output side of the same
// orchestration).
package pipeline

import (
	"github.com/grailbio/base/log"

	"github.com/bowhan/calib/cluster"
	"github.com/bowhan/calib/config"
	"github.com/bowhan/calib/ingest"
	"github.com/bowhan/calib/lsh"
	"github.com/bowhan/calib/node"
	"github.com/bowhan/calib/verify"
)

// Result is everything downstream emission needs: the deduplicated
// nodes, their read memberships, the final clusters, and the stats
// the verifier collected along the way.
type Result struct {
	Nodes       []node.Node
	NodeToReads [][]node.ReadID
	Clusters    []cluster.Cluster
	ReadCount   int
	VerifyStats verify.Stats
}

// ReadAssignments returns, for each read id in [0, ReadCount), the
// index into Clusters it belongs to.
func (r *Result) ReadAssignments() []int {
	return cluster.Assignments(r.ReadCount, r.Clusters)
}

// NodeAssignments returns, for each node id in [0, len(Nodes)), the
// index into Clusters it belongs to.
func (r *Result) NodeAssignments() []int {
	return cluster.NodeAssignments(len(r.Nodes), r.Clusters)
}

// Progress reports a progress marker, one per pipeline stage, so a
// caller (cmd/calib) can echo calib.cc's unconditional stdout prints
// while still letting -s/--silent suppress them (SPEC_FULL.md §4.2).
type Progress func(message string)

// Run reads every pair from src through extractor, folds it into the
// node set, generates LSH candidates, verifies them, and extracts
// final clusters — the full pipeline spec.md §4 describes end to end.
func Run(cfg *config.Config, src ingest.Source, extractor ingest.Extractor, progress Progress) (*Result, error) {
	if progress == nil {
		progress = func(string) {}
	}

	progress("extracting...")
	dedup := node.NewDedup(cfg.MinimizerCount)
	var readCount int
	var r ingest.Read
	for src.Scan(&r) {
		bc, m1, m2, err := extractor.Extract(&r)
		if err != nil {
			return nil, err
		}
		if _, err := dedup.Add(node.ReadID(readCount), bc, m1, m2); err != nil {
			return nil, err
		}
		readCount++
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	nodes := dedup.Nodes()
	log.Printf("pipeline: %d reads folded into %d nodes", readCount, len(nodes))

	progress("clustering...")
	candidates := lsh.Generate(nodes, cfg.BarcodeLength, cfg.ErrorTolerance, cfg.ThreadCount)
	edges, stats := verify.Filter(nodes, candidates, cfg.MinimizerThreshold)
	log.Printf("pipeline: %d candidates, %d verified", stats.Candidates, stats.Verified)

	clusters := cluster.Extract(len(nodes), edges, dedup.NodeToReads())
	progress("all done")

	return &Result{
		Nodes:       nodes,
		NodeToReads: dedup.NodeToReads(),
		Clusters:    clusters,
		ReadCount:   readCount,
		VerifyStats: stats,
	}, nil
}
