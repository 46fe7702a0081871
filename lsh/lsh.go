// Package lsh implements the LSH candidate generator (spec.md §4.2):
// mask enumeration over barcodes, bucketed by masked-barcode equality,
// emitting every node pair that shares a bucket on at least one mask.
package lsh

import (
	"sync"

	"github.com/grailbio/base/log"

	"github.com/bowhan/calib/barcode"
	"github.com/bowhan/calib/node"
)

// Edge is an unordered candidate pair of nodes that shared a
// masked-barcode bucket under at least one mask. The same pair may
// appear more than once if more than one mask collides them (spec.md
// §4.2/§4.3); Generate does not deduplicate — see verify and cluster
// for why that is safe.
type Edge struct {
	A, B node.ID
}

// Generate enumerates every unordered pair of nodes whose barcodes are
// within Hamming distance errorTolerance, using the mask-enumeration
// scheme in spec.md §4.2. Masks are partitioned into threadCount
// residue classes, one goroutine per class (spec.md §5): each worker
// owns a private edge buffer and a private per-mask dictionary, so no
// cross-thread synchronization happens inside the loop. The caller
// gets back the already-merged edge set; the merge itself is the
// single-threaded concatenation spec.md §5 describes.
func Generate(nodes []node.Node, barcodeLength, errorTolerance, threadCount int) []Edge {
	if threadCount < 1 {
		threadCount = 1
	}
	perWorker := make([][]Edge, threadCount)
	var wg sync.WaitGroup
	for r := 0; r < threadCount; r++ {
		wg.Add(1)
		go func(residue int) {
			defer wg.Done()
			perWorker[residue] = generateResidue(nodes, barcodeLength, errorTolerance, threadCount, residue)
		}(r)
	}
	wg.Wait()

	total := 0
	for _, e := range perWorker {
		total += len(e)
	}
	merged := make([]Edge, 0, total)
	for _, e := range perWorker {
		merged = append(merged, e...)
	}
	log.Debug.Printf("lsh: %d candidate edges from %d masks across %d workers", len(merged), barcode.MaskCount(barcodeLength, errorTolerance), threadCount)
	return merged
}

// generateResidue processes every mask whose enumeration index is
// congruent to residue mod threadCount, dropping each mask's
// dictionary before moving to the next so a single worker's working
// set stays O(V·L) plus its accumulated edges (spec.md §5's
// backpressure note).
func generateResidue(nodes []node.Node, barcodeLength, errorTolerance, threadCount, residue int) []Edge {
	var edges []Edge
	index := 0
	barcode.GenerateMasks(barcodeLength, errorTolerance, func(mask barcode.Mask) {
		i := index
		index++
		if i%threadCount != residue {
			return
		}

		dict := make(map[string][]node.ID, len(nodes))
		for id := range nodes {
			key := barcode.MaskBarcode(nodes[id].Barcode, mask)
			dict[key] = append(dict[key], node.ID(id))
		}
		for _, bucket := range dict {
			if len(bucket) < 2 {
				continue
			}
			for a := 0; a < len(bucket); a++ {
				for b := a + 1; b < len(bucket); b++ {
					edges = append(edges, Edge{bucket[a], bucket[b]})
				}
			}
		}
		// dict is dropped here; the next mask starts with a fresh
		// dictionary instead of retaining every mask's buckets at once.
	})
	return edges
}
