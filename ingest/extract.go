package ingest

import (
	"fmt"
	"sort"
	"strings"

	farm "github.com/dgryski/go-farm"
)

// Extractor derives the barcode and per-mate minimizer vectors the
// clustering core consumes from a raw read pair (spec.md §6
// "Extraction callback").
type Extractor interface {
	Extract(r *Read) (bc string, minimizers1, minimizers2 []uint64, err error)
}

// minimizerExtractor is a reference Extractor: the barcode is the
// first barcodeLength bases of mate 1, and each mate's minimizer
// vector is the minimizerCount smallest k-mer hashes in that mate's
// sequence (a standard minimizer sketch). calib.cc's own extraction
// body (extract.cc) was not retrieved, so this is not a translation
// of it — it is a fresh, idiomatic sketch using the same go-farm
// hashing fusion/kmer_index.go relies on for k-mer hashing, swappable
// via the Extractor interface.
type minimizerExtractor struct {
	barcodeLength  int
	minimizerCount int
	kmerSize       int
}

// NewMinimizerExtractor builds a minimizerExtractor.
func NewMinimizerExtractor(barcodeLength, minimizerCount, kmerSize int) Extractor {
	return &minimizerExtractor{
		barcodeLength:  barcodeLength,
		minimizerCount: minimizerCount,
		kmerSize:       kmerSize,
	}
}

func (e *minimizerExtractor) Extract(r *Read) (string, []uint64, []uint64, error) {
	if len(r.Sequence1) < e.barcodeLength {
		return "", nil, nil, &ErrBarcodeTooShort{Got: len(r.Sequence1), Expected: e.barcodeLength}
	}
	bc := strings.ToUpper(r.Sequence1[:e.barcodeLength])
	return bc, e.sketch(r.Sequence1), e.sketch(r.Sequence2), nil
}

// sketch returns the minimizerCount smallest k-mer hashes found in
// seq, ascending, zero-padded on the right if seq yields fewer
// distinct windows than minimizerCount. Position is semantic
// downstream (node.Node's doc comment), so padding with a stable
// sentinel rather than truncating keeps vector length fixed without
// fabricating false agreement between short and long sequences.
func (e *minimizerExtractor) sketch(seq string) []uint64 {
	n := len(seq) - e.kmerSize + 1
	if n < 0 {
		n = 0
	}
	hashes := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		hashes = append(hashes, farm.Hash64([]byte(seq[i:i+e.kmerSize])))
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	out := make([]uint64, e.minimizerCount)
	for i := range out {
		if i < len(hashes) {
			out[i] = hashes[i]
		}
	}
	return out
}

// ErrBarcodeTooShort is returned when a mate-1 sequence is shorter
// than the configured barcode length.
type ErrBarcodeTooShort struct {
	Got, Expected int
}

func (e *ErrBarcodeTooShort) Error() string {
	return fmt.Sprintf("mate 1 sequence has length %d, shorter than barcode length %d", e.Got, e.Expected)
}
