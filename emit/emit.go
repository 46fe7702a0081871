// Package emit writes the three output files spec.md §6 names: the
// cluster assignment file, the per-node log, and the run log. Field
// layout follows calib.cc's cluster.log/cluster.node.log streams and
// commandline.cc::print_flags (see SPEC_FULL.md §4.1).
package emit

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"

	"github.com/bowhan/calib/cluster"
	"github.com/bowhan/calib/config"
	"github.com/bowhan/calib/node"
)

// Writer writes calib's three output files against outputPrefix +
// "cluster", outputPrefix + "cluster.node", and outputPrefix +
// "cluster.log" (calib.cc's own naming: output_prefix is
// concatenated directly, with no inserted separator, so a caller
// wanting a "run-" / "." prefix includes it in OutputPrefix itself).
type Writer struct {
	ctx          context.Context
	outputPrefix string
	gzipNodeLog  bool
}

// NewWriter builds a Writer rooted at cfg.OutputPrefix.
func NewWriter(ctx context.Context, cfg *config.Config, gzipNodeLog bool) *Writer {
	return &Writer{ctx: ctx, outputPrefix: cfg.OutputPrefix, gzipNodeLog: gzipNodeLog}
}

// WriteAssignments writes one cluster id per line, in read-id order
// (spec.md §6 "Cluster assignment").
func (w *Writer) WriteAssignments(assignments []int) error {
	f, err := file.Create(w.ctx, w.outputPrefix+"cluster")
	if err != nil {
		return errors.E(err, "creating cluster assignment file", w.outputPrefix)
	}
	e := errors.Once{}
	bw := bufio.NewWriter(f.Writer(w.ctx))
	for _, c := range assignments {
		if _, err := fmt.Fprintln(bw, c); err != nil {
			e.Set(err)
			break
		}
	}
	e.Set(bw.Flush())
	e.Set(f.Close(w.ctx))
	return e.Err()
}

// WriteNodeLog writes one record per node: barcode, both minimizer
// vectors, content fingerprint, read count, and assigned cluster id
// (spec.md §6 "Per-node log"). assignments indexes by node.ID exactly
// like Assignments does for read ids, but one level up:
// nodeAssignments[i] is the cluster id of nodes[i]. The fingerprint
// column is node.Node.Fingerprint's go-farm content hash, carried
// through to the log per spec.md §9's recommendation so a node can be
// cross-referenced across runs without repeating its full minimizer
// vectors.
func (w *Writer) WriteNodeLog(nodes []node.Node, nodeToReads [][]node.ReadID, nodeAssignments []int) error {
	path := w.outputPrefix + "cluster.node"
	if w.gzipNodeLog {
		path += ".gz"
	}
	f, err := file.Create(w.ctx, path)
	if err != nil {
		return errors.E(err, "creating per-node log", path)
	}
	e := errors.Once{}
	var out io.Writer = f.Writer(w.ctx)
	var gz *gzip.Writer
	if w.gzipNodeLog {
		gz = gzip.NewWriter(out)
		out = gz
	}
	bw := bufio.NewWriter(out)
	for id := range nodes {
		n := &nodes[id]
		if _, err := fmt.Fprintf(bw, "%s\t%v\t%v\t%016x\t%d\t%d\n",
			n.Barcode, n.Minimizers1, n.Minimizers2, n.Fingerprint(), len(nodeToReads[id]), nodeAssignments[id]); err != nil {
			e.Set(err)
			break
		}
	}
	e.Set(bw.Flush())
	if gz != nil {
		e.Set(gz.Close())
	}
	e.Set(f.Close(w.ctx))
	return e.Err()
}

// WriteRunLog writes the configuration echo, progress markers already
// observed by the caller, and a seahash checksum of the final cluster
// assignment (spec.md §6 "Run log"). The checksum lets two runs that
// differ only in thread_count be compared without a byte-for-byte
// diff of the cluster file — see spec.md §8 scenario S6.
func (w *Writer) WriteRunLog(cfg *config.Config, clusters []cluster.Cluster, progress []string) error {
	f, err := file.Create(w.ctx, w.outputPrefix+"cluster.log")
	if err != nil {
		return errors.E(err, "creating run log", w.outputPrefix)
	}
	e := errors.Once{}
	bw := bufio.NewWriter(f.Writer(w.ctx))
	fmt.Fprint(bw, cfg.String())
	for _, line := range progress {
		fmt.Fprintln(bw, line)
	}
	fmt.Fprintf(bw, "clusters:\t%d\n", len(clusters))
	fmt.Fprintf(bw, "checksum:\t%016x\n", checksum(clusters))
	e.Set(bw.Flush())
	e.Set(f.Close(w.ctx))
	log.Debug.Printf("emit: run log written to %s", w.outputPrefix+"cluster.log")
	return e.Err()
}

// checksum hashes the canonical cluster contents (descending size,
// ascending smallest-read-id order, per cluster.Extract) with seahash,
// so it is stable across thread counts even though intermediate edge
// order is not (spec.md §5 "Ordering guarantees").
func checksum(clusters []cluster.Cluster) uint64 {
	h := seahash.New()
	buf := make([]byte, 4)
	for _, c := range clusters {
		for _, r := range c.ReadIDs {
			buf[0] = byte(r)
			buf[1] = byte(r >> 8)
			buf[2] = byte(r >> 16)
			buf[3] = byte(r >> 24)
			_, _ = h.Write(buf)
		}
		_, _ = h.Write([]byte{0xff}) // cluster boundary marker
	}
	return h.Sum64()
}
