// calib clusters paired-end short reads by inferred molecule of
// origin: approximate barcode matching, minimizer verification, and
// union-find clustering (see SPEC_FULL.md and DESIGN.md for the
// pipeline this binary drives).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/bowhan/calib/config"
	"github.com/bowhan/calib/emit"
	"github.com/bowhan/calib/ingest"
	"github.com/bowhan/calib/pipeline"
)

func usage() {
	fmt.Fprintln(os.Stderr, `
calib clusters paired-end FASTQ reads by barcode similarity and
minimizer agreement.

Example:

    calib -f reads_1.fastq -r reads_2.fastq -o sample. -l 16 -e 2 -m 10 -k 8 -t 6 -c 4`)
}

func main() {
	flag.Usage = usage

	var cfg config.Config
	var gzipNodeLog bool

	bindStringFlag := func(p *string, short, long, def, usage string) {
		flag.StringVar(p, short, def, usage)
		flag.StringVar(p, long, def, usage)
	}
	bindIntFlag := func(p *int, short, long string, def int, usage string) {
		flag.IntVar(p, short, def, usage)
		flag.IntVar(p, long, def, usage)
	}
	bindBoolFlag := func(p *bool, short, long string, def bool, usage string) {
		flag.BoolVar(p, short, def, usage)
		flag.BoolVar(p, long, def, usage)
	}

	bindStringFlag(&cfg.InputForward, "f", "input-forward", "", "mate-1 FASTQ path (required)")
	bindStringFlag(&cfg.InputReverse, "r", "input-reverse", "", "mate-2 FASTQ path (required)")
	bindStringFlag(&cfg.OutputPrefix, "o", "output-prefix", "", "output path prefix (required)")
	bindBoolFlag(&cfg.Silent, "s", "silent", false, "suppress progress messages to stdout")
	bindBoolFlag(&cfg.KeepQual, "q", "keep-qual", false, "retain quality strings in memory")
	bindIntFlag(&cfg.BarcodeLength, "l", "barcode-length", 0, "barcode length L")
	bindIntFlag(&cfg.MinimizerCount, "m", "minimizer-count", 0, "minimizer count M per mate")
	bindIntFlag(&cfg.KmerSize, "k", "kmer-size", 0, "k-mer size used by the minimizer extractor")
	bindIntFlag(&cfg.ErrorTolerance, "e", "error-tolerance", 0, "barcode error tolerance E")
	bindIntFlag(&cfg.MinimizerThreshold, "t", "minimizer-threshold", 0, "minimizer agreement threshold T")
	bindIntFlag(&cfg.ThreadCount, "c", "threads", 1, "worker thread count, in [1,8]")
	flag.BoolVar(&gzipNodeLog, "gzip-node-log", false, "gzip-compress the per-node log")

	cleanup := grail.Init()
	defer cleanup()

	flag.Parse()

	if err := run(vcontext.Background(), &cfg, gzipNodeLog); err != nil {
		log.Fatalf("calib: %v", err)
	}
}

// run drives one clustering job end to end: validate, open inputs,
// extract, cluster, emit. Split out of main so it can be exercised
// directly in tests without going through flag.Parse/os.Exit.
func run(ctx context.Context, cfg *config.Config, gzipNodeLog bool) error {
	if err := cfg.Validate(); err != nil {
		// ConfigurationInvalid (spec.md §7): fatal at startup, no work begins.
		return err
	}

	forward, err := file.Open(ctx, cfg.InputForward)
	if err != nil {
		return err
	}
	defer forward.Close(ctx)
	reverse, err := file.Open(ctx, cfg.InputReverse)
	if err != nil {
		return err
	}
	defer reverse.Close(ctx)

	src := ingest.NewFASTQSource(forward.Reader(ctx), reverse.Reader(ctx), cfg.KeepQual)
	extractor := ingest.NewMinimizerExtractor(cfg.BarcodeLength, cfg.MinimizerCount, cfg.KmerSize)

	var progressLog []string
	progress := func(message string) {
		progressLog = append(progressLog, message)
		if !cfg.Silent {
			fmt.Println(message)
		}
	}

	result, err := pipeline.Run(cfg, src, extractor, progress)
	if err != nil {
		// InputMalformed (spec.md §7): a contract-violating read tuple.
		return err
	}

	writer := emit.NewWriter(ctx, cfg, gzipNodeLog)
	if err := writer.WriteAssignments(result.ReadAssignments()); err != nil {
		return err
	}
	if err := writer.WriteNodeLog(result.Nodes, result.NodeToReads, result.NodeAssignments()); err != nil {
		return err
	}
	return writer.WriteRunLog(cfg, result.Clusters, progressLog)
}
