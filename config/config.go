// Package config holds the immutable configuration for a calib
// clustering run. A Config is built once from command-line flags,
// validated, and then passed by pointer to pipeline and emit, which
// hand the core packages the individual values they need as plain
// arguments; no component mutates it and no package keeps process-wide
// flag state.
package config

import "fmt"

// Config is the full set of parameters controlling one clustering run.
// Field names mirror the CLI flags in cmd/calib.
type Config struct {
	// InputForward and InputReverse are the mate-1 and mate-2 FASTQ
	// paths.
	InputForward string
	InputReverse string

	// OutputPrefix is prepended to every output file name.
	OutputPrefix string

	// Silent suppresses progress markers on stdout.
	Silent bool

	// KeepQual retains quality strings in memory; otherwise they are
	// discarded as soon as a read is consumed.
	KeepQual bool

	// BarcodeLength is L, the fixed barcode length.
	BarcodeLength int

	// MinimizerCount is M, the number of minimizers per mate.
	MinimizerCount int

	// KmerSize is k, used by the minimizer extractor.
	KmerSize int

	// ErrorTolerance is E, the number of barcode positions the LSH
	// scheme is allowed to mask per candidate mask.
	ErrorTolerance int

	// MinimizerThreshold is T, the minimum per-mate equal-minimizer
	// count required for an edge to survive verification.
	MinimizerThreshold int

	// ThreadCount is the number of LSH worker goroutines, in [1,8].
	ThreadCount int
}

// Validate checks Config against the constraints in spec.md §3 and
// §6, mirroring the checks commandline.cc::parse_flags performs
// against its globals.
func (c *Config) Validate() error {
	if c.InputForward == "" || c.InputReverse == "" || c.OutputPrefix == "" {
		return fmt.Errorf("missing required parameter: input-forward, input-reverse, and output-prefix must all be set")
	}
	if c.BarcodeLength < 1 {
		return fmt.Errorf("barcode-length must be >= 1, got %d", c.BarcodeLength)
	}
	if c.MinimizerCount < 1 {
		return fmt.Errorf("minimizer-count must be >= 1, got %d", c.MinimizerCount)
	}
	if c.KmerSize < 1 {
		return fmt.Errorf("kmer-size must be >= 1, got %d", c.KmerSize)
	}
	if c.ErrorTolerance < 0 || c.ErrorTolerance > c.BarcodeLength {
		return fmt.Errorf("error-tolerance must be in [0, %d], got %d", c.BarcodeLength, c.ErrorTolerance)
	}
	if c.MinimizerThreshold < 1 || c.MinimizerThreshold > c.MinimizerCount {
		return fmt.Errorf("minimizer-threshold must be in [1, %d], got %d", c.MinimizerCount, c.MinimizerThreshold)
	}
	if c.ThreadCount < 1 || c.ThreadCount > 8 {
		return fmt.Errorf("threads must be in [1, 8], got %d", c.ThreadCount)
	}
	return nil
}

// String renders the configuration the way commandline.cc::print_flags
// echoes it to the run log.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Parameters:\n"+
			"\tinput_1:\t%s\n"+
			"\tinput_2:\t%s\n"+
			"\toutput_prefix:\t%s\n"+
			"\tbarcode_length:\t%d\n"+
			"\tminimizer_count:\t%d\n"+
			"\tkmer_size:\t%d\n"+
			"\terror_tolerance:\t%d\n"+
			"\tminimizer_threshold:\t%d\n"+
			"\tthreads:\t%d\n",
		c.InputForward, c.InputReverse, c.OutputPrefix,
		c.BarcodeLength, c.MinimizerCount, c.KmerSize,
		c.ErrorTolerance, c.MinimizerThreshold, c.ThreadCount)
}
