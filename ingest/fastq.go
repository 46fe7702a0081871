// Package ingest provides a reference implementation of the read
// source and barcode/minimizer extractor that spec.md §6 declares as
// external collaborators. Core packages (node, barcode, lsh, verify,
// cluster) never import this package; it exists so cmd/calib has
// something runnable to wire them to.
package ingest

import (
	"bufio"
	"errors"
	"io"
)

var (
	// ErrShort is returned when a FASTQ record is truncated mid-record.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when a FASTQ record line does not begin
	// with the marker its position requires ('@', '+').
	ErrInvalid = errors.New("invalid FASTQ file")
	// ErrDiscordant is returned when the forward and reverse FASTQ
	// streams run out of records at different points.
	ErrDiscordant = errors.New("discordant FASTQ mate pair")
)

// Read is one paired-end read pair as consumed by the clustering core
// (spec.md §6 "Inputs consumed from collaborators").
type Read struct {
	Name1, Sequence1, Quality1 string
	Name2, Sequence2, Quality2 string
}

// Source produces a stream of read pairs in input order.
type Source interface {
	// Scan advances to the next read pair, returning false at EOF or
	// on error; check Err to tell the two apart.
	Scan(r *Read) bool
	// Err returns the error that stopped scanning, or nil at a clean
	// EOF.
	Err() error
}

var errEOF = errors.New("eof")

type mateScanner struct {
	b        *bufio.Scanner
	err      error
	keepQual bool
}

func newMateScanner(r io.Reader, keepQual bool) *mateScanner {
	return &mateScanner{b: bufio.NewScanner(r), keepQual: keepQual}
}

func (s *mateScanner) scan() bool {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = errEOF
		}
		return false
	}
	return true
}

func (s *mateScanner) scanRequired() bool {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = ErrShort
		}
		return false
	}
	return true
}

// read fills name, sequence, and (if keepQual) quality from the next
// 4-line FASTQ record.
func (s *mateScanner) read() (name, sequence, quality string, ok bool) {
	if s.err != nil {
		return "", "", "", false
	}
	if !s.scan() {
		return "", "", "", false
	}
	id := s.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		s.err = ErrInvalid
		return "", "", "", false
	}
	name = string(id[1:])
	if !s.scanRequired() {
		return "", "", "", false
	}
	sequence = s.b.Text()
	if !s.scanRequired() {
		return "", "", "", false
	}
	plus := s.b.Bytes()
	if len(plus) == 0 || plus[0] != '+' {
		s.err = ErrInvalid
		return "", "", "", false
	}
	if !s.scanRequired() {
		return "", "", "", false
	}
	if s.keepQual {
		quality = s.b.Text()
	}
	return name, sequence, quality, true
}

func (s *mateScanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}

// fastqSource implements Source over a pair of FASTQ streams, the
// paired-end layout spec.md §6 and SPEC_FULL.md §5 describe. It
// adapts the teacher's Scanner/PairScanner pattern, rewritten against
// this package's own Read type (forward/reverse mate fields instead
// of the teacher's single-read Field bitset) and honoring the
// -q/--keep-qual flag (SPEC_FULL.md §4.2): without it, the quality line
// is still scanned to step past the record but is never copied into a
// string.
type fastqSource struct {
	r1, r2 *mateScanner
	err    error
}

// NewFASTQSource builds a Source over forward and reverse FASTQ
// readers. If keepQual is false, quality strings are left empty on
// every produced Read to bound memory (SPEC_FULL.md §4.2).
func NewFASTQSource(forward, reverse io.Reader, keepQual bool) Source {
	return &fastqSource{
		r1: newMateScanner(forward, keepQual),
		r2: newMateScanner(reverse, keepQual),
	}
}

func (f *fastqSource) Scan(r *Read) bool {
	name1, seq1, qual1, ok1 := f.r1.read()
	name2, seq2, qual2, ok2 := f.r2.read()
	if ok1 != ok2 {
		f.err = ErrDiscordant
		return false
	}
	if !ok1 {
		return false
	}
	r.Name1, r.Sequence1, r.Quality1 = name1, seq1, qual1
	r.Name2, r.Sequence2, r.Quality2 = name2, seq2, qual2
	return true
}

func (f *fastqSource) Err() error {
	if err := f.r1.Err(); err != nil {
		return err
	}
	if err := f.r2.Err(); err != nil {
		return err
	}
	return f.err
}
