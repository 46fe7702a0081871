package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/vcontext"
	"github.com/stretchr/testify/assert"

	"github.com/bowhan/calib/config"
)

const testForward = `@r0
AAAACCCCGGGG
+
IIIIIIIIIIII
@r1
AAAACCCCGGGG
+
IIIIIIIIIIII
@r2
TTTTTTTTTTTT
+
IIIIIIIIIIII
`

const testReverse = `@r0
GGGGTTTTAAAA
+
IIIIIIIIIIII
@r1
GGGGTTTTAAAA
+
IIIIIIIIIIII
@r2
CCCCCCCCCCCC
+
IIIIIIIIIIII
`

func writeFixture(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func readLines(t *testing.T, path string) []string {
	f, err := os.Open(path)
	assert.NoError(t, err)
	defer f.Close()
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	assert.NoError(t, scanner.Err())
	return lines
}

func TestRunWritesAllThreeOutputFiles(t *testing.T) {
	dir := t.TempDir()
	forward := writeFixture(t, dir, "forward.fastq", testForward)
	reverse := writeFixture(t, dir, "reverse.fastq", testReverse)
	prefix := filepath.Join(dir, "out.")

	cfg := config.Config{
		InputForward:       forward,
		InputReverse:       reverse,
		OutputPrefix:       prefix,
		BarcodeLength:      4,
		MinimizerCount:     2,
		KmerSize:           3,
		ErrorTolerance:     1,
		MinimizerThreshold: 1,
		ThreadCount:        2,
		Silent:             true,
	}

	assert.NoError(t, run(vcontext.Background(), &cfg, false))

	assignments := readLines(t, prefix+"cluster")
	assert.Len(t, assignments, 3) // one line per read, r0/r1/r2

	// r0 and r1 share an identical barcode and both mate sequences, so
	// they fold into the same node and therefore the same cluster.
	assert.Equal(t, assignments[0], assignments[1])

	nodeLog := readLines(t, prefix+"cluster.node")
	assert.NotEmpty(t, nodeLog)

	runLog := readLines(t, prefix+"cluster.log")
	joined := strings.Join(runLog, "\n")
	assert.Contains(t, joined, "clusters:")
	assert.Contains(t, joined, "checksum:")
	assert.Contains(t, joined, "extracting...")
	assert.Contains(t, joined, "all done")
}

func TestRunGzipsNodeLogWhenRequested(t *testing.T) {
	dir := t.TempDir()
	forward := writeFixture(t, dir, "forward.fastq", testForward)
	reverse := writeFixture(t, dir, "reverse.fastq", testReverse)
	prefix := filepath.Join(dir, "gz.")

	cfg := config.Config{
		InputForward:       forward,
		InputReverse:       reverse,
		OutputPrefix:       prefix,
		BarcodeLength:      4,
		MinimizerCount:     2,
		KmerSize:           3,
		ErrorTolerance:     1,
		MinimizerThreshold: 1,
		ThreadCount:        1,
		Silent:             true,
	}

	assert.NoError(t, run(vcontext.Background(), &cfg, true))

	_, err := os.Stat(prefix + "cluster.node.gz")
	assert.NoError(t, err)
	_, err = os.Stat(prefix + "cluster.node")
	assert.True(t, os.IsNotExist(err))
}

func TestRunRejectsInvalidConfigurationBeforeTouchingFiles(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "bad.")

	cfg := config.Config{
		InputForward: "",
		InputReverse: "",
		OutputPrefix: prefix,
	}

	err := run(vcontext.Background(), &cfg, false)
	assert.Error(t, err)

	_, statErr := os.Stat(prefix + "cluster")
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRejectsMissingInputFile(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "missing.")

	cfg := config.Config{
		InputForward:       filepath.Join(dir, "does-not-exist-1.fastq"),
		InputReverse:       filepath.Join(dir, "does-not-exist-2.fastq"),
		OutputPrefix:       prefix,
		BarcodeLength:      4,
		MinimizerCount:     2,
		KmerSize:           3,
		ErrorTolerance:     1,
		MinimizerThreshold: 1,
		ThreadCount:        1,
		Silent:             true,
	}

	assert.Error(t, run(vcontext.Background(), &cfg, false))
}

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	status := m.Run()
	shutdown()
	os.Exit(status)
}
