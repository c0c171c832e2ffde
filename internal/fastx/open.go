// Package fastx reads FASTA and FASTQ records from plain or compressed
// streams and writes trimmed records back out.
package fastx

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is the container format detected on input.
type Compression int

const (
	Plain Compression = iota
	Gzip
	Bzip2
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	case Zstd:
		return "zstd"
	default:
		return "plain"
	}
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// IsStdin reports whether path names standard input.
func IsStdin(path string) bool {
	return path == "-" || path == "stdin"
}

// multiReadCloser closes every layer of a decompression stack.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens path for reading, "-" or "stdin" meaning standard input, and
// transparently decompresses gzip, bzip2 and zstd content detected by magic
// bytes.
func Open(path string) (io.ReadCloser, error) {
	if IsStdin(path) {
		rc, _, err := Decompress(io.NopCloser(os.Stdin))
		return rc, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, _, err := Decompress(fh)
	if err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rc, nil
}

// Decompress sniffs the first bytes of rc and wraps it in the matching
// decoder. Closing the result closes rc.
func Decompress(rc io.ReadCloser) (io.ReadCloser, Compression, error) {
	br := bufio.NewReaderSize(rc, 64*1024)
	sig, _ := br.Peek(4)

	switch {
	case bytes.HasPrefix(sig, gzipMagic):
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, Gzip, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, rc}}, Gzip, nil
	case bytes.HasPrefix(sig, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, Zstd, err
		}
		return &multiReadCloser{Reader: zr, closers: []io.Closer{zr.IOReadCloser(), rc}}, Zstd, nil
	case bytes.HasPrefix(sig, bzip2Magic):
		return &multiReadCloser{Reader: bzip2.NewReader(br), closers: []io.Closer{rc}}, Bzip2, nil
	default:
		return &multiReadCloser{Reader: br, closers: []io.Closer{rc}}, Plain, nil
	}
}
