// Package polyatrim provides a high-level API for poly-A tail detection.
//
// This package exposes the HMM engine and the trimmer through a small API
// for the common cases.
//
// Example usage:
//
//	n := polyatrim.TailLength("GATTACAGCTGCAAAAAAAAAAAAAAAAAAAA")
//	fmt.Printf("poly-A tail: %d bases\n", n)
//
//	reads, err := polyatrim.ReadFile("flnc.fa.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, res := range polyatrim.TrimAll(reads, polyatrim.Options{IsoSeq: true}) {
//	    fmt.Println(res.Header, res.PolyALength)
//	}
package polyatrim

import (
	"context"
	"fmt"

	"github.com/aria-lang/polyatrim-go/internal/fastx"
	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/pipeline"
	"github.com/aria-lang/polyatrim-go/internal/sequence"
	"github.com/aria-lang/polyatrim-go/internal/stats"
	"github.com/aria-lang/polyatrim-go/internal/trim"
)

// Re-export types for convenience
type (
	Model     = hmm.Model
	State     = hmm.State
	Symbols   = hmm.Symbols
	Workspace = hmm.Workspace
	Record    = fastx.Record
	Result    = trim.Result
	Options   = trim.Options
	Trimmer   = trim.Trimmer
	Summary   = stats.Summary
	Sequence  = sequence.Sequence
)

// States
const (
	PolyA    = hmm.PolyA
	NonPolyA = hmm.NonPolyA
	Unknown  = hmm.Unknown
)

// DefaultModel returns the built-in poly-A model.
func DefaultModel() *Model {
	return hmm.DefaultModel()
}

// LoadModel reads and validates a model file.
func LoadModel(path string) (*Model, error) {
	m, err := hmm.LoadModel(path)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(hmm.DefaultTolerance); err != nil {
		return nil, err
	}
	return m, nil
}

// Train estimates a model from tail and body sequences.
func Train(polyA, nonPolyA []string) (*Model, error) {
	wrap := func(ss []string) []Symbols {
		out := make([]Symbols, len(ss))
		for i, s := range ss {
			out[i] = hmm.String(s)
		}
		return out
	}
	return hmm.Train(wrap(polyA), wrap(nonPolyA))
}

// NewTrimmer returns a Trimmer for m. A Trimmer is not safe for concurrent
// use.
func NewTrimmer(m *Model, opts Options) *Trimmer {
	return trim.New(m, opts)
}

// TailLength returns the poly-A tail length of bases under the default
// model.
func TailLength(bases string) int {
	return trim.New(hmm.DefaultModel(), Options{}).TailLength(hmm.String(bases))
}

// TrimSequence returns bases without its poly-A tail and the tail length.
func TrimSequence(bases string) (string, int) {
	n := TailLength(bases)
	return bases[:len(bases)-n], n
}

// TrimAll trims records with the default model on all CPUs, keeping input
// order.
func TrimAll(recs []Record, opts Options) []Result {
	var sink pipeline.Collect
	// Records never fails and Collect never fails, so neither does Run.
	pipeline.Run(context.Background(), hmm.DefaultModel(), pipeline.Options{Trim: opts}, pipeline.Records(recs), &sink)
	return sink.Results
}

// ReadFile reads every record of a FASTA or FASTQ file, compressed or not.
func ReadFile(path string) ([]Record, error) {
	rc, err := fastx.Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	recs, err := fastx.ReadAll(fastx.NewReader(rc))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return recs, nil
}

// Version returns the polyatrim version.
func Version() string {
	return "1.0.0"
}

// Info returns information about polyatrim.
func Info() string {
	return fmt.Sprintf(`polyatrim v%s - Poly-A Tail Trimmer

A two-state hidden Markov model that finds and removes poly-A tails.

Features:
  - Viterbi, forward, backward and posterior decoding in log2 space
  - Maximum-likelihood training from labelled sequences
  - FASTA/FASTQ input, gzip, bzip2 and zstd compressed
  - PacBio Iso-Seq FLNC header coordinate rewriting
  - Parallel trimming with ordered output
`, Version())
}
