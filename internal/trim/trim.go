// Package trim finds and removes poly-A tails from reads.
//
// A read is decoded from its 3' end inward, so the tail is the prefix of the
// decoded path before the first NONPOLYA state.
package trim

import (
	"github.com/aria-lang/polyatrim-go/internal/fastx"
	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/matrix"
)

// PolyALength returns the index of the first NONPOLYA state in a 1 x N path
// decoded from a reversed read, or N when there is none. The path may return
// to POLYA later, so this is a linear scan.
func PolyALength(path *matrix.Matrix[int]) int {
	row := path.Data()
	for i, s := range row {
		if s == int(hmm.NonPolyA) {
			return i
		}
	}
	return len(row)
}

// Result is the outcome of trimming one read.
type Result struct {
	Record fastx.Record
	// Header is the header to write, rewritten for Iso-Seq reads.
	Header string
	// PolyALength is the number of bases removed from the 3' end.
	PolyALength int
	// HeaderErr is set when an Iso-Seq header could not be rewritten.
	HeaderErr error
}

// Keep returns how many leading bases survive.
func (r Result) Keep() int {
	return len(r.Record.Seq) - r.PolyALength
}

// Kept returns the trimmed sequence.
func (r Result) Kept() []byte {
	return r.Record.Seq[:r.Keep()]
}

// Tail returns the removed bases.
func (r Result) Tail() []byte {
	return r.Record.Seq[r.Keep():]
}

// Options control a Trimmer.
type Options struct {
	// IsoSeq rewrites PacBio Iso-Seq FLNC header coordinates.
	IsoSeq bool
}

// Trimmer decodes reads against one model. It owns a Workspace and so must
// not be shared between goroutines; the model may be.
type Trimmer struct {
	model *hmm.Model
	ws    *hmm.Workspace
	opts  Options
}

// New returns a Trimmer for m.
func New(m *hmm.Model, opts Options) *Trimmer {
	return &Trimmer{model: m, ws: hmm.NewWorkspace(), opts: opts}
}

// TailLength returns the poly-A tail length of s.
func (t *Trimmer) TailLength(s hmm.Symbols) int {
	return PolyALength(t.ws.Viterbi(t.model, hmm.Reversed(s)))
}

// Trim decodes rec and reports its tail.
func (t *Trimmer) Trim(rec fastx.Record) Result {
	res := Result{Record: rec, Header: rec.Header}
	res.PolyALength = t.TailLength(rec)

	if t.opts.IsoSeq && res.PolyALength > 0 {
		h, err := AdjustIsoSeqHeader(rec.Header, res.PolyALength)
		if err != nil {
			res.HeaderErr = err
		} else {
			res.Header = h
		}
	}
	return res
}

// Trimmed reports whether any tail was found.
func (r Result) Trimmed() bool { return r.PolyALength > 0 }

// AllTail reports whether the whole read was classified as tail.
func (r Result) AllTail() bool { return r.PolyALength == len(r.Record.Seq) }
