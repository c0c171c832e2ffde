// Package sequence provides the nucleotide read type used throughout
// polyatrim.
//
// A Sequence owns its bases as a byte slice. Reverse, Complement and
// ReverseComplement mutate in place and return the receiver so calls can be
// chained; the *Copy variants leave the receiver untouched. A Sequence can be
// case-insensitive, in which case comparisons ignore case while the stored
// bases keep whatever case they were read with.
package sequence

import (
	"bytes"
	"fmt"
	"strings"
)

// SequenceType represents the type of biological sequence.
type SequenceType int

const (
	// DNA represents a DNA sequence (A, C, G, T)
	DNA SequenceType = iota
	// RNA represents an RNA sequence (A, C, G, U)
	RNA
	// Unknown represents an unknown sequence type
	Unknown
)

func (t SequenceType) String() string {
	switch t {
	case DNA:
		return "DNA"
	case RNA:
		return "RNA"
	default:
		return "Unknown"
	}
}

// complementTable maps every byte to its complement. Bytes without a
// nucleotide meaning map to themselves.
var complementTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = byte(i)
	}
	pairs := []struct{ from, to byte }{
		{'A', 'T'}, {'T', 'A'}, {'C', 'G'}, {'G', 'C'}, {'U', 'A'}, {'N', 'N'},
		{'a', 't'}, {'t', 'a'}, {'c', 'g'}, {'g', 'c'}, {'u', 'a'}, {'n', 'n'},
	}
	for _, p := range pairs {
		t[p.from] = p.to
	}
	return t
}()

// ComplementBase returns the complement of a single base.
func ComplementBase(c byte) byte {
	return complementTable[c]
}

// Sequence is a named read.
type Sequence struct {
	ID          string
	Description string
	SeqType     SequenceType

	bases           []byte
	caseInsensitive bool
}

// New wraps bases in a case-sensitive Sequence. No validation is done; use
// Parse for checked input.
func New(bases string) *Sequence {
	return &Sequence{bases: []byte(bases), SeqType: DNA}
}

// NewCaseInsensitive wraps bases in a Sequence that compares case-blind.
func NewCaseInsensitive(bases string) *Sequence {
	s := New(bases)
	s.caseInsensitive = true
	return s
}

// FromBytes takes ownership of b.
func FromBytes(b []byte, caseInsensitive bool) *Sequence {
	return &Sequence{bases: b, SeqType: DNA, caseInsensitive: caseInsensitive}
}

// Parse validates bases and returns a case-insensitive Sequence. The type is
// RNA when the bases contain U and no T, DNA otherwise.
func Parse(bases string) (*Sequence, error) {
	if len(bases) == 0 {
		return nil, &EmptySequenceError{}
	}
	if err := ValidateNucleotides(bases); err != nil {
		return nil, err
	}
	s := NewCaseInsensitive(bases)
	upper := strings.ToUpper(bases)
	if strings.ContainsRune(upper, 'U') && !strings.ContainsRune(upper, 'T') {
		s.SeqType = RNA
	}
	return s, nil
}

// WithID creates a new validated sequence with an identifier.
func WithID(bases, id string) (*Sequence, error) {
	if len(id) == 0 {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	seq, err := Parse(bases)
	if err != nil {
		return nil, err
	}

	seq.ID = id
	return seq, nil
}

// Len returns the number of bases.
func (s *Sequence) Len() int {
	return len(s.bases)
}

// At returns the base at position i.
func (s *Sequence) At(i int) byte {
	return s.bases[i]
}

// Bytes returns the underlying bases. The slice aliases the Sequence.
func (s *Sequence) Bytes() []byte {
	return s.bases
}

// Bases returns the bases as a string.
func (s *Sequence) Bases() string {
	return string(s.bases)
}

// CaseInsensitive reports whether comparisons ignore case.
func (s *Sequence) CaseInsensitive() bool {
	return s.caseInsensitive
}

// Subsequence returns bases [start, end) as a new Sequence.
func (s *Sequence) Subsequence(start, end int) (*Sequence, error) {
	if start < 0 {
		return nil, fmt.Errorf("start index must be non-negative")
	}
	if end < start {
		return nil, fmt.Errorf("end must not be less than start")
	}
	if end > len(s.bases) {
		return nil, fmt.Errorf("end must not exceed sequence length")
	}

	out := s.clone()
	out.bases = bytes.Clone(s.bases[start:end])
	return out, nil
}

func (s *Sequence) clone() *Sequence {
	c := *s
	c.bases = bytes.Clone(s.bases)
	return &c
}

// Reverse reverses the bases in place.
func (s *Sequence) Reverse() *Sequence {
	b := s.bases
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return s
}

// Complement replaces every base with its complement in place
// (A<->T, C<->G, U->A, N->N, anything else unchanged, case kept).
func (s *Sequence) Complement() *Sequence {
	for i, c := range s.bases {
		s.bases[i] = complementTable[c]
	}
	return s
}

// ReverseComplement reverses and complements in place.
func (s *Sequence) ReverseComplement() *Sequence {
	b := s.bases
	i, j := 0, len(b)-1
	for ; i < j; i, j = i+1, j-1 {
		b[i], b[j] = complementTable[b[j]], complementTable[b[i]]
	}
	if i == j {
		b[i] = complementTable[b[i]]
	}
	return s
}

// ReverseCopy returns a reversed copy.
func (s *Sequence) ReverseCopy() *Sequence {
	return s.clone().Reverse()
}

// ComplementCopy returns a complemented copy.
func (s *Sequence) ComplementCopy() *Sequence {
	return s.clone().Complement()
}

// ReverseComplementCopy returns a reverse-complemented copy.
func (s *Sequence) ReverseComplementCopy() *Sequence {
	return s.clone().ReverseComplement()
}

// BaseCounts holds per-base tallies. Lowercase bases count with their
// uppercase form.
type BaseCounts struct {
	A     int
	C     int
	G     int
	T     int // Also counts U for RNA
	N     int
	Other int
}

// BaseCounts returns the count of each base type.
func (s *Sequence) BaseCounts() BaseCounts {
	counts := BaseCounts{}

	for _, b := range s.bases {
		switch b {
		case 'A', 'a':
			counts.A++
		case 'C', 'c':
			counts.C++
		case 'G', 'g':
			counts.G++
		case 'T', 't', 'U', 'u':
			counts.T++
		case 'N', 'n':
			counts.N++
		default:
			counts.Other++
		}
	}

	return counts
}

// Total returns the total count of all bases.
func (bc BaseCounts) Total() int {
	return bc.A + bc.C + bc.G + bc.T + bc.N + bc.Other
}

// AFraction returns the proportion of A bases, 0 for an empty sequence.
func (s *Sequence) AFraction() float64 {
	if len(s.bases) == 0 {
		return 0
	}
	return float64(s.BaseCounts().A) / float64(len(s.bases))
}

// ToFASTA returns the sequence in FASTA format wrapped at width columns.
// A width of zero or less writes the bases on a single line.
func (s *Sequence) ToFASTA(width int) string {
	var header string
	if s.ID != "" {
		header = ">" + s.ID
		if s.Description != "" {
			header += " " + s.Description
		}
	} else {
		header = ">sequence"
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteByte('\n')

	if width <= 0 {
		width = len(s.bases)
	}
	for i := 0; i < len(s.bases); i += width {
		end := min(i+width, len(s.bases))
		sb.Write(s.bases[i:end])
		sb.WriteByte('\n')
	}

	return sb.String()
}

// String returns the bases.
func (s *Sequence) String() string {
	return string(s.bases)
}

// Equal compares bases with other. The comparison ignores case when either
// side is case-insensitive.
func (s *Sequence) Equal(other *Sequence) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.caseInsensitive || other.caseInsensitive {
		return bytes.EqualFold(s.bases, other.bases)
	}
	return bytes.Equal(s.bases, other.bases)
}
