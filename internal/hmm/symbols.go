package hmm

// Symbols is an indexable run of nucleotide characters. *sequence.Sequence,
// String and Bytes satisfy it; Reversed walks any Symbols from the end.
type Symbols interface {
	Len() int
	At(i int) byte
}

// String adapts a Go string.
type String string

func (s String) Len() int { return len(s) }
func (s String) At(i int) byte { return s[i] }

// Bytes adapts a byte slice.
type Bytes []byte

func (b Bytes) Len() int { return len(b) }
func (b Bytes) At(i int) byte { return b[i] }

type reversed struct {
	s Symbols
}

func (r reversed) Len() int { return r.s.Len() }
func (r reversed) At(i int) byte { return r.s.At(r.s.Len() - 1 - i) }

// Reversed returns a view of s read from its last symbol to its first.
// Reversing a reversed view returns the original.
func Reversed(s Symbols) Symbols {
	if r, ok := s.(reversed); ok {
		return r.s
	}
	return reversed{s: s}
}

// NoSymbol is the index of any character outside the A/C/G/T alphabet. It
// carries no evidence: its emission log-probability is 0 in every state.
const NoSymbol = -1

var symbolTable = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = NoSymbol
	}
	for c, idx := range map[byte]int8{
		'A': 0, 'a': 0,
		'C': 1, 'c': 1,
		'G': 2, 'g': 2,
		'T': 3, 't': 3,
		'U': 3, 'u': 3,
	} {
		t[c] = idx
	}
	return t
}()

// SymbolIndex maps a nucleotide to its column in the emission table:
// A=0, C=1, G=2, T/U=3, case-insensitive. Every other byte maps to NoSymbol.
func SymbolIndex(c byte) int {
	return int(symbolTable[c])
}

// symbolAlphabet is the character written for each emission column.
var symbolAlphabet = [NumSymbols]byte{'A', 'C', 'G', 'T'}

// SymbolChar returns the uppercase nucleotide for an emission column.
func SymbolChar(idx int) byte {
	return symbolAlphabet[idx]
}
