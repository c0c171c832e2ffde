// Package hmm implements the two-state poly-A hidden Markov model: the
// parameter store, Viterbi decoding, the forward and backward passes,
// posterior state probabilities and closed-form maximum-likelihood training.
//
// All dynamic programs work in base-2 log space. Scratch matrices live in a
// Workspace owned by the caller, so a single Model can be shared read-only
// between goroutines as long as each goroutine has its own Workspace.
package hmm

import (
	"fmt"

	"github.com/aria-lang/polyatrim-go/internal/matrix"
)

// State is a hidden state of the poly-A model.
type State int

const (
	// PolyA is the tail state.
	PolyA State = iota
	// NonPolyA is the body of the read.
	NonPolyA
	// Unknown only fills decoded paths before backtracking; it is never a
	// model state.
	Unknown
)

func (s State) String() string {
	switch s {
	case PolyA:
		return "POLYA"
	case NonPolyA:
		return "NONPOLYA"
	default:
		return "UNKNOWN"
	}
}

const (
	// NumStates is the number of real states in the poly-A model.
	NumStates = 2
	// NumSymbols is the size of the A/C/G/T alphabet.
	NumSymbols = 4
)

// Model holds initial, transition and emission probabilities (not logs).
//
// Rows of the transition and emission tables and the initial vector are
// expected to sum to one. Nothing enforces this on Set*; call Validate.
type Model struct {
	states, symbols int
	init            *matrix.Matrix[float64] // states x 1
	tran            *matrix.Matrix[float64] // states x states
	emit            *matrix.Matrix[float64] // states x symbols
}

// NewModel returns a zeroed model with the given dimensions.
func NewModel(states, symbols int) *Model {
	if states <= 0 || symbols <= 0 {
		panic(fmt.Sprintf("hmm: invalid model shape %d states x %d symbols", states, symbols))
	}
	return &Model{
		states:  states,
		symbols: symbols,
		init:    matrix.New[float64](states, 1),
		tran:    matrix.New[float64](states, states),
		emit:    matrix.New[float64](states, symbols),
	}
}

// NewPolyAModel returns a zeroed 2-state, 4-symbol model.
func NewPolyAModel() *Model {
	return NewModel(NumStates, NumSymbols)
}

// States returns the number of states.
func (m *Model) States() int { return m.states }

// Symbols returns the alphabet size.
func (m *Model) Symbols() int { return m.symbols }

func (m *Model) checkState(i int) {
	if i < 0 || i >= m.states {
		panic(fmt.Sprintf("hmm: state %d out of range [0,%d)", i, m.states))
	}
}

func (m *Model) checkSymbol(j int) {
	if j < 0 || j >= m.symbols {
		panic(fmt.Sprintf("hmm: symbol %d out of range [0,%d)", j, m.symbols))
	}
}

// InitialProb returns P(first state = i).
func (m *Model) InitialProb(i State) float64 {
	m.checkState(int(i))
	return m.init.At(int(i), 0)
}

// SetInitialProb sets P(first state = i).
func (m *Model) SetInitialProb(i State, v float64) {
	m.checkState(int(i))
	m.init.Set(int(i), 0, v)
}

// TransProb returns P(next = j | current = i).
func (m *Model) TransProb(i, j State) float64 {
	m.checkState(int(i))
	m.checkState(int(j))
	return m.tran.At(int(i), int(j))
}

// SetTransProb sets P(next = j | current = i).
func (m *Model) SetTransProb(i, j State, v float64) {
	m.checkState(int(i))
	m.checkState(int(j))
	m.tran.Set(int(i), int(j), v)
}

// EmitProb returns P(symbol | state i).
func (m *Model) EmitProb(i State, symbol int) float64 {
	m.checkState(int(i))
	m.checkSymbol(symbol)
	return m.emit.At(int(i), symbol)
}

// SetEmitProb sets P(symbol | state i).
func (m *Model) SetEmitProb(i State, symbol int, v float64) {
	m.checkState(int(i))
	m.checkSymbol(symbol)
	m.emit.Set(int(i), symbol, v)
}

// Initial returns the states x 1 initial vector. The matrix aliases the model.
func (m *Model) Initial() *matrix.Matrix[float64] { return m.init }

// Transition returns the states x states table. The matrix aliases the model.
func (m *Model) Transition() *matrix.Matrix[float64] { return m.tran }

// Emission returns the states x symbols table. The matrix aliases the model.
func (m *Model) Emission() *matrix.Matrix[float64] { return m.emit }

// Clone returns an independent copy.
func (m *Model) Clone() *Model {
	return &Model{
		states:  m.states,
		symbols: m.symbols,
		init:    m.init.Clone(),
		tran:    m.tran.Clone(),
		emit:    m.emit.Clone(),
	}
}

// Equal reports whether both models have identical shape and parameters.
func (m *Model) Equal(other *Model) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.states == other.states && m.symbols == other.symbols &&
		m.init.Equal(other.init) && m.tran.Equal(other.tran) && m.emit.Equal(other.emit)
}
