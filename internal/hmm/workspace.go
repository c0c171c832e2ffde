package hmm

import (
	"fmt"
	"math"

	"github.com/aria-lang/polyatrim-go/internal/matrix"
)

// Workspace holds the scratch matrices for one goroutine. The matrices
// returned by its methods belong to the Workspace and are overwritten by the
// next call; Clone them to keep a result.
//
// A Workspace is not safe for concurrent use. The zero value is ready.
type Workspace struct {
	score     matrix.Matrix[float64] // viterbi scores, states x N
	path      matrix.Matrix[int]     // 1 x N
	forward   matrix.Matrix[float64] // states x N
	backward  matrix.Matrix[float64] // states x N
	posterior matrix.Matrix[float64] // states x N

	// log2 tables for the model of the current call
	logInit []float64
	logTran []float64
	logEmit []float64
	states  int
	symbols int

	syms []int
}

// NewWorkspace returns an empty Workspace.
func NewWorkspace() *Workspace {
	return &Workspace{}
}

// prepare caches log2 parameters of m and the symbol indices of s.
func (w *Workspace) prepare(m *Model, s Symbols) int {
	if m.symbols < NumSymbols {
		panic(fmt.Sprintf("hmm: model has %d symbols, need %d", m.symbols, NumSymbols))
	}
	n := m.states
	w.states = n
	w.symbols = m.symbols
	w.logInit = fillLog(w.logInit, m.init.Data())
	w.logTran = fillLog(w.logTran, m.tran.Data())
	w.logEmit = fillLog(w.logEmit, m.emit.Data())

	size := s.Len()
	if cap(w.syms) < size {
		w.syms = make([]int, size)
	}
	w.syms = w.syms[:size]
	for j := range w.syms {
		w.syms[j] = SymbolIndex(s.At(j))
	}
	return size
}

func fillLog(dst, src []float64) []float64 {
	dst = append(dst[:0], src...)
	for i, p := range dst {
		dst[i] = log2Prob(p)
	}
	return dst
}

func (w *Workspace) tran(i, k int) float64 {
	return w.logTran[i*w.states+k]
}

// emit returns log2 P(symbol at j | state i). Unknown symbols are neutral.
func (w *Workspace) emit(i, j int) float64 {
	sym := w.syms[j]
	if sym == NoSymbol {
		return 0
	}
	return w.logEmit[i*w.symbols+sym]
}

// Viterbi decodes the most likely state path for s. The result is a 1 x N
// matrix of State values. Ties go to the lowest-numbered state.
func (w *Workspace) Viterbi(m *Model, s Symbols) *matrix.Matrix[int] {
	size := w.prepare(m, s)
	n := w.states
	w.score.Resize(n, size)
	w.path.Resize(1, size)
	if size == 0 {
		return &w.path
	}
	w.path.Fill(int(Unknown))

	for i := 0; i < n; i++ {
		w.score.Set(i, 0, w.logInit[i]+w.emit(i, 0))
	}
	for j := 1; j < size; j++ {
		for i := 0; i < n; i++ {
			best := w.score.At(0, j-1) + w.tran(0, i)
			for k := 1; k < n; k++ {
				if v := w.score.At(k, j-1) + w.tran(k, i); v > best {
					best = v
				}
			}
			w.score.Set(i, j, best+w.emit(i, j))
		}
	}

	last := 0
	for i := 1; i < n; i++ {
		if w.score.At(i, size-1) > w.score.At(last, size-1) {
			last = i
		}
	}
	w.path.Set(0, size-1, last)

	for j := size - 2; j >= 0; j-- {
		next := w.path.At(0, j+1)
		arg := 0
		best := w.score.At(0, j) + w.tran(0, next)
		for i := 1; i < n; i++ {
			if v := w.score.At(i, j) + w.tran(i, next); v > best {
				best, arg = v, i
			}
		}
		w.path.Set(0, j, arg)
	}
	return &w.path
}

// Forward fills forward(i,j) = log2 P(s[0..j], state j = i).
func (w *Workspace) Forward(m *Model, s Symbols) *matrix.Matrix[float64] {
	size := w.prepare(m, s)
	w.runForward(size)
	return &w.forward
}

func (w *Workspace) runForward(size int) {
	n := w.states
	w.forward.Resize(n, size)
	if size == 0 {
		return
	}
	for i := 0; i < n; i++ {
		w.forward.Set(i, 0, w.logInit[i]+w.emit(i, 0))
	}
	for j := 1; j < size; j++ {
		for i := 0; i < n; i++ {
			acc := negInf
			for k := 0; k < n; k++ {
				acc = logAdd(acc, w.forward.At(k, j-1)+w.tran(k, i))
			}
			w.forward.Set(i, j, acc+w.emit(i, j))
		}
	}
}

// Backward fills backward(i,j) = log2 P(s[j+1..N) | state j = i). The last
// column is 0.
func (w *Workspace) Backward(m *Model, s Symbols) *matrix.Matrix[float64] {
	size := w.prepare(m, s)
	w.runBackward(size)
	return &w.backward
}

func (w *Workspace) runBackward(size int) {
	n := w.states
	w.backward.Resize(n, size)
	if size == 0 {
		return
	}
	for i := 0; i < n; i++ {
		w.backward.Set(i, size-1, 0)
	}
	for j := size - 2; j >= 0; j-- {
		for i := 0; i < n; i++ {
			acc := negInf
			for k := 0; k < n; k++ {
				acc = logAdd(acc, w.backward.At(k, j+1)+w.tran(i, k)+w.emit(k, j+1))
			}
			w.backward.Set(i, j, acc)
		}
	}
}

// LogProbability returns log2 P(s) under m. The empty sequence has
// probability one.
func (w *Workspace) LogProbability(m *Model, s Symbols) float64 {
	size := w.prepare(m, s)
	w.runForward(size)
	return w.total(size)
}

func (w *Workspace) total(size int) float64 {
	if size == 0 {
		return 0
	}
	col := make([]float64, w.states)
	for i := range col {
		col[i] = w.forward.At(i, size-1)
	}
	return logSum(col)
}

// Posterior returns P(state j = i | s) for every state and position. It runs
// both passes, so the Workspace's forward and backward matrices are replaced
// too. A sequence the model cannot produce gets an all-zero matrix.
func (w *Workspace) Posterior(m *Model, s Symbols) *matrix.Matrix[float64] {
	size := w.prepare(m, s)
	w.runForward(size)
	w.runBackward(size)
	total := w.total(size)

	w.posterior.Resize(w.states, size)
	if math.IsInf(total, -1) {
		w.posterior.Fill(0)
		return &w.posterior
	}
	f, b, p := w.forward.Data(), w.backward.Data(), w.posterior.Data()
	for x := range p {
		p[x] = math.Exp2(f[x] + b[x] - total)
	}
	return &w.posterior
}

// Viterbi decodes s with a fresh Workspace.
func Viterbi(m *Model, s Symbols) *matrix.Matrix[int] {
	return NewWorkspace().Viterbi(m, s)
}

// Forward runs the forward pass with a fresh Workspace.
func Forward(m *Model, s Symbols) *matrix.Matrix[float64] {
	return NewWorkspace().Forward(m, s)
}

// Backward runs the backward pass with a fresh Workspace.
func Backward(m *Model, s Symbols) *matrix.Matrix[float64] {
	return NewWorkspace().Backward(m, s)
}

// Posterior computes posterior state probabilities with a fresh Workspace.
func Posterior(m *Model, s Symbols) *matrix.Matrix[float64] {
	return NewWorkspace().Posterior(m, s)
}

// LogProbability computes log2 P(s) with a fresh Workspace.
func LogProbability(m *Model, s Symbols) float64 {
	return NewWorkspace().LogProbability(m, s)
}
