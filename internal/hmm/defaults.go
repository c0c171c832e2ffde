package hmm

// Parameters of the built-in model, trained on Iso-Seq full-length
// non-chimeric reads.
const (
	defaultInitPolyA    = 0.99283668
	defaultInitNonPolyA = 0.00716332
	defaultTranPolyAOut = 3.16493e-07
	defaultTranBodyOut  = 2.74842e-09
)

var (
	defaultEmitPolyA    = [NumSymbols]float64{0.928165, 0.025917, 0.024170, 0.021748}
	defaultEmitNonPolyA = [NumSymbols]float64{0.271806, 0.249539, 0.281787, 0.196867}
)

// DefaultModel returns the built-in poly-A model used when no model file is
// given.
func DefaultModel() *Model {
	m := NewPolyAModel()

	m.SetInitialProb(PolyA, defaultInitPolyA)
	m.SetInitialProb(NonPolyA, defaultInitNonPolyA)

	m.SetTransProb(PolyA, NonPolyA, defaultTranPolyAOut)
	m.SetTransProb(PolyA, PolyA, 1-defaultTranPolyAOut)
	m.SetTransProb(NonPolyA, PolyA, defaultTranBodyOut)
	m.SetTransProb(NonPolyA, NonPolyA, 1-defaultTranBodyOut)

	for sym := 0; sym < NumSymbols; sym++ {
		m.SetEmitProb(PolyA, sym, defaultEmitPolyA[sym])
		m.SetEmitProb(NonPolyA, sym, defaultEmitNonPolyA[sym])
	}
	return m
}
