package hmm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// setCounts tallies one labelled training set.
type setCounts struct {
	sequences int
	length    int // every character, known or not
	symbols   [NumSymbols]float64
}

func countSet(set []Symbols) setCounts {
	var c setCounts
	for _, s := range set {
		n := s.Len()
		if n == 0 {
			continue
		}
		c.sequences++
		c.length += n
		for j := 0; j < n; j++ {
			if idx := SymbolIndex(s.At(j)); idx != NoSymbol {
				c.symbols[idx]++
			}
		}
	}
	return c
}

// emission normalises the symbol counts into a probability row.
func (c setCounts) emission() []float64 {
	row := c.symbols[:]
	floats.Scale(1/floats.Sum(row), row)
	return row
}

// selfTransition treats state duration as geometric with the mean length of
// the set's sequences, so P(stay) = 1 - 1/mean.
func (c setCounts) selfTransition() float64 {
	mean := float64(c.length) / float64(c.sequences)
	return 1 - 1/mean
}

func (c setCounts) usable() bool {
	return c.sequences > 0 && floats.Sum(c.symbols[:]) > 0
}

// check reports why the set cannot be trained from. A mean length of one or
// less would put the self-transition outside (0, 1).
func (c setCounts) check(name string) error {
	if !c.usable() {
		return fmt.Errorf("%s set: %w", name, ErrEmptyTrainingSet)
	}
	if c.length <= c.sequences {
		return fmt.Errorf("%s set: mean length %d/%d: %w", name, c.length, c.sequences, ErrShortTrainingSet)
	}
	return nil
}

// Train estimates a poly-A model from labelled examples: polyA holds tail
// sequences, nonPolyA holds read bodies. Characters outside A/C/G/T/U count
// towards sequence length but not towards emissions.
func Train(polyA, nonPolyA []Symbols) (*Model, error) {
	a := countSet(polyA)
	if err := a.check("poly-A"); err != nil {
		return nil, err
	}
	b := countSet(nonPolyA)
	if err := b.check("non-poly-A"); err != nil {
		return nil, err
	}

	m := NewPolyAModel()
	for sym, p := range a.emission() {
		m.SetEmitProb(PolyA, sym, p)
	}
	for sym, p := range b.emission() {
		m.SetEmitProb(NonPolyA, sym, p)
	}

	total := float64(a.sequences + b.sequences)
	m.SetInitialProb(PolyA, float64(a.sequences)/total)
	m.SetInitialProb(NonPolyA, float64(b.sequences)/total)

	stayA, stayB := a.selfTransition(), b.selfTransition()
	m.SetTransProb(PolyA, PolyA, stayA)
	m.SetTransProb(PolyA, NonPolyA, 1-stayA)
	m.SetTransProb(NonPolyA, NonPolyA, stayB)
	m.SetTransProb(NonPolyA, PolyA, 1-stayB)
	return m, nil
}
