package hmm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// The model file is a flat run of whitespace separated values:
//
//	states symbols init[states] tran[states*states] emit[states*symbols]
//
// Tables are row-major. Writing puts a single space after every value.

// MaxModelDim bounds the states and symbols a model file may declare.
const MaxModelDim = 1024

// ReadModel parses a model file. The returned model takes its shape from
// the header. Values are not checked as probabilities; see Validate.
func ReadModel(r io.Reader) (*Model, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(field string, idx int) (string, error) {
		if !sc.Scan() {
			err := sc.Err()
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return "", &ModelFormatError{Field: field, Index: idx, Err: err}
		}
		return sc.Text(), nil
	}

	var dims [2]int
	for i, name := range []string{"states", "symbols"} {
		tok, err := next(name, 0)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, &ModelFormatError{Field: name, Index: 0, Err: err}
		}
		if n <= 0 || n > MaxModelDim {
			return nil, &ModelFormatError{Field: name, Index: 0, Err: fmt.Errorf("must be in [1, %d], got %d", MaxModelDim, n)}
		}
		dims[i] = n
	}

	m := NewModel(dims[0], dims[1])
	for _, sec := range []struct {
		field string
		data  []float64
	}{
		{"init", m.init.Data()},
		{"tran", m.tran.Data()},
		{"emit", m.emit.Data()},
	} {
		for i := range sec.data {
			tok, err := next(sec.field, i)
			if err != nil {
				return nil, err
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &ModelFormatError{Field: sec.field, Index: i, Err: err}
			}
			sec.data[i] = v
		}
	}
	return m, nil
}

// LoadModel reads a model file from disk.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	m, err := ReadModel(f)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	return m, nil
}

// WriteTo writes the model in file format. Values use the shortest
// representation that parses back to the same float64.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	put := func(s string) {
		k, _ := bw.WriteString(s)
		n += int64(k)
		_ = bw.WriteByte(' ')
		n++
	}

	put(strconv.Itoa(m.states))
	put(strconv.Itoa(m.symbols))
	for _, tbl := range [][]float64{m.init.Data(), m.tran.Data(), m.emit.Data()} {
		for _, v := range tbl {
			put(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	if err := bw.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

// Save writes the model to path, replacing any existing file.
func (m *Model) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if _, err := m.WriteTo(f); err != nil {
		return fmt.Errorf("write model %s: %w", path, err)
	}
	return nil
}

// DefaultTolerance is the row-sum slack accepted by Validate for model files
// written with six significant digits.
const DefaultTolerance = 1e-5

// Validate checks that every value is a probability and that the initial
// vector and each transition and emission row sum to one within tol.
func (m *Model) Validate(tol float64) error {
	var errs []error
	check := func(name string, row []float64) {
		for j, v := range row {
			if math.IsNaN(v) || v < 0 || v > 1 {
				errs = append(errs, fmt.Errorf("%s[%d] = %v is not a probability", name, j, v))
			}
		}
		if sum := floats.Sum(row); !scalar.EqualWithinAbs(sum, 1, tol) {
			errs = append(errs, fmt.Errorf("%s sums to %v", name, sum))
		}
	}

	check("init", m.init.Data())
	for i := 0; i < m.states; i++ {
		check(fmt.Sprintf("tran[%d]", i), m.tran.Row(i))
		check(fmt.Sprintf("emit[%d]", i), m.emit.Row(i))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidModel, errors.Join(errs...))
	}
	return nil
}
