// Package matrix provides a small dense row-major matrix used as scratch
// storage by the HMM algorithms.
//
// Indexing outside the matrix, dividing by zero and taking the log of a
// non-positive value are programming errors and panic. Everything else is
// plain slice arithmetic over a single contiguous buffer.
package matrix

import (
	"fmt"
	"math"
	"slices"
)

// Number is the set of element types a Matrix can hold.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Matrix is a dense row-major matrix. The zero value is an empty 0x0 matrix.
type Matrix[V Number] struct {
	rows, cols int
	data       []V
}

// New returns a zeroed rows x cols matrix.
func New[V Number](rows, cols int) *Matrix[V] {
	m := &Matrix[V]{}
	m.Resize(rows, cols)
	return m
}

// FromRows builds a matrix from a slice of equally long rows.
func FromRows[V Number](rows [][]V) *Matrix[V] {
	if len(rows) == 0 {
		return &Matrix[V]{}
	}
	m := New[V](len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != m.cols {
			panic(fmt.Sprintf("matrix: row %d has %d columns, want %d", i, len(r), m.cols))
		}
		copy(m.data[i*m.cols:], r)
	}
	return m
}

// Resize changes the shape to rows x cols. Contents are not preserved; the
// buffer is reused when it is large enough and zeroed otherwise.
func (m *Matrix[V]) Resize(rows, cols int) {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix: invalid shape %dx%d", rows, cols))
	}
	n := rows * cols
	if cap(m.data) >= n {
		m.data = m.data[:n]
	} else {
		m.data = make([]V, n)
	}
	m.rows, m.cols = rows, cols
}

// Rows returns the number of rows.
func (m *Matrix[V]) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix[V]) Cols() int { return m.cols }

// Len returns rows*cols.
func (m *Matrix[V]) Len() int { return len(m.data) }

func (m *Matrix[V]) index(i, j int) int {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: index (%d,%d) out of range for %dx%d", i, j, m.rows, m.cols))
	}
	return i*m.cols + j
}

// At returns the element at row i, column j.
func (m *Matrix[V]) At(i, j int) V {
	return m.data[m.index(i, j)]
}

// Set stores v at row i, column j.
func (m *Matrix[V]) Set(i, j int, v V) {
	m.data[m.index(i, j)] = v
}

// Row returns row i as a slice aliasing the matrix buffer.
func (m *Matrix[V]) Row(i int) []V {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("matrix: row %d out of range for %dx%d", i, m.rows, m.cols))
	}
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// Data returns the row-major backing slice.
func (m *Matrix[V]) Data() []V { return m.data }

// Fill sets every element to v.
func (m *Matrix[V]) Fill(v V) *Matrix[V] {
	for i := range m.data {
		m.data[i] = v
	}
	return m
}

// Add adds v to every element in place.
func (m *Matrix[V]) Add(v V) *Matrix[V] {
	for i := range m.data {
		m.data[i] += v
	}
	return m
}

// Sub subtracts v from every element in place.
func (m *Matrix[V]) Sub(v V) *Matrix[V] {
	for i := range m.data {
		m.data[i] -= v
	}
	return m
}

// Mul multiplies every element by v in place.
func (m *Matrix[V]) Mul(v V) *Matrix[V] {
	for i := range m.data {
		m.data[i] *= v
	}
	return m
}

// Div divides every element by v in place. v must not be zero.
func (m *Matrix[V]) Div(v V) *Matrix[V] {
	if v == 0 {
		panic("matrix: division by zero")
	}
	for i := range m.data {
		m.data[i] /= v
	}
	return m
}

// Log2 replaces every element with its base-2 logarithm. Every element must
// be strictly positive.
func (m *Matrix[V]) Log2() *Matrix[V] {
	for i, v := range m.data {
		if !(v > 0) {
			panic(fmt.Sprintf("matrix: log2 of non-positive value %v at offset %d", v, i))
		}
		m.data[i] = V(math.Log2(float64(v)))
	}
	return m
}

// RowSum returns the sum of row i.
func (m *Matrix[V]) RowSum(i int) V {
	var sum V
	for _, v := range m.Row(i) {
		sum += v
	}
	return sum
}

// ColSum returns the sum of column j.
func (m *Matrix[V]) ColSum(j int) V {
	if j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: column %d out of range for %dx%d", j, m.rows, m.cols))
	}
	var sum V
	for i := 0; i < m.rows; i++ {
		sum += m.data[i*m.cols+j]
	}
	return sum
}

// Equal reports whether both matrices have the same shape and elements.
// Elements are compared with ==, so NaN never equals itself and +0 equals -0.
func (m *Matrix[V]) Equal(other *Matrix[V]) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.rows == other.rows && m.cols == other.cols && slices.Equal(m.data, other.data)
}

// Clone returns an independent copy.
func (m *Matrix[V]) Clone() *Matrix[V] {
	return &Matrix[V]{rows: m.rows, cols: m.cols, data: slices.Clone(m.data)}
}

// CopyFrom resizes m to the shape of src and copies its elements.
func (m *Matrix[V]) CopyFrom(src *Matrix[V]) {
	m.Resize(src.rows, src.cols)
	copy(m.data, src.data)
}

// ToRows returns the contents as freshly allocated rows.
func (m *Matrix[V]) ToRows() [][]V {
	out := make([][]V, m.rows)
	for i := range out {
		out[i] = slices.Clone(m.Row(i))
	}
	return out
}

func (m *Matrix[V]) String() string {
	return fmt.Sprintf("Matrix(%dx%d)%v", m.rows, m.cols, m.ToRows())
}
