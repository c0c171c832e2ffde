package hmm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorsRoundTrip(t *testing.T) {
	m := NewPolyAModel()
	assert.Equal(t, 2, m.States())
	assert.Equal(t, 4, m.Symbols())

	m.SetInitialProb(NonPolyA, 0.25)
	m.SetTransProb(PolyA, NonPolyA, 0.125)
	m.SetEmitProb(NonPolyA, 3, 0.0625)

	assert.Equal(t, 0.25, m.InitialProb(NonPolyA))
	assert.Equal(t, 0.125, m.TransProb(PolyA, NonPolyA))
	assert.Equal(t, 0.0625, m.EmitProb(NonPolyA, 3))
	assert.Equal(t, 0.0, m.InitialProb(PolyA))

	assert.Equal(t, 0.125, m.Transition().At(0, 1))
	assert.Equal(t, 0.0625, m.Emission().At(1, 3))
	assert.Equal(t, 0.25, m.Initial().At(1, 0))
}

func TestAccessorsPanicOutOfRange(t *testing.T) {
	m := NewPolyAModel()

	tests := []struct {
		name string
		fn   func()
	}{
		{"initial unknown state", func() { m.InitialProb(Unknown) }},
		{"trans negative", func() { m.SetTransProb(-1, PolyA, 1) }},
		{"trans column", func() { m.TransProb(PolyA, Unknown) }},
		{"emit symbol", func() { m.EmitProb(PolyA, NumSymbols) }},
		{"emit NoSymbol", func() { m.SetEmitProb(PolyA, NoSymbol, 1) }},
		{"bad shape", func() { NewModel(0, 4) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}

func TestWriteFormat(t *testing.T) {
	m := fixtureModel()
	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "2 4 0.5 0.5 0.7 0.3 0 1 0.96 0.01 0.01 0.01 0.3 0.2 0.2 0.3 ", buf.String())
}

func TestWriteReadRoundTrip(t *testing.T) {
	for name, m := range map[string]*Model{
		"fixture": fixtureModel(),
		"default": DefaultModel(),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.txt")
			require.NoError(t, m.Save(path))

			got, err := LoadModel(path)
			require.NoError(t, err)
			assert.True(t, m.Equal(got))
		})
	}
}

func TestReadModelLayout(t *testing.T) {
	input := "2\n4\n0.1 0.9\n0.7 0.3\n0.2 0.8\n" +
		"0.25 0.25 0.25 0.25\n0.1 0.2 0.3 0.4\n"
	m, err := ReadModel(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 0.9, m.InitialProb(NonPolyA))
	assert.Equal(t, 0.3, m.TransProb(PolyA, NonPolyA))
	assert.Equal(t, 0.2, m.TransProb(NonPolyA, PolyA))
	assert.Equal(t, 0.4, m.EmitProb(NonPolyA, 3))
	assert.NoError(t, m.Validate(1e-9))
}

func TestReadModelResizes(t *testing.T) {
	m, err := ReadModel(strings.NewReader("1 2 1 1 0.5 0.5"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.States())
	assert.Equal(t, 2, m.Symbols())
}

func TestReadModelErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"empty", "", "states"},
		{"bad states", "two 4", "states"},
		{"zero symbols", "2 0", "symbols"},
		{"huge states", "100000 100000", "states"},
		{"huge symbols", "2 1025", "symbols"},
		{"truncated init", "2 4 0.5", "init"},
		{"garbage tran", "2 4 0.5 0.5 x", "tran"},
		{"truncated emit", "2 4 0.5 0.5 1 0 0 1 0.25", "emit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadModel(strings.NewReader(tt.input))
			var fe *ModelFormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveUnwritable(t *testing.T) {
	err := DefaultModel().Save(filepath.Join(t.TempDir(), "missing", "model.txt"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, DefaultModel().Validate(DefaultTolerance))
	// The decoding fixture's tail emissions sum to 0.99.
	err := fixtureModel().Validate(1e-12)
	require.ErrorIs(t, err, ErrInvalidModel)
	assert.Contains(t, err.Error(), "emit[0] sums to")

	valid := fixtureModel()
	valid.SetEmitProb(PolyA, 0, 0.97)
	assert.NoError(t, valid.Validate(1e-12))

	m := fixtureModel()
	m.SetTransProb(PolyA, PolyA, 0.9)
	err = m.Validate(1e-9)
	require.ErrorIs(t, err, ErrInvalidModel)
	assert.Contains(t, err.Error(), "tran[0]")

	m = fixtureModel()
	m.SetEmitProb(NonPolyA, 0, -0.1)
	err = m.Validate(1e-9)
	require.ErrorIs(t, err, ErrInvalidModel)
	assert.Contains(t, err.Error(), "not a probability")
}

func TestDefaultModel(t *testing.T) {
	m := DefaultModel()
	assert.Equal(t, 0.99283668, m.InitialProb(PolyA))
	assert.Equal(t, 3.16493e-07, m.TransProb(PolyA, NonPolyA))
	assert.Equal(t, 1-3.16493e-07, m.TransProb(PolyA, PolyA))
	assert.Equal(t, 2.74842e-09, m.TransProb(NonPolyA, PolyA))
	assert.Equal(t, 0.928165, m.EmitProb(PolyA, SymbolIndex('A')))
	assert.Equal(t, 0.196867, m.EmitProb(NonPolyA, SymbolIndex('T')))
}

func TestCloneIndependent(t *testing.T) {
	m := DefaultModel()
	c := m.Clone()
	require.True(t, m.Equal(c))

	c.SetInitialProb(PolyA, 0.5)
	assert.False(t, m.Equal(c))
	assert.Equal(t, 0.99283668, m.InitialProb(PolyA))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "POLYA", PolyA.String())
	assert.Equal(t, "NONPOLYA", NonPolyA.String())
	assert.Equal(t, "UNKNOWN", Unknown.String())
}
