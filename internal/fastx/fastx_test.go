package fastx

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/polyatrim-go/internal/sequence"
)

const sampleFASTA = `>read1 first read
ACGT
ACGT

>read2
GATTACA
>read3
`

func TestReadFASTA(t *testing.T) {
	r := NewReader(strings.NewReader(sampleFASTA))
	recs, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, FASTA, r.Format())

	assert.Equal(t, "read1 first read", recs[0].Header)
	assert.Equal(t, "read1", recs[0].ID())
	assert.Equal(t, "ACGTACGT", string(recs[0].Seq))
	assert.Nil(t, recs[0].Qual)

	assert.Equal(t, "GATTACA", string(recs[1].Seq))
	assert.Equal(t, 0, recs[2].Len())
	assert.NotNil(t, recs[2].Seq)
}

func TestReadFASTQ(t *testing.T) {
	input := "@r1 x\nACGT\n+\nIIII\n@r2\nGG\n+r2\n#\n"
	var warnings []error
	r := NewReader(strings.NewReader(input))
	r.OnWarning = func(err error) { warnings = append(warnings, err) }

	recs, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, FASTQ, r.Format())
	assert.Equal(t, "ACGT", string(recs[0].Seq))
	assert.Equal(t, "IIII", string(recs[0].Qual))
	assert.Equal(t, "r1", recs[0].ID())

	require.Len(t, warnings, 1)
	var le *sequence.InvalidLengthError
	require.ErrorAs(t, warnings[0], &le)
	assert.Equal(t, 2, le.Expected)
	assert.Equal(t, 1, le.Actual)
}

func TestReadCRLF(t *testing.T) {
	recs, err := ReadAll(NewReader(strings.NewReader(">a\r\nAC\r\nGT\r\n")))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ACGT", string(recs[0].Seq))
}

func TestReadLongLine(t *testing.T) {
	long := strings.Repeat("ACGT", 50000)
	recs, err := ReadAll(NewReader(strings.NewReader(">a\n" + long + "\n")))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, long, string(recs[0].Seq))
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not a record", "ACGT\n"},
		{"fastq without plus", "@r1\nACGT\n"},
		{"fastq without quality", "@r1\nACGT\n+\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAll(NewReader(strings.NewReader(tt.input)))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Positive(t, pe.Line)
		})
	}

	_, err := ReadAll(NewReader(strings.NewReader(">\nACGT\n")))
	assert.True(t, errors.Is(err, ErrEmptyHeader))
}

func TestEmptyInput(t *testing.T) {
	_, err := NewReader(strings.NewReader("\n\n")).Next()
	assert.Equal(t, io.EOF, err)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenCompressed(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write([]byte(sampleFASTA))
	require.NoError(t, gw.Close())

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	require.NoError(t, err)
	_, _ = zw.Write([]byte(sampleFASTA))
	require.NoError(t, zw.Close())

	tests := []struct {
		name string
		data []byte
	}{
		{"plain", []byte(sampleFASTA)},
		{"gzip", gz.Bytes()},
		{"zstd", zs.Bytes()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := Open(writeFile(t, "reads."+tt.name, tt.data))
			require.NoError(t, err)
			defer rc.Close()

			recs, err := ReadAll(NewReader(rc))
			require.NoError(t, err)
			assert.Len(t, recs, 3)
		})
	}
}

func TestDecompressDetects(t *testing.T) {
	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, _ = gw.Write([]byte(">a\nA\n"))
	require.NoError(t, gw.Close())

	_, c, err := Decompress(io.NopCloser(bytes.NewReader(gz.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, Gzip, c)

	_, c, err = Decompress(io.NopCloser(strings.NewReader(">a\nA\n")))
	require.NoError(t, err)
	assert.Equal(t, Plain, c)
	assert.Equal(t, "plain", c.String())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.fa"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, IsStdin("-"))
	assert.True(t, IsStdin("stdin"))
	assert.False(t, IsStdin("reads.fa"))
}

func TestWriter(t *testing.T) {
	rec := Record{Header: "r1", Seq: []byte("ACGTAAAA")}

	tests := []struct {
		name  string
		color bool
		rec   Record
		keep  int
		want  string
	}{
		{"trimmed", false, rec, 4, ">r1\nACGT\n"},
		{"untouched", false, rec, 8, ">r1\nACGTAAAA\n"},
		{"all tail dropped", false, rec, 0, ""},
		{"color", true, rec, 4, ">r1\nACGT\x1b[31mAAAA \x1b[0m\n"},
		{"color all tail", true, rec, 0, ">r1\n\x1b[31mACGTAAAA \x1b[0m\n"},
		{"fastq", false, Record{Header: "q", Seq: []byte("ACAA"), Qual: []byte("1234")}, 2, "@q\nAC\n+\n12\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tt.color)
			require.NoError(t, w.Write(tt.rec.Header, tt.rec, tt.keep))
			require.NoError(t, w.Flush())
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestReportWriter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReportWriter(&buf)
	require.NoError(t, r.Write("r1 desc", 20))
	require.NoError(t, r.Write("r2", 0))
	require.NoError(t, r.Flush())
	assert.Equal(t, "r1 desc\t20\nr2\t0\n", buf.String())

	require.NoError(t, NewReportWriter(nil).Write("x", 1))
}
