package fastx

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aria-lang/polyatrim-go/internal/sequence"
)

// Format is the record syntax of a stream.
type Format int

const (
	// Detect picks FASTA or FASTQ from the first non-blank byte.
	Detect Format = iota
	FASTA
	FASTQ
)

func (f Format) String() string {
	switch f {
	case FASTA:
		return "fasta"
	case FASTQ:
		return "fastq"
	default:
		return "detect"
	}
}

// Record is one read. Header is the whole description line without its
// leading '>' or '@'. Qual is nil for FASTA input.
type Record struct {
	Header string
	Seq    []byte
	Qual   []byte
}

// ID returns the header up to the first space or tab.
func (r Record) ID() string {
	if i := strings.IndexAny(r.Header, " \t"); i >= 0 {
		return r.Header[:i]
	}
	return r.Header
}

// Len returns the number of bases. Record satisfies hmm.Symbols.
func (r Record) Len() int { return len(r.Seq) }

// At returns base i.
func (r Record) At(i int) byte { return r.Seq[i] }

// ParseError reports malformed input at a 1-based line number.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fastx: line %d: %s", e.Line, e.Msg)
}

// ErrEmptyHeader is wrapped when a record has no name.
var ErrEmptyHeader = errors.New("fastx: empty header")

// Reader streams records. It is not safe for concurrent use.
type Reader struct {
	r      *bufio.Reader
	format Format
	line   int

	pending    []byte // FASTA header read ahead of the next record
	hasPending bool

	// OnWarning, when set, receives recoverable problems such as a FASTQ
	// quality string whose length differs from the sequence.
	OnWarning func(error)
}

// NewReader returns a Reader detecting the format from the input.
func NewReader(r io.Reader) *Reader {
	return NewReaderFormat(r, Detect)
}

// NewReaderFormat returns a Reader for a fixed format.
func NewReaderFormat(r io.Reader, f Format) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 64*1024)
	}
	return &Reader{r: br, format: f}
}

// Format returns the detected format, Detect until the first record is read.
func (r *Reader) Format() Format { return r.format }

// readLine returns the next line without its terminator. Lines of any
// length are supported.
func (r *Reader) readLine() ([]byte, error) {
	var buf []byte
	for {
		chunk, err := r.r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(buf) > 0 {
			err = nil
		}
		if err != nil {
			return nil, err
		}
		r.line++
		buf = bytes.TrimRight(buf, "\r\n")
		return buf, nil
	}
}

// nextNonBlank skips empty lines.
func (r *Reader) nextNonBlank() ([]byte, error) {
	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return line, nil
		}
	}
}

// Next returns the next record or io.EOF.
func (r *Reader) Next() (Record, error) {
	if r.format == Detect {
		line, err := r.nextNonBlank()
		if err != nil {
			return Record{}, err
		}
		switch line[0] {
		case '>':
			r.format = FASTA
		case '@':
			r.format = FASTQ
		default:
			return Record{}, &ParseError{Line: r.line, Msg: fmt.Sprintf("expected '>' or '@', found %q", line[0])}
		}
		r.pending, r.hasPending = line, true
	}

	if r.format == FASTQ {
		return r.nextFASTQ()
	}
	return r.nextFASTA()
}

func (r *Reader) header(line []byte, marker byte) (string, error) {
	if len(line) == 0 || line[0] != marker {
		return "", &ParseError{Line: r.line, Msg: fmt.Sprintf("expected header starting with %q", marker)}
	}
	h := string(bytes.TrimSpace(line[1:]))
	if h == "" {
		return "", fmt.Errorf("line %d: %w", r.line, ErrEmptyHeader)
	}
	return h, nil
}

func (r *Reader) takeHeaderLine() ([]byte, error) {
	if r.hasPending {
		r.hasPending = false
		return r.pending, nil
	}
	return r.nextNonBlank()
}

func (r *Reader) nextFASTA() (Record, error) {
	line, err := r.takeHeaderLine()
	if err != nil {
		return Record{}, err
	}
	h, err := r.header(line, '>')
	if err != nil {
		return Record{}, err
	}

	rec := Record{Header: h}
	for {
		line, err := r.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Record{}, err
		}
		if len(line) > 0 && line[0] == '>' {
			r.pending, r.hasPending = bytes.Clone(line), true
			break
		}
		rec.Seq = append(rec.Seq, bytes.TrimSpace(line)...)
	}
	if rec.Seq == nil {
		rec.Seq = []byte{}
	}
	return rec, nil
}

func (r *Reader) nextFASTQ() (Record, error) {
	line, err := r.takeHeaderLine()
	if err != nil {
		return Record{}, err
	}
	h, err := r.header(line, '@')
	if err != nil {
		return Record{}, err
	}

	rec := Record{Header: h, Seq: []byte{}}
	for {
		line, err := r.readLine()
		if err == io.EOF {
			return Record{}, &ParseError{Line: r.line, Msg: "unexpected end of file before '+' line"}
		}
		if err != nil {
			return Record{}, err
		}
		if len(line) > 0 && line[0] == '+' {
			break
		}
		rec.Seq = append(rec.Seq, bytes.TrimSpace(line)...)
	}

	qual, err := r.readLine()
	if err == io.EOF {
		return Record{}, &ParseError{Line: r.line, Msg: "missing quality line"}
	}
	if err != nil {
		return Record{}, err
	}
	rec.Qual = bytes.Clone(bytes.TrimSpace(qual))

	if len(rec.Qual) != len(rec.Seq) && r.OnWarning != nil {
		r.OnWarning(fmt.Errorf("fastx: record %q: quality: %w", rec.Header,
			&sequence.InvalidLengthError{Expected: len(rec.Seq), Actual: len(rec.Qual)}))
	}
	return rec, nil
}

// ReadAll drains r.
func ReadAll(r *Reader) ([]Record, error) {
	var out []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}
