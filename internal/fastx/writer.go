package fastx

import (
	"bufio"
	"io"
	"strconv"
)

const (
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// Writer emits trimmed records. FASTQ input is written back as FASTQ with
// the quality string cut at the same position.
//
// Without color a read whose whole sequence is tail is dropped. With color
// every read is written and the tail is shown in red followed by a space.
type Writer struct {
	w     *bufio.Writer
	color bool
}

// NewWriter wraps w. Call Flush when done.
func NewWriter(w io.Writer, color bool) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 64*1024), color: color}
}

// Write writes header with the first keep bases of rec.
func (w *Writer) Write(header string, rec Record, keep int) error {
	kept, tail := rec.Seq[:keep], rec.Seq[keep:]
	if !w.color && len(kept) == 0 {
		return nil
	}

	fastq := rec.Qual != nil
	if fastq {
		w.w.WriteByte('@')
	} else {
		w.w.WriteByte('>')
	}
	w.w.WriteString(header)
	w.w.WriteByte('\n')
	w.w.Write(kept)
	if w.color {
		w.w.WriteString(ansiRed)
		w.w.Write(tail)
		w.w.WriteByte(' ')
		w.w.WriteString(ansiReset)
	}
	w.w.WriteByte('\n')

	if fastq {
		w.w.WriteString("+\n")
		q := rec.Qual
		if keep < len(q) && !w.color {
			q = q[:keep]
		}
		w.w.Write(q)
		w.w.WriteByte('\n')
	}
	// bufio.Writer keeps the first error; report it here and on Flush.
	_, err := w.w.Write(nil)
	return err
}

// Flush writes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// ReportWriter writes "header<TAB>length" lines.
type ReportWriter struct {
	w *bufio.Writer
}

// NewReportWriter wraps w. A nil w discards the report.
func NewReportWriter(w io.Writer) *ReportWriter {
	if w == nil {
		w = io.Discard
	}
	return &ReportWriter{w: bufio.NewWriter(w)}
}

// Write records one tail length.
func (r *ReportWriter) Write(header string, polyALen int) error {
	r.w.WriteString(header)
	r.w.WriteByte('\t')
	r.w.WriteString(strconv.Itoa(polyALen))
	_, err := r.w.WriteString("\n")
	return err
}

// Flush writes buffered output.
func (r *ReportWriter) Flush() error {
	return r.w.Flush()
}
