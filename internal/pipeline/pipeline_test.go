package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/polyatrim-go/internal/fastx"
	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/metrics"
	"github.com/aria-lang/polyatrim-go/internal/trim"
)

const body = "GATTACAGCTGCATCGGCTAGCTTGC"

// sliceSource replays records and then returns err (io.EOF when nil).
type sliceSource struct {
	recs []fastx.Record
	err  error
}

func (s *sliceSource) Next() (fastx.Record, error) {
	if len(s.recs) == 0 {
		if s.err != nil {
			return fastx.Record{}, s.err
		}
		return fastx.Record{}, io.EOF
	}
	r := s.recs[0]
	s.recs = s.recs[1:]
	return r, nil
}

func makeReads(n int) []fastx.Record {
	recs := make([]fastx.Record, n)
	for i := range recs {
		tail := strings.Repeat("A", i%25)
		recs[i] = fastx.Record{Header: fmt.Sprintf("read%d", i), Seq: []byte(body + tail)}
	}
	return recs
}

func TestRunPreservesOrder(t *testing.T) {
	recs := makeReads(57)
	m := hmm.DefaultModel()

	var sink Collect
	summary, err := Run(context.Background(), m, Options{Workers: 4, BatchSize: 3},
		&sliceSource{recs: recs}, &sink)
	require.NoError(t, err)
	require.Len(t, sink.Results, len(recs))

	tr := trim.New(m, trim.Options{})
	trimmed := 0
	for i, res := range sink.Results {
		assert.Equal(t, recs[i].Header, res.Record.Header)
		want := tr.TailLength(recs[i])
		assert.Equal(t, want, res.PolyALength, recs[i].Header)
		if want > 0 {
			trimmed++
		}
	}
	assert.Equal(t, len(recs), summary.Reads)
	assert.Equal(t, trimmed, summary.TrimmedReads)
}

func TestRunEmpty(t *testing.T) {
	var sink Collect
	summary, err := Run(context.Background(), hmm.DefaultModel(), Options{}, Records(nil), &sink)
	require.NoError(t, err)
	assert.Empty(t, sink.Results)
	assert.Zero(t, summary.Reads)
}

func TestRunStreamSink(t *testing.T) {
	input := ">r1\n" + body + strings.Repeat("A", 20) + "\n>r2\nAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA\n>r3\n" + body + "\n"
	var out, report bytes.Buffer
	sink := StreamSink{Out: fastx.NewWriter(&out, false), Report: fastx.NewReportWriter(&report)}

	_, err := Run(context.Background(), hmm.DefaultModel(), Options{Workers: 2, BatchSize: 1},
		fastx.NewReader(strings.NewReader(input)), sink)
	require.NoError(t, err)
	require.NoError(t, sink.Flush())

	assert.Equal(t, ">r1\n"+body+"\n>r3\n"+body+"\n", out.String())
	assert.Equal(t, "r1\t20\nr2\t31\nr3\t0\n", report.String())
}

func TestRunIsoSeqHeaders(t *testing.T) {
	header := "m54006_160328_233933/13/1533_53_CCS strand=+;fiveseen=1;polyAseen=1;threeseen=1;fiveend=30;polyAend=1511;threeend=1533;primer=1;chimera=0"
	recs := []fastx.Record{{Header: header, Seq: []byte(body + strings.Repeat("A", 20))}}

	var sink Collect
	_, err := Run(context.Background(), hmm.DefaultModel(), Options{Workers: 1, Trim: trim.Options{IsoSeq: true}},
		&sliceSource{recs: recs}, &sink)
	require.NoError(t, err)
	require.Len(t, sink.Results, 1)
	assert.Contains(t, sink.Results[0].Header, "/13/1533_73_CCS")
	assert.Contains(t, sink.Results[0].Header, "polyAend=1491")
}

func TestRunGenericHeadersStayOffWarnLog(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var sink Collect
	_, err := Run(context.Background(), hmm.DefaultModel(),
		Options{Workers: 2, Trim: trim.Options{IsoSeq: true}, Logger: logger},
		Records(makeReads(30)), &sink)
	require.NoError(t, err)

	for _, res := range sink.Results {
		if res.PolyALength > 0 {
			require.Error(t, res.HeaderErr)
		}
	}
	assert.Empty(t, logs.String())
}

func TestRunMetrics(t *testing.T) {
	met := metrics.New(prometheus.NewRegistry())
	var sink Collect
	_, err := Run(context.Background(), hmm.DefaultModel(), Options{Workers: 2, Metrics: met},
		&sliceSource{recs: makeReads(10)}, &sink)
	require.NoError(t, err)
	assert.Equal(t, 10.0, testutil.ToFloat64(met.ReadsTotal))
}

func TestRunSourceError(t *testing.T) {
	boom := errors.New("disk on fire")
	var sink Collect
	summary, err := Run(context.Background(), hmm.DefaultModel(), Options{Workers: 2, BatchSize: 4},
		&sliceSource{recs: makeReads(8), err: boom}, &sink)
	require.ErrorIs(t, err, boom)
	assert.LessOrEqual(t, summary.Reads, 8)
}

type failingSink struct{ after int }

func (f *failingSink) Emit(trim.Result) error {
	if f.after == 0 {
		return io.ErrShortWrite
	}
	f.after--
	return nil
}

func TestRunSinkError(t *testing.T) {
	_, err := Run(context.Background(), hmm.DefaultModel(), Options{Workers: 3, BatchSize: 2},
		&sliceSource{recs: makeReads(40)}, &failingSink{after: 5})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var sink Collect
	_, err := Run(ctx, hmm.DefaultModel(), Options{}, &sliceSource{recs: makeReads(5)}, &sink)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkRun(b *testing.B) {
	recs := makeReads(1000)
	m := hmm.DefaultModel()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var sink Collect
		if _, err := Run(context.Background(), m, Options{}, Records(recs), &sink); err != nil {
			b.Fatal(err)
		}
	}
}
