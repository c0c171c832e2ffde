package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/polyatrim-go/internal/hmm"
)

const body = "GATTACAGCTGCATCGGCTAGCTTGC"

func newRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	New(opts).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := payload.(string); ok {
		buf.WriteString(s)
	} else if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestTrimHandler(t *testing.T) {
	h := newRouter(Options{Workers: 2})

	rec := do(t, h, http.MethodPost, "/api/v1/trim", TrimRequest{Reads: []Read{
		{Header: "r1", Sequence: body + strings.Repeat("A", 20)},
		{Sequence: body},
		{Header: "r3", Sequence: strings.Repeat("A", 31)},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeBody[TrimResponse](t, rec)
	assert.NotEmpty(t, resp.JobID)
	require.Len(t, resp.Reads, 3)

	assert.Equal(t, "r1", resp.Reads[0].Header)
	assert.Equal(t, body, resp.Reads[0].Sequence)
	assert.Equal(t, strings.Repeat("A", 20), resp.Reads[0].Tail)
	assert.Equal(t, 20, resp.Reads[0].PolyALength)

	assert.Equal(t, "read2", resp.Reads[1].Header)
	assert.Zero(t, resp.Reads[1].PolyALength)

	assert.Equal(t, 31, resp.Reads[2].PolyALength)
	assert.Empty(t, resp.Reads[2].Sequence)

	assert.Equal(t, 3, resp.Summary.Reads)
	assert.Equal(t, 2, resp.Summary.TrimmedReads)
	assert.Equal(t, 1, resp.Summary.AllTailReads)
}

func TestTrimHandlerIsoSeq(t *testing.T) {
	header := "m54006_160328_233933/13/1533_53_CCS strand=+;fiveseen=1;polyAseen=1;threeseen=1;fiveend=30;polyAend=1511;threeend=1533;primer=1;chimera=0"
	read := Read{Header: header, Sequence: body + strings.Repeat("A", 20)}
	on, off := true, false

	h := newRouter(Options{IsoSeq: true})
	resp := decodeBody[TrimResponse](t, do(t, h, http.MethodPost, "/api/v1/trim", TrimRequest{Reads: []Read{read}}))
	assert.Contains(t, resp.Reads[0].Header, "1533_73_CCS")

	resp = decodeBody[TrimResponse](t, do(t, h, http.MethodPost, "/api/v1/trim", TrimRequest{Reads: []Read{read}, IsoSeq: &off}))
	assert.Equal(t, header, resp.Reads[0].Header)

	h = newRouter(Options{})
	resp = decodeBody[TrimResponse](t, do(t, h, http.MethodPost, "/api/v1/trim",
		TrimRequest{Reads: []Read{{Header: "plain", Sequence: read.Sequence}}, IsoSeq: &on}))
	assert.Equal(t, "plain", resp.Reads[0].Header)
	assert.NotEmpty(t, resp.Reads[0].HeaderError)
}

func TestTrimHandlerErrors(t *testing.T) {
	h := newRouter(Options{MaxReads: 1})

	tests := []struct {
		name    string
		payload any
		status  int
	}{
		{"bad json", "{", http.StatusBadRequest},
		{"no reads", TrimRequest{}, http.StatusBadRequest},
		{"too many", TrimRequest{Reads: []Read{{Sequence: "A"}, {Sequence: "C"}}}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/trim", tt.payload)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decodeBody[ErrorResponse](t, rec).Error)
		})
	}
}

func TestDecodeHandler(t *testing.T) {
	h := newRouter(Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/decode", DecodeRequest{
		Sequence:  body + strings.Repeat("A", 12),
		Reverse:   true,
		Posterior: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[DecodeResponse](t, rec)

	assert.Equal(t, 12, resp.PolyALength)
	require.Len(t, resp.Path, len(body)+12)
	assert.Equal(t, "POLYA", resp.Path[0])
	assert.Equal(t, "NONPOLYA", resp.Path[12])
	require.NotNil(t, resp.LogProbability)
	assert.Negative(t, *resp.LogProbability)
	require.Len(t, resp.Posterior, 2)
	for j := range resp.Path {
		assert.InDelta(t, 1.0, resp.Posterior[0][j]+resp.Posterior[1][j], 1e-6)
	}
}

func TestDecodeHandlerImpossible(t *testing.T) {
	m := hmm.NewPolyAModel()
	m.SetInitialProb(hmm.PolyA, 1)
	m.SetTransProb(hmm.PolyA, hmm.PolyA, 1)
	m.SetTransProb(hmm.NonPolyA, hmm.NonPolyA, 1)
	m.SetEmitProb(hmm.PolyA, 0, 1)
	m.SetEmitProb(hmm.NonPolyA, 1, 1)

	h := newRouter(Options{Model: m})
	resp := decodeBody[DecodeResponse](t, do(t, h, http.MethodPost, "/api/v1/decode", DecodeRequest{Sequence: "C"}))
	assert.Nil(t, resp.LogProbability)
	assert.Len(t, resp.Path, 1)
}

func TestModelHandler(t *testing.T) {
	h := newRouter(Options{})

	rec := do(t, h, http.MethodGet, "/api/v1/model", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[ModelResponse](t, rec)
	assert.Equal(t, 2, resp.States)
	assert.Equal(t, 4, resp.Symbols)
	require.Len(t, resp.Initial, 2)
	assert.InDelta(t, 0.99283668, resp.Initial[0], 1e-12)
	assert.InDelta(t, 0.00716332, resp.Initial[1], 1e-12)
	require.Len(t, resp.Emission, 2)

	rec = do(t, h, http.MethodGet, "/api/v1/model?format=text", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m, err := hmm.ReadModel(rec.Body)
	require.NoError(t, err)
	assert.True(t, m.Equal(hmm.DefaultModel()))
}

// brokenWriter fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestModelHandlerLogsWriteError(t *testing.T) {
	var logs bytes.Buffer
	a := New(Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	w := brokenWriter{httptest.NewRecorder()}
	a.ModelHandler(w, httptest.NewRequest(http.MethodGet, "/api/v1/model?format=text", nil))

	assert.Contains(t, logs.String(), "write model")
	assert.Contains(t, logs.String(), io.ErrClosedPipe.Error())
}

func TestTrainHandler(t *testing.T) {
	h := newRouter(Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/train", TrainRequest{
		PolyA:    []string{"AAAAAAAAAA", "AAAAAAAAAC"},
		NonPolyA: []string{"ACGT", "GGCCTTAA", "TTGACA"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[ModelResponse](t, rec)
	assert.InDelta(t, 0.4, resp.Initial[0], 1e-12)
	assert.InDelta(t, 0.9, resp.Transition[0][0], 1e-12)
	assert.InDelta(t, 0.95, resp.Emission[0][0], 1e-12)

	rec = do(t, h, http.MethodPost, "/api/v1/train", TrainRequest{PolyA: []string{"AAAA"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/train", TrainRequest{
		PolyA:    []string{"", "", "A"},
		NonPolyA: []string{"ACGT"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "too short")
}

func TestSequenceHandlers(t *testing.T) {
	h := newRouter(Options{})

	rec := do(t, h, http.MethodPost, "/api/v1/sequence/reverse-complement", SequenceRequest{Sequence: "AACGTt"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "aACGTT", decodeBody[ReverseComplementResponse](t, rec).ReverseComplement)

	rec = do(t, h, http.MethodPost, "/api/v1/sequence/info", SequenceRequest{Sequence: "AAUC"})
	require.Equal(t, http.StatusOK, rec.Code)
	info := decodeBody[SequenceInfoResponse](t, rec)
	assert.Equal(t, 4, info.Length)
	assert.Equal(t, "RNA", info.Type)
	assert.InDelta(t, 0.5, info.AFraction, 1e-12)

	rec = do(t, h, http.MethodPost, "/api/v1/sequence/info", SequenceRequest{Sequence: "AXG"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
