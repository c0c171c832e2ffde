package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/google/uuid"

	"github.com/aria-lang/polyatrim-go/internal/fastx"
	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/pipeline"
	"github.com/aria-lang/polyatrim-go/internal/stats"
	"github.com/aria-lang/polyatrim-go/internal/trim"
)

// Read is one input read.
type Read struct {
	Header   string `json:"header"`
	Sequence string `json:"sequence"`
}

// TrimRequest represents a request to trim reads.
type TrimRequest struct {
	Reads []Read `json:"reads"`
	// IsoSeq overrides the server default for header rewriting.
	IsoSeq *bool `json:"isoseq,omitempty"`
}

// TrimmedRead is one trimmed read.
type TrimmedRead struct {
	Header      string `json:"header"`
	Sequence    string `json:"sequence"`
	Tail        string `json:"tail"`
	PolyALength int    `json:"polya_length"`
	HeaderError string `json:"header_error,omitempty"`
}

// TrimResponse represents the response for trimming.
type TrimResponse struct {
	JobID   string        `json:"job_id"`
	Reads   []TrimmedRead `json:"reads"`
	Summary stats.Summary `json:"summary"`
}

// TrimHandler trims the poly-A tail from every read in the request.
func (a *API) TrimHandler(w http.ResponseWriter, r *http.Request) {
	var req TrimRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Reads) == 0 {
		writeError(w, http.StatusBadRequest, "no reads given")
		return
	}
	if a.opts.MaxReads > 0 && len(req.Reads) > a.opts.MaxReads {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("%d reads exceeds the limit of %d", len(req.Reads), a.opts.MaxReads))
		return
	}

	recs := make([]fastx.Record, len(req.Reads))
	for i, rd := range req.Reads {
		header := rd.Header
		if header == "" {
			header = fmt.Sprintf("read%d", i+1)
		}
		recs[i] = fastx.Record{Header: header, Seq: []byte(rd.Sequence)}
	}

	isoSeq := a.opts.IsoSeq
	if req.IsoSeq != nil {
		isoSeq = *req.IsoSeq
	}
	jobID := uuid.NewString()
	opts := pipeline.Options{
		Workers: a.opts.Workers,
		Trim:    trim.Options{IsoSeq: isoSeq},
		Metrics: a.opts.Metrics,
		Logger:  a.log.With("job_id", jobID),
	}

	var sink pipeline.Collect
	summary, err := pipeline.Run(r.Context(), a.model, opts, pipeline.Records(recs), &sink)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, r.Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	resp := TrimResponse{JobID: jobID, Reads: make([]TrimmedRead, len(sink.Results)), Summary: summary}
	for i, res := range sink.Results {
		out := TrimmedRead{
			Header:      res.Header,
			Sequence:    string(res.Kept()),
			Tail:        string(res.Tail()),
			PolyALength: res.PolyALength,
		}
		if res.HeaderErr != nil {
			out.HeaderError = res.HeaderErr.Error()
		}
		resp.Reads[i] = out
	}
	writeJSON(w, http.StatusOK, resp)
}

// DecodeRequest represents a request to decode one sequence.
type DecodeRequest struct {
	Sequence string `json:"sequence"`
	// Reverse decodes from the 3' end, as trimming does.
	Reverse   bool `json:"reverse"`
	Posterior bool `json:"posterior"`
}

// DecodeResponse carries the Viterbi path and optional posteriors. A nil
// LogProbability means the sequence is impossible under the model.
type DecodeResponse struct {
	Path           []string    `json:"path"`
	PolyALength    int         `json:"polya_length"`
	LogProbability *float64    `json:"log_probability"`
	Posterior      [][]float64 `json:"posterior,omitempty"`
}

// DecodeHandler runs Viterbi, and optionally the posterior, on one sequence.
func (a *API) DecodeHandler(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if !decode(w, r, &req) {
		return
	}

	var s hmm.Symbols = hmm.String(req.Sequence)
	if req.Reverse {
		s = hmm.Reversed(s)
	}
	ws := hmm.NewWorkspace()

	path := ws.Viterbi(a.model, s)
	resp := DecodeResponse{Path: make([]string, 0, path.Cols())}
	for _, st := range path.Data() {
		resp.Path = append(resp.Path, hmm.State(st).String())
	}
	if req.Reverse {
		resp.PolyALength = trim.PolyALength(path)
	}

	if lp := ws.LogProbability(a.model, s); !math.IsInf(lp, 0) && !math.IsNaN(lp) {
		resp.LogProbability = &lp
	}
	if req.Posterior {
		resp.Posterior = ws.Posterior(a.model, s).ToRows()
	}
	writeJSON(w, http.StatusOK, resp)
}
