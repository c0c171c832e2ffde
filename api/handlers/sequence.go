package handlers

import (
	"net/http"

	"github.com/aria-lang/polyatrim-go/internal/sequence"
)

// SequenceRequest represents a request with a sequence.
type SequenceRequest struct {
	Sequence string `json:"sequence"`
}

// ReverseComplementResponse represents the response for reverse complement.
type ReverseComplementResponse struct {
	ReverseComplement string `json:"reverse_complement"`
}

// ReverseComplementHandler handles reverse complement requests.
func ReverseComplementHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	seq, err := sequence.Parse(req.Sequence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ReverseComplementResponse{
		ReverseComplement: seq.ReverseComplementCopy().Bases(),
	})
}

// SequenceInfoResponse represents sequence information.
type SequenceInfoResponse struct {
	Length    int     `json:"length"`
	Type      string  `json:"type"`
	ACount    int     `json:"a_count"`
	CCount    int     `json:"c_count"`
	GCount    int     `json:"g_count"`
	TCount    int     `json:"t_count"`
	NCount    int     `json:"n_count"`
	AFraction float64 `json:"a_fraction"`
}

// SequenceInfoHandler handles sequence info requests.
func SequenceInfoHandler(w http.ResponseWriter, r *http.Request) {
	var req SequenceRequest
	if !decode(w, r, &req) {
		return
	}

	seq, err := sequence.Parse(req.Sequence)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts := seq.BaseCounts()
	writeJSON(w, http.StatusOK, SequenceInfoResponse{
		Length:    seq.Len(),
		Type:      seq.SeqType.String(),
		ACount:    counts.A,
		CCount:    counts.C,
		GCount:    counts.G,
		TCount:    counts.T,
		NCount:    counts.N,
		AFraction: seq.AFraction(),
	})
}
