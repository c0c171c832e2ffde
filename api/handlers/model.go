package handlers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/aria-lang/polyatrim-go/internal/hmm"
)

// ModelResponse is a model as JSON.
type ModelResponse struct {
	States     int         `json:"states"`
	Symbols    int         `json:"symbols"`
	Initial    []float64   `json:"initial"`
	Transition [][]float64 `json:"transition"`
	Emission   [][]float64 `json:"emission"`
}

func modelResponse(m *hmm.Model) ModelResponse {
	return ModelResponse{
		States:     m.States(),
		Symbols:    m.Symbols(),
		Initial:    slices.Clone(m.Initial().Data()),
		Transition: m.Transition().ToRows(),
		Emission:   m.Emission().ToRows(),
	}
}

// ModelHandler returns the served model. ?format=text returns the model
// file format instead of JSON.
func (a *API) ModelHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := a.model.WriteTo(w); err != nil {
			a.log.Error("write model", "err", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, modelResponse(a.model))
}

// TrainRequest carries labelled training sequences.
type TrainRequest struct {
	PolyA    []string `json:"polya"`
	NonPolyA []string `json:"nonpolya"`
}

// TrainHandler estimates a model from labelled sequences. The served model
// is not replaced.
func TrainHandler(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if !decode(w, r, &req) {
		return
	}

	m, err := hmm.Train(toSymbols(req.PolyA), toSymbols(req.NonPolyA))
	if errors.Is(err, hmm.ErrEmptyTrainingSet) || errors.Is(err, hmm.ErrShortTrainingSet) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, modelResponse(m))
}

func toSymbols(seqs []string) []hmm.Symbols {
	out := make([]hmm.Symbols, len(seqs))
	for i, s := range seqs {
		out[i] = hmm.String(s)
	}
	return out
}
