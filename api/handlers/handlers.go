// Package handlers provides HTTP handlers for the polyatrim API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aria-lang/polyatrim-go/internal/hmm"
	"github.com/aria-lang/polyatrim-go/internal/logging"
	"github.com/aria-lang/polyatrim-go/internal/metrics"
)

// Options configure an API.
type Options struct {
	Model    *hmm.Model // nil means hmm.DefaultModel()
	IsoSeq   bool       // default for trim requests
	Workers  int
	MaxReads int // <= 0 means unlimited
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// API serves trimming and decoding requests against one model. The model is
// read-only once the API is built.
type API struct {
	model *hmm.Model
	opts  Options
	log   *slog.Logger
}

// New returns an API for opts.
func New(opts Options) *API {
	m := opts.Model
	if m == nil {
		m = hmm.DefaultModel()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &API{model: m, opts: opts, log: logger}
}

// Routes mounts the versioned endpoints on r.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/model", a.ModelHandler)
		r.Post("/trim", a.TrimHandler)
		r.Post("/decode", a.DecodeHandler)
		r.Post("/train", TrainHandler)

		r.Route("/sequence", func(r chi.Router) {
			r.Post("/reverse-complement", ReverseComplementHandler)
			r.Post("/info", SequenceInfoHandler)
		})
	})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
