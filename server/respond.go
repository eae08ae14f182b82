package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rustyeddy/tradejournal/journal"
)

// maxBody bounds request bodies; screenshots arrive as data URIs.
const maxBody = 10 << 20

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// dataEnvelope always writes the data key, so a missing record reads as null.
type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataEnvelope{Success: true, Data: data})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// writeStoreError maps a store error to a status code. notFound is the
// message for journal.ErrNotFound.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, journal.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, journal.ErrImmutableField), errors.Is(err, journal.ErrInvalidValue):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, journal.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logFrom(r).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Request body required")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}
