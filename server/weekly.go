package server

import (
	"net/http"

	"github.com/rustyeddy/tradejournal/journal"
)

func (s *Server) handleGetWeekly(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("weekKey")
	if key == "" {
		key = journal.WeekKey(s.now())
	}
	wk, err := s.deps.Store.GetWeekly(r.Context(), owner(r), key)
	if err != nil {
		s.writeStoreError(w, r, err, "Week not found")
		return
	}
	// an unsaved week is data: null, not an error
	writeData(w, http.StatusOK, wk)
}

func (s *Server) handleSaveWeekly(w http.ResponseWriter, r *http.Request) {
	var wk journal.Weekly
	if !decodeBody(w, r, &wk) {
		return
	}
	if wk.WeekKey == "" {
		writeError(w, http.StatusBadRequest, "weekKey is required")
		return
	}
	saved, err := s.deps.Store.SaveWeekly(r.Context(), owner(r), wk)
	if err != nil {
		s.writeStoreError(w, r, err, "Week not found")
		return
	}
	writeData(w, http.StatusOK, saved)
}
