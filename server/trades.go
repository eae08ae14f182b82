package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/metrics"
)

const tradeNotFound = "Trade not found"

func dashboardKey(owner string) string { return "dashboard:" + owner }

// forgetOwner drops every cached view derived from owner's trades.
func (s *Server) forgetOwner(owner string) {
	s.cache.Delete(dashboardKey(owner))
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.deps.Store.ListTrades(r.Context(), owner(r))
	if err != nil {
		s.writeStoreError(w, r, err, tradeNotFound)
		return
	}
	writeData(w, http.StatusOK, trades)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var t journal.Trade
	if !decodeBody(w, r, &t) {
		return
	}
	who := owner(r)
	created, err := s.deps.Store.CreateTrade(r.Context(), who, t)
	if err != nil {
		s.writeStoreError(w, r, err, tradeNotFound)
		return
	}
	s.forgetOwner(who)
	logFrom(r).Info().Str("trade", created.ID).Str("pair", created.Pair).Msg("trade created")
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	var p journal.Patch
	if !decodeBody(w, r, &p) {
		return
	}
	who := owner(r)
	updated, err := s.deps.Store.UpdateTrade(r.Context(), who, chi.URLParam(r, "id"), p)
	if err != nil {
		s.writeStoreError(w, r, err, tradeNotFound)
		return
	}
	s.forgetOwner(who)
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	who := owner(r)
	tradeID := chi.URLParam(r, "id")
	if err := s.deps.Store.DeleteTrade(r.Context(), who, tradeID); err != nil {
		s.writeStoreError(w, r, err, tradeNotFound)
		return
	}
	s.forgetOwner(who)
	logFrom(r).Info().Str("trade", tradeID).Msg("trade deleted")
	writeOK(w)
}

// handleRows returns projected display rows, optionally for one day.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	trades, err := s.deps.Store.ListTrades(r.Context(), owner(r))
	if err != nil {
		s.writeStoreError(w, r, err, tradeNotFound)
		return
	}
	rows := metrics.FilterByDate(metrics.ProjectAll(trades), r.URL.Query().Get("date"))
	writeData(w, http.StatusOK, rows)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	who := owner(r)
	if v, ok := s.cache.Get(dashboardKey(who)); ok {
		writeData(w, http.StatusOK, v)
		return
	}

	trades, err := s.deps.Store.ListTrades(r.Context(), who)
	if err != nil {
		s.writeStoreError(w, r, err, tradeNotFound)
		return
	}
	summary := metrics.Summarize(trades)
	s.cache.Set(dashboardKey(who), summary, cache.DefaultExpiration)
	writeData(w, http.StatusOK, summary)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	trades, err := s.deps.Store.ListTrades(r.Context(), owner(r))
	if err != nil {
		s.writeStoreError(w, r, err, tradeNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)
	if err := journal.WriteCSV(w, trades); err != nil {
		logFrom(r).Error().Err(err).Msg("csv export")
	}
}
