package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/tradejournal/journal"
)

const (
	strategyNotFound = "Strategy not found"
	cardNotFound     = "Rule card not found"
)

// targetID finds the record id in the path, then the query string, then the
// patch body. Older clients send it in the body for PUT and as ?id= for
// DELETE.
func targetID(r *http.Request, p journal.Patch) string {
	if v := chi.URLParam(r, "id"); v != "" {
		return v
	}
	if v := r.URL.Query().Get("id"); v != "" {
		return v
	}
	if v, ok := p["id"].(string); ok {
		return v
	}
	return ""
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Store.ListStrategies(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err, strategyNotFound)
		return
	}
	writeData(w, http.StatusOK, list)
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var st journal.Strategy
	if !decodeBody(w, r, &st) {
		return
	}
	if st.Name == "" {
		writeError(w, http.StatusBadRequest, "Strategy name required")
		return
	}
	created, err := s.deps.Store.CreateStrategy(r.Context(), st)
	if err != nil {
		s.writeStoreError(w, r, err, strategyNotFound)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateStrategy(w http.ResponseWriter, r *http.Request) {
	var p journal.Patch
	if !decodeBody(w, r, &p) {
		return
	}
	sid := targetID(r, p)
	if sid == "" {
		writeError(w, http.StatusBadRequest, "Strategy id required")
		return
	}
	updated, err := s.deps.Store.UpdateStrategy(r.Context(), sid, p)
	if err != nil {
		s.writeStoreError(w, r, err, strategyNotFound)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	sid := targetID(r, nil)
	if sid == "" {
		writeError(w, http.StatusBadRequest, "Strategy id required")
		return
	}
	if err := s.deps.Store.DeleteStrategy(r.Context(), sid); err != nil {
		s.writeStoreError(w, r, err, strategyNotFound)
		return
	}
	writeOK(w)
}

// handleSeedStrategies replaces the playbook with the built-in strategies.
func (s *Server) handleSeedStrategies(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Store.SeedStrategies(r.Context(), journal.DefaultStrategies())
	if err != nil {
		s.writeStoreError(w, r, err, strategyNotFound)
		return
	}
	logFrom(r).Info().Int("count", n).Msg("strategies seeded")
	writeData(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) handleListRuleCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cards, err := s.deps.Store.ListRuleCards(r.Context(), q.Get("strategyId"), q.Get("sectionId"))
	if err != nil {
		s.writeStoreError(w, r, err, cardNotFound)
		return
	}
	if cards == nil {
		cards = []journal.RuleCard{}
	}
	writeData(w, http.StatusOK, cards)
}

func (s *Server) handleCreateRuleCard(w http.ResponseWriter, r *http.Request) {
	var c journal.RuleCard
	if !decodeBody(w, r, &c) {
		return
	}
	if c.StrategyID == "" || c.SectionID == "" {
		writeError(w, http.StatusBadRequest, "strategyId and sectionId required")
		return
	}
	created, err := s.deps.Store.CreateRuleCard(r.Context(), c)
	if err != nil {
		s.writeStoreError(w, r, err, cardNotFound)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRuleCard(w http.ResponseWriter, r *http.Request) {
	var p journal.Patch
	if !decodeBody(w, r, &p) {
		return
	}
	cid := targetID(r, p)
	if cid == "" {
		writeError(w, http.StatusBadRequest, "Rule card id required")
		return
	}
	updated, err := s.deps.Store.UpdateRuleCard(r.Context(), cid, p)
	if err != nil {
		s.writeStoreError(w, r, err, cardNotFound)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRuleCard(w http.ResponseWriter, r *http.Request) {
	cid := targetID(r, nil)
	if cid == "" {
		writeError(w, http.StatusBadRequest, "Rule card id required")
		return
	}
	if err := s.deps.Store.DeleteRuleCard(r.Context(), cid); err != nil {
		s.writeStoreError(w, r, err, cardNotFound)
		return
	}
	writeOK(w)
}
