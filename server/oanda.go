package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/patrickmn/go-cache"

	"github.com/rustyeddy/tradejournal/oanda"
)

const maxTransactionRange = 1000

// brokerCall serves a cached broker response. Empty results answer 404 and
// any other failure 502, with fallback as the message.
func (s *Server) brokerCall(w http.ResponseWriter, r *http.Request, key, fallback string,
	fetch func(ctx context.Context) (any, error)) {
	if s.deps.Broker == nil {
		writeError(w, http.StatusServiceUnavailable, "Broker is not configured")
		return
	}
	if v, ok := s.cache.Get(key); ok {
		writeData(w, http.StatusOK, v)
		return
	}

	v, err := fetch(r.Context())
	if errors.Is(err, oanda.ErrNoData) {
		writeError(w, http.StatusNotFound, "No data available")
		return
	}
	if err != nil {
		logFrom(r).Warn().Err(err).Str("call", key).Msg("broker request failed")
		msg := fallback
		var apiErr *oanda.APIError
		if errors.As(err, &apiErr) {
			msg = apiErr.Error()
		}
		writeError(w, http.StatusBadGateway, msg)
		return
	}

	s.cache.Set(key, v, cache.DefaultExpiration)
	writeData(w, http.StatusOK, v)
}

func (s *Server) handleOandaAccounts(w http.ResponseWriter, r *http.Request) {
	s.brokerCall(w, r, "oanda:accounts", "Failed to fetch Oanda accounts",
		func(ctx context.Context) (any, error) { return s.deps.Broker.Accounts(ctx) })
}

func (s *Server) handleOandaOrders(w http.ResponseWriter, r *http.Request) {
	s.brokerCall(w, r, "oanda:orders", "Failed to fetch Oanda orders",
		func(ctx context.Context) (any, error) { return s.deps.Broker.Orders(ctx) })
}

// handleOandaTransactions takes an optional from/to id range, 1-1000 by
// default.
func (s *Server) handleOandaTransactions(w http.ResponseWriter, r *http.Request) {
	from, to := 1, maxTransactionRange
	q := r.URL.Query()
	for name, dst := range map[string]*int{"from": &from, "to": &to} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid "+name+" transaction id")
			return
		}
		*dst = n
	}
	if to < from {
		writeError(w, http.StatusBadRequest, "Invalid transaction range")
		return
	}

	key := fmt.Sprintf("oanda:transactions:%d-%d", from, to)
	s.brokerCall(w, r, key, "Failed to fetch Oanda transactions",
		func(ctx context.Context) (any, error) { return s.deps.Broker.Transactions(ctx, from, to) })
}
