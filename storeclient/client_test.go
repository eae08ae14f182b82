package storeclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/grid"
	"github.com/rustyeddy/tradejournal/journal"
)

var _ grid.Store = (*Client)(nil)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fakeState records what the fake server received.
type fakeState struct {
	patches []journal.Patch
	created []journal.Trade
	deleted []string
}

// fakeServer accepts demo/demo123 and requires the session cookie afterwards.
func fakeServer(t *testing.T) (*httptest.Server, *fakeState) {
	t.Helper()
	state := &fakeState{}
	trades := []journal.Trade{{ID: "t1", Pair: "EURUSD"}}

	authed := func(w http.ResponseWriter, r *http.Request) bool {
		if c, err := r.Cookie("session"); err != nil || c.Value != "tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Unauthorized"})
			return false
		}
		return true
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "demo" || body["password"] != "demo123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": User{ID: "user_demo", Username: "demo", Name: "Demo User"}})
	})
	mux.HandleFunc("GET /api/trades", func(w http.ResponseWriter, r *http.Request) {
		if authed(w, r) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": trades})
		}
	})
	mux.HandleFunc("PUT /api/trades/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		if r.PathValue("id") != "t1" {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Trade not found"})
			return
		}
		var p journal.Patch
		_ = json.NewDecoder(r.Body).Decode(&p)
		state.patches = append(state.patches, p)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("POST /api/trades", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		var tr journal.Trade
		if err := json.NewDecoder(r.Body).Decode(&tr); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid JSON"})
			return
		}
		if tr.ID == "t1" {
			writeJSON(w, http.StatusConflict, map[string]any{"success": false, "error": `trade "t1": already exists`})
			return
		}
		state.created = append(state.created, tr)
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": tr})
	})
	mux.HandleFunc("DELETE /api/trades/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		if r.PathValue("id") != "t1" {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Trade not found"})
			return
		}
		state.deleted = append(state.deleted, r.PathValue("id"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /api/weekly", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		if r.URL.Query().Get("weekKey") == "2024-03-11" {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": journal.Weekly{WeekKey: "2024-03-11"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": nil})
	})
	mux.HandleFunc("GET /api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, state
}

func TestUnauthorizedBeforeLogin(t *testing.T) {
	srv, _ := fakeServer(t)
	c := New(srv.URL)

	_, err := c.ListTrades(context.Background())
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusUnauthorized, serr.Status)
	assert.Equal(t, "Unauthorized", serr.Message)
	assert.Equal(t, "list trades: Unauthorized (status 401)", serr.Error())
}

func TestLoginKeepsSession(t *testing.T) {
	srv, state := fakeServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.Login(ctx, "demo", "wrong")
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "Invalid credentials", serr.Message)

	u, err := c.Login(ctx, "demo", "demo123")
	require.NoError(t, err)
	assert.Equal(t, "user_demo", u.ID)

	trades, err := c.ListTrades(ctx)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "EURUSD", trades[0].Pair)

	require.NoError(t, c.UpdateTrade(ctx, "t1", journal.Patch{"exitPrice": "1.1"}))
	require.Len(t, state.patches, 1)
	assert.Equal(t, "1.1", state.patches[0]["exitPrice"])

	err = c.UpdateTrade(ctx, "missing", journal.Patch{"pair": "X"})
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Status)
	assert.Equal(t, "Trade not found", serr.Message)
}

func login(t *testing.T, c *Client) {
	t.Helper()
	_, err := c.Login(context.Background(), "demo", "demo123")
	require.NoError(t, err)
}

func TestCreateTradeSendsFullRecord(t *testing.T) {
	srv, state := fakeServer(t)
	c := New(srv.URL)
	login(t, c)

	tr := journal.Trade{
		ID: "t2", Pair: "GBPUSD", Direction: journal.Short,
		EntryPrice: "1.2700", StopLoss: "1.2750", TakeProfit: "1.2600",
		Date: "2024-03-15T10:00:00Z", Images: []string{"https://img/a.png"},
		StrategyChecklist: map[string]bool{"trend": true},
		Status:            journal.StatusOpen,
	}
	require.NoError(t, c.CreateTrade(context.Background(), tr))
	require.Len(t, state.created, 1)
	assert.Equal(t, tr, state.created[0])
}

func TestCreateTradeFailure(t *testing.T) {
	srv, state := fakeServer(t)
	c := New(srv.URL)
	login(t, c)

	err := c.CreateTrade(context.Background(), journal.Trade{ID: "t1", Pair: "EURUSD"})
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "create trade", serr.Op)
	assert.Equal(t, http.StatusConflict, serr.Status)
	assert.Equal(t, `trade "t1": already exists`, serr.Message)
	assert.Empty(t, state.created)
}

func TestDeleteTrade(t *testing.T) {
	srv, state := fakeServer(t)
	c := New(srv.URL)
	login(t, c)
	ctx := context.Background()

	require.NoError(t, c.DeleteTrade(ctx, "t1"))
	assert.Equal(t, []string{"t1"}, state.deleted)

	err := c.DeleteTrade(ctx, "gone")
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "delete trade", serr.Op)
	assert.Equal(t, http.StatusNotFound, serr.Status)
	assert.Equal(t, "Trade not found", serr.Message)
	assert.Equal(t, "delete trade: Trade not found (status 404)", serr.Error())
	assert.Len(t, state.deleted, 1)
}

func TestWeeklyNullIsNil(t *testing.T) {
	srv, _ := fakeServer(t)
	c := New(srv.URL)
	ctx := context.Background()
	_, err := c.Login(ctx, "demo", "demo123")
	require.NoError(t, err)

	w, err := c.Weekly(ctx, "2024-03-11")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "2024-03-11", w.WeekKey)

	w, err = c.Weekly(ctx, "2020-01-06")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestNonJSONFailure(t *testing.T) {
	srv, _ := fakeServer(t)
	c := New(srv.URL)

	_, err := c.Dashboard(context.Background())
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadGateway, serr.Status)
	assert.Error(t, serr.Unwrap())
}

func TestTransportFailure(t *testing.T) {
	srv, _ := fakeServer(t)
	url := srv.URL
	srv.Close()

	_, err := New(url).ListTrades(context.Background())
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Zero(t, serr.Status)
	assert.NotNil(t, serr.Unwrap())
}
