package storeclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/auth"
	"github.com/rustyeddy/tradejournal/grid"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/server"
)

// journalServer runs the real API over a temp database.
func journalServer(t *testing.T) (*httptest.Server, *journal.SQLite) {
	t.Helper()

	store, err := journal.NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	users, err := auth.DemoDirectory(4)
	require.NoError(t, err)

	srv := server.New(server.Options{}, server.Deps{
		Store:  store,
		Users:  users,
		Tokens: auth.NewTokens("grid-over-http-signing-key", time.Hour),
		Logger: zerolog.Nop(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func TestGridOverHTTP(t *testing.T) {
	ts, store := journalServer(t)
	ctx := context.Background()

	c := New(ts.URL)
	u, err := c.Login(ctx, "demo", "demo123")
	require.NoError(t, err)

	g := grid.New(c)
	require.NoError(t, g.Load(ctx))
	assert.Empty(t, g.Trades())

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, g.NewTrade(now))
	require.NoError(t, g.UpdateDraft(func(d *grid.Draft) {
		d.Pair = "EURUSD"
		d.Direction = journal.Long
		d.EntryPrice = "1.1000"
		d.ExitPrice = "1.1050"
		d.StopLoss = "1.0950"
		d.TakeProfit = "1.1100"
	}))
	require.NoError(t, g.Save(ctx, now))

	saved, ok := g.Selected()
	require.True(t, ok)
	assert.Equal(t, grid.RowSelected, g.State())
	assert.Equal(t, u.ID, saved.UserID)

	stored, err := store.GetTrade(ctx, u.ID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", stored.Pair)
	assert.Equal(t, "1.1050", stored.ExitPrice)

	require.NoError(t, g.EditCell(ctx, saved.ID, "exitPrice", "1.1080"))
	stored, err = store.GetTrade(ctx, u.ID, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "1.1080", stored.ExitPrice)

	// Removed behind the grid's back, so the next edit is rejected with 404.
	require.NoError(t, store.DeleteTrade(ctx, u.ID, saved.ID))

	err = g.EditCell(ctx, saved.ID, "exitPrice", "1.1200")
	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Status)
	assert.Equal(t, "Trade not found", serr.Message)
	assert.ErrorIs(t, g.LastError(), serr)

	trades := g.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, "1.1080", trades[0].ExitPrice, "failed edit rolls back")
	assert.Equal(t, grid.RowSelected, g.State())

	err = g.DeleteSelected(ctx)
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.Status)
}

