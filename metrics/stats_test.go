package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
)

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalTrades)
	assert.Equal(t, 0, s.WinRate)
	assert.NotNil(t, s.RecentTrades)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	trades := []journal.Trade{
		{ID: "1", Result: journal.ResultWin, EntryPrice: "1.1000", ExitPrice: "1.1050", Date: "2024-03-01"},
		{ID: "2", Result: journal.ResultLoss, EntryPrice: "1.1000", ExitPrice: "1.0980", Date: "2024-03-05"},
		{ID: "3", EntryPrice: "1.2000", ExitPrice: "1.2100", Date: "2024-03-03"},
		{ID: "4", Result: journal.ResultOpen, EntryPrice: "1.3000", Date: "2024-03-02"},
		{ID: "5", Result: journal.ResultWin, Date: "2024-03-07"},
		{ID: "6", Date: ""},
	}

	s := Summarize(trades)
	assert.Equal(t, 6, s.TotalTrades)
	// Only stored results count; trade 3 is an unrecorded win.
	assert.Equal(t, 33, s.WinRate)
	assert.InDelta(t, 0.0130, s.TotalProfit, 1e-12)
	assert.InDelta(t, 0.0100, s.BestTrade, 1e-12)
	assert.InDelta(t, -0.0020, s.WorstTrade, 1e-12)

	require.Len(t, s.RecentTrades, 5)
	ids := []string{}
	for _, tr := range s.RecentTrades {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"5", "2", "3", "4", "1"}, ids)
}

func TestSummarizeBestIsNeverNegative(t *testing.T) {
	t.Parallel()

	s := Summarize([]journal.Trade{{EntryPrice: "1.2", ExitPrice: "1.1"}})
	assert.Equal(t, 0.0, s.BestTrade)
	assert.InDelta(t, -0.1, s.WorstTrade, 1e-12)
}
