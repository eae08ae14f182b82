package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
)

func TestEmptyDraftDefaults(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	d := EmptyDraft(now)

	assert.Equal(t, "2024-03-15T14:30:00Z", d.Date)
	assert.Equal(t, "", d.Pair)
	assert.Equal(t, "", d.Result)
	assert.Equal(t, journal.StatusOpen, d.Status)
	assert.Equal(t, "Yes", d.FollowedPlan)
	assert.Equal(t, "On Time", d.EntryTiming)
	assert.Equal(t, "No", d.FomoEntry)
	assert.Equal(t, "5", d.ConfidenceLevel)
	assert.Equal(t, "Low", d.DistractionLevel)
	assert.Equal(t, "No", d.PlanUpdateRequired)
	assert.False(t, d.CriteriaCheck1)
	assert.Equal(t, TabTradeInfo, d.ActiveTab)

	assert.NotNil(t, d.Images)
	assert.NotNil(t, d.Exits)
	assert.NotNil(t, d.EmotionalFactors)
	assert.NotNil(t, d.StrategyChecklist)
}

func TestDraftFromTradeKeepsValuesAndFillsBlanks(t *testing.T) {
	src := journal.Trade{
		ID:           "t1",
		Pair:         "GBPJPY",
		FollowedPlan: "No",
		Images:       []string{"x.png"},
	}
	d := DraftFromTrade(src)

	assert.Equal(t, "t1", d.ID)
	assert.Equal(t, "No", d.FollowedPlan)
	assert.Equal(t, "On Time", d.EntryTiming)
	assert.NotNil(t, d.Exits)

	// The draft owns its collections.
	d.Images[0] = "changed.png"
	assert.Equal(t, "x.png", src.Images[0])
}

func TestRecord(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	d := Draft{Trade: journal.Trade{Pair: " EURUSD "}}

	rec := d.Record("abc", now)
	assert.Equal(t, "abc", rec.ID)
	assert.Equal(t, "EURUSD", rec.Pair)
	assert.Equal(t, "2024-01-02T03:04:05Z", rec.Date)
	assert.Equal(t, "Yes", rec.WouldTakeAgain)
}

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name    string
		draft   journal.Trade
		field   string
		message string
	}{
		{"nothing", journal.Trade{}, "pair", "Please select a currency pair"},
		{"blank pair", journal.Trade{Pair: "  ", EntryPrice: "1"}, "pair", "Please select a currency pair"},
		{"pair only", journal.Trade{Pair: "EURUSD"}, "entryPrice", "Entry price is required"},
		{"no exit", journal.Trade{Pair: "EURUSD", EntryPrice: "1.1", StopLoss: "1", TakeProfit: "1.2"}, "exitPrice", "Exit price is required"},
		{"no stop", journal.Trade{Pair: "EURUSD", EntryPrice: "1.1", ExitPrice: "1.2"}, "stopLoss", "Stop loss is required"},
		{"no target", journal.Trade{Pair: "EURUSD", EntryPrice: "1.1", ExitPrice: "1.2", StopLoss: "1"}, "takeProfit", "Take profit is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Draft{Trade: tt.draft})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Error())
		})
	}

	ok := journal.Trade{Pair: "EURUSD", EntryPrice: "1.1", ExitPrice: "1.2", StopLoss: "1", TakeProfit: "1.3"}
	assert.NoError(t, Validate(Draft{Trade: ok}))
}

func TestEditableColumns(t *testing.T) {
	assert.Equal(t, []string{
		"pair", "direction", "timeframe", "setup", "entryPrice",
		"stopLoss", "takeProfit", "exitPrice", "lots", "result",
	}, EditableColumns())

	c, ok := lookupColumn("strategy")
	require.True(t, ok)
	assert.Equal(t, "setup", c.Name)
}
