package grid

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

// column is an inline-editable grid column. Key is the stored field the
// column writes.
type column struct {
	Name    string
	Key     string
	Numeric bool
	field   func(*journal.Trade) *string
}

var columns = []column{
	{Name: "pair", Key: "pair", field: func(t *journal.Trade) *string { return &t.Pair }},
	{Name: "direction", Key: "direction", field: func(t *journal.Trade) *string { return &t.Direction }},
	{Name: "timeframe", Key: "timeframe", field: func(t *journal.Trade) *string { return &t.Timeframe }},
	{Name: "setup", Key: "strategy", field: func(t *journal.Trade) *string { return &t.Strategy }},
	{Name: "entryPrice", Key: "entryPrice", Numeric: true, field: func(t *journal.Trade) *string { return &t.EntryPrice }},
	{Name: "stopLoss", Key: "stopLoss", Numeric: true, field: func(t *journal.Trade) *string { return &t.StopLoss }},
	{Name: "takeProfit", Key: "takeProfit", Numeric: true, field: func(t *journal.Trade) *string { return &t.TakeProfit }},
	{Name: "exitPrice", Key: "exitPrice", Numeric: true, field: func(t *journal.Trade) *string { return &t.ExitPrice }},
	{Name: "lots", Key: "lots", Numeric: true, field: func(t *journal.Trade) *string { return &t.Lots }},
	{Name: "result", Key: "result", field: func(t *journal.Trade) *string { return &t.Result }},
}

// EditableColumns lists the grid column names that accept inline edits.
func EditableColumns() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Name
	}
	return out
}

func lookupColumn(name string) (column, bool) {
	for _, c := range columns {
		if c.Name == name || c.Key == name {
			return c, true
		}
	}
	return column{}, false
}

// accept returns the value a cell should hold after the user typed v over old.
// A numeric cell only takes a value that parses to a non-zero number.
func (c column) accept(old, v string) string {
	if !c.Numeric {
		return v
	}
	v = strings.TrimSpace(v)
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsZero() {
		return old
	}
	return v
}
