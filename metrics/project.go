package metrics

import (
	"github.com/rustyeddy/tradejournal/journal"
)

// DisplayRow is one grid row: stored columns as typed, plus derived values.
type DisplayRow struct {
	ID         string `json:"id"`
	TradeDate  string `json:"tradeDate"`
	Pair       string `json:"pair"`
	Direction  string `json:"direction"`
	Timeframe  string `json:"timeframe"`
	Setup      string `json:"setup"`
	EntryPrice string `json:"entryPrice"`
	StopLoss   string `json:"stopLoss"`
	TakeProfit string `json:"takeProfit"`
	ExitPrice  string `json:"exitPrice"`
	Lots       string `json:"lots"`

	Result          string   `json:"result"`
	PipsRR          string   `json:"pipsRR"`
	Pips            *float64 `json:"pips,omitempty"`
	ProfitLoss      string   `json:"profitLoss"`
	ProfitLossValue float64  `json:"profitLossValue"`
	Completeness    int      `json:"completeness"`
	PlannedRR       float64  `json:"plannedRR"`

	Raw journal.Trade `json:"raw"`
}

// Project maps a stored trade to its display row.
func Project(t journal.Trade) DisplayRow {
	p := pnl(t)
	row := DisplayRow{
		ID:         t.ID,
		TradeDate:  journal.DayKey(t.Date),
		Pair:       t.Pair,
		Direction:  t.Direction,
		Timeframe:  t.Timeframe,
		Setup:      t.Strategy,
		EntryPrice: t.EntryPrice,
		StopLoss:   t.StopLoss,
		TakeProfit: t.TakeProfit,
		ExitPrice:  t.ExitPrice,
		Lots:       t.Lots,

		Result:          Classify(t),
		PipsRR:          DisplayRR(t),
		ProfitLoss:      p.StringFixed(2),
		ProfitLossValue: p.InexactFloat64(),
		Completeness:    Completeness(t),
		PlannedRR:       PlannedRR(t.EntryPrice, t.StopLoss, t.TakeProfit),

		Raw: t,
	}
	if d, ok := PipDistance(t.Pair, t.EntryPrice, t.ExitPrice); ok {
		row.Pips = &d
	}
	return row
}

// ProjectAll recomputes every row, keeping the collection's order.
func ProjectAll(trades []journal.Trade) []DisplayRow {
	rows := make([]DisplayRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, Project(t))
	}
	return rows
}

// FilterByDate keeps rows dated day (YYYY-MM-DD). An empty day keeps all.
func FilterByDate(rows []DisplayRow, day string) []DisplayRow {
	if day == "" {
		return rows
	}
	out := make([]DisplayRow, 0, len(rows))
	for _, r := range rows {
		if r.TradeDate == day {
			out = append(out, r)
		}
	}
	return out
}
