package metrics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

var defaultLots = decimal.New(1, -1)

// Classify returns the result to display. A stored result always wins;
// otherwise it is derived from the prices, and "Open" if they are incomplete.
func Classify(t journal.Trade) string {
	if r := strings.TrimSpace(t.Result); r != "" {
		return r
	}
	e, ok1 := parsePrice(t.EntryPrice)
	x, ok2 := parsePrice(t.ExitPrice)
	if !ok1 || !ok2 {
		return journal.ResultOpen
	}
	switch x.Cmp(e) {
	case 1:
		return journal.ResultWin
	case -1:
		return journal.ResultLoss
	default:
		return journal.ResultBreakeven
	}
}

// pipValuePerLot is a flat approximation in account currency.
func pipValuePerLot(pair string) decimal.Decimal {
	if isJPY(pair) {
		return decimal.NewFromInt(1)
	}
	return ten
}

func lots(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsZero() {
		return defaultLots
	}
	return d
}

// pnl computes realized profit. Recorded partial exits take precedence over
// the pip approximation even when both are available.
func pnl(t journal.Trade) decimal.Decimal {
	e, ok1 := parsePrice(t.EntryPrice)
	x, ok2 := parsePrice(t.ExitPrice)
	if !ok1 || !ok2 {
		return decimal.Zero
	}

	if len(t.Exits) > 0 {
		sum := decimal.Zero
		for _, ex := range t.Exits {
			if v, err := decimal.NewFromString(strings.TrimSpace(ex.ProfitLoss)); err == nil {
				sum = sum.Add(v)
			}
		}
		return sum
	}

	return pips(t.Pair, e, x).Mul(pipValuePerLot(t.Pair)).Mul(lots(t.Lots))
}

// PnL is the realized profit or loss of t in account currency.
func PnL(t journal.Trade) float64 {
	return pnl(t).InexactFloat64()
}

// DisplayRR is the RR column: "0" for breakeven trades, the recorded RR
// otherwise, and empty until both prices are in.
func DisplayRR(t journal.Trade) string {
	if _, ok := parsePrice(t.EntryPrice); !ok {
		return ""
	}
	if _, ok := parsePrice(t.ExitPrice); !ok {
		return ""
	}
	if Classify(t) == journal.ResultBreakeven {
		return "0"
	}
	return t.RRAchieved
}

// completenessFields are the analysis answers a journal entry is scored on.
func completenessFields(t journal.Trade) []string {
	return []string{
		t.ReasonForEntry,
		t.RiskRewardRatio,
		t.StopLossReason,
		t.TakeProfitReason,
		t.ActualEntryPrice,
		t.RRAchieved,
		t.PipsGainedLost,
		t.WhatWentWell,
		t.WhatWentWrong,
		t.MoodBeforeTrade,
		t.ThingToImprove,
	}
}

// Completeness is the percentage of analysis fields filled in, 0 to 100.
func Completeness(t journal.Trade) int {
	fields := completenessFields(t)
	filled := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}
	return int(decimal.NewFromInt(int64(filled * 100)).
		Div(decimal.NewFromInt(int64(len(fields)))).
		Round(0).IntPart())
}
