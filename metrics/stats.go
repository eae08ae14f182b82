package metrics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
)

const recentCount = 5

// Summary is the dashboard view of a trader's journal.
type Summary struct {
	TotalTrades  int             `json:"totalTrades"`
	WinRate      int             `json:"winRate"`
	TotalProfit  float64         `json:"totalProfit"`
	BestTrade    float64         `json:"bestTrade"`
	WorstTrade   float64         `json:"worstTrade"`
	RecentTrades []journal.Trade `json:"recentTrades"`
}

// Summarize builds the dashboard. Wins are counted from stored results only,
// and profit is the raw price move, exit minus entry.
func Summarize(trades []journal.Trade) Summary {
	s := Summary{TotalTrades: len(trades), RecentTrades: []journal.Trade{}}
	if len(trades) == 0 {
		return s
	}

	wins := 0
	total, best, worst := decimal.Zero, decimal.Zero, decimal.Zero
	for _, t := range trades {
		if t.Result == journal.ResultWin {
			wins++
		}
		move := priceMove(t)
		total = total.Add(move)
		best = decimal.Max(best, move)
		worst = decimal.Min(worst, move)
	}

	s.WinRate = int(decimal.NewFromInt(int64(wins * 100)).
		Div(decimal.NewFromInt(int64(len(trades)))).Round(0).IntPart())
	s.TotalProfit = total.Round(4).InexactFloat64()
	s.BestTrade = best.Round(4).InexactFloat64()
	s.WorstTrade = worst.Round(4).InexactFloat64()
	s.RecentTrades = Recent(trades, recentCount)
	return s
}

func priceMove(t journal.Trade) decimal.Decimal {
	e, ok1 := parsePrice(t.EntryPrice)
	x, ok2 := parsePrice(t.ExitPrice)
	if !ok1 || !ok2 {
		return decimal.Zero
	}
	return x.Sub(e)
}

// Recent returns up to n trades, newest date first. Undated trades sort last.
func Recent(trades []journal.Trade, n int) []journal.Trade {
	sorted := make([]journal.Trade, len(trades))
	copy(sorted, trades)

	at := func(t journal.Trade) time.Time {
		d, _ := journal.ParseDate(t.Date)
		return d
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return at(sorted[i]).After(at(sorted[j]))
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
